package ztag

import (
	"strconv"
	"strings"
	"time"
)

// ChangelistStatus is the lifecycle state of a changelist.
type ChangelistStatus string

const (
	StatusSubmitted ChangelistStatus = "submitted"
	StatusPending   ChangelistStatus = "pending"
)

// ChangelistInfo is a typed view of one "p4 changes" record.
// Values are immutable once parsed.
type ChangelistInfo struct {
	ID          int              `json:"id"`
	User        string           `json:"user"`
	Client      string           `json:"client"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description"`
	Status      ChangelistStatus `json:"status"`
}

// legacyDateLayout is the date format used by older server versions in
// place of epoch seconds.
const legacyDateLayout = "2006/01/02"

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseChangeTime handles both timestamp encodings the server emits:
// epoch seconds for tagged output, YYYY/MM/DD for legacy date strings.
func parseChangeTime(value string) time.Time {
	if isAllDigits(value) {
		secs, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	t, err := time.Parse(legacyDateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Changelists maps parsed records to ChangelistInfo values. Records whose
// change number is not numeric are dropped: the id is load-bearing for
// identity and cannot be defaulted.
func Changelists(records []*Record) []ChangelistInfo {
	changes := make([]ChangelistInfo, 0, len(records))
	for _, rec := range records {
		id, err := strconv.Atoi(rec.Get(ChangePrimaryKey))
		if err != nil {
			continue
		}
		status := ChangelistStatus(rec.Get("status"))
		if status != StatusPending {
			status = StatusSubmitted
		}
		changes = append(changes, ChangelistInfo{
			ID:          id,
			User:        rec.Get("user"),
			Client:      rec.Get("client"),
			Date:        parseChangeTime(rec.Get("time")),
			Description: rec.Get("desc"),
			Status:      status,
		})
	}
	return changes
}

// CurrentUser extracts the username from "p4 user -o" output.
// Returns "" if the stream contained no User field.
func CurrentUser(records []*Record) string {
	if len(records) == 0 {
		return ""
	}
	return records[0].Get("User")
}

// Ticket is one credential entry from the ticket listing: the user it was
// issued to, the ticket value, and the server address it is valid against.
type Ticket struct {
	User   string `json:"user"`
	Ticket string `json:"ticket"`
	Host   string `json:"host"`
}

// Tickets extracts user/ticket/host triplets from ticket listing output.
// A triplet is emitted only once all three fields have been seen; a partial
// trailing triplet at end of stream is silently dropped rather than
// defaulted, since every field is load-bearing for identity.
func Tickets(text string) []Ticket {
	var tickets []Ticket
	var cur Ticket

	for _, line := range strings.Split(text, "\n") {
		field, value, ok := splitTagLine(strings.TrimRight(line, "\r"))
		if !ok || value == "" {
			continue
		}
		switch field {
		case "User":
			cur.User = value
		case "Ticket":
			cur.Ticket = value
		case "Host":
			cur.Host = value
		}
		if cur.User != "" && cur.Ticket != "" && cur.Host != "" {
			tickets = append(tickets, cur)
			cur = Ticket{}
		}
	}
	return tickets
}

// UnknownField marks a required server-info field the server did not report.
const UnknownField = "Unknown"

// ServerInfo is a typed view of "p4 info" output.
type ServerInfo struct {
	ServerAddress  string `json:"serverAddress"`
	ServerVersion  string `json:"serverVersion"`
	ServerRoot     string `json:"serverRoot,omitempty"`
	ServerLicense  string `json:"serverLicense,omitempty"`
	UserName       string `json:"userName,omitempty"`
	ClientName     string `json:"clientName,omitempty"`
	ClientRoot     string `json:"clientRoot,omitempty"`
	ClientHost     string `json:"clientHost,omitempty"`
	CaseHandling   string `json:"caseHandling,omitempty"`
	ServerUptime   string `json:"serverUptime,omitempty"`
	ServerServices string `json:"serverServices,omitempty"`
}

// Info maps a "p4 info" record to ServerInfo. The address and version are
// required by callers for display, so they default to "Unknown" rather than
// empty when the server omits them.
func Info(rec *Record) ServerInfo {
	info := ServerInfo{
		ServerAddress: UnknownField,
		ServerVersion: UnknownField,
	}
	if rec == nil {
		return info
	}
	if v := rec.Get("serverAddress"); v != "" {
		info.ServerAddress = v
	}
	if v := rec.Get("serverVersion"); v != "" {
		info.ServerVersion = v
	}
	info.ServerRoot = rec.Get("serverRoot")
	info.ServerLicense = rec.Get("serverLicense")
	info.UserName = rec.Get("userName")
	info.ClientName = rec.Get("clientName")
	info.ClientRoot = rec.Get("clientRoot")
	info.ClientHost = rec.Get("clientHost")
	info.CaseHandling = rec.Get("caseHandling")
	info.ServerUptime = rec.Get("serverUptime")
	info.ServerServices = rec.Get("serverServices")
	return info
}
