// Package ztag parses the tagged output format emitted by the Perforce CLI
// when invoked with the global -ztag flag. Output is line oriented: each
// informational line starts with "... " followed by a field name and an
// optional value. Parsing stays untyped (ordered field maps); mapping to
// typed records happens at the package boundary.
package ztag

import "strings"

// TagPrefix marks an informational line in -ztag output.
const TagPrefix = "... "

// ChangePrimaryKey is the field that opens a new record in changelist
// listings ("p4 changes").
const ChangePrimaryKey = "change"

// Record is an ordered mapping from field name to field value.
// Field order is preserved as encountered in the stream.
type Record struct {
	fields []string
	values map[string]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set stores a field value. Re-setting an existing field overwrites the
// value without changing its position.
func (r *Record) Set(field, value string) {
	if _, ok := r.values[field]; !ok {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
}

// Get returns the value for a field, or "" if absent.
func (r *Record) Get(field string) string {
	return r.values[field]
}

// Has reports whether the field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Fields returns the field names in encounter order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.fields)
}

// splitTagLine extracts the field name and value from a tag line.
// Returns ok=false for lines that are not tag lines (banners, blanks).
// A tag line with a field name but no value returns value="" and ok=true;
// callers skip those.
func splitTagLine(line string) (field, value string, ok bool) {
	if !strings.HasPrefix(line, TagPrefix) {
		return "", "", false
	}
	rest := line[len(TagPrefix):]
	if rest == "" {
		return "", "", false
	}
	field, value, _ = strings.Cut(rest, " ")
	return field, value, true
}

// Parse scans tagged output and returns the ordered records it contains.
//
// When primary is non-empty (list-style output such as "p4 changes"), a new
// record opens each time the primary field is seen; fields appearing before
// the first primary field are ignored. When primary is empty (single-entity
// output such as "p4 user -o" or "p4 info"), the first field opens the one
// implicit record. Lines that do not carry the tag prefix are ignored, as
// are tag lines with no value. The last open record is flushed only if it
// is non-empty.
func Parse(text, primary string) []*Record {
	var records []*Record
	var cur *Record

	for _, line := range strings.Split(text, "\n") {
		field, value, ok := splitTagLine(strings.TrimRight(line, "\r"))
		if !ok || field == "" {
			continue
		}
		if value == "" {
			// Marker line with no trailing text: skipped, not an error.
			continue
		}

		if primary != "" {
			if field == primary {
				if cur != nil && cur.Len() > 0 {
					records = append(records, cur)
				}
				cur = NewRecord()
			}
			if cur == nil {
				continue
			}
		} else if cur == nil {
			cur = NewRecord()
		}

		cur.Set(field, value)
	}

	if cur != nil && cur.Len() > 0 {
		records = append(records, cur)
	}
	return records
}

// ParseRecords parses changelist-style list output, using "change" as the
// record boundary field.
func ParseRecords(text string) []*Record {
	return Parse(text, ChangePrimaryKey)
}

// ParseSingle parses single-entity output (user, info) and returns the one
// implicit record, or nil if the stream contained no tagged fields.
func ParseSingle(text string) *Record {
	records := Parse(text, "")
	if len(records) == 0 {
		return nil
	}
	return records[0]
}
