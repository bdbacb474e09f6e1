// Package discovery derives candidate servers from the environment and
// from the local credential ticket store, creates missing server records,
// and opportunistically recovers sessions. The batch operation never
// fails outright: per-candidate errors are accumulated alongside whatever
// partial success was achieved.
package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/sgrant/p4view/internal/auth"
	"github.com/sgrant/p4view/internal/logger"
	"github.com/sgrant/p4view/internal/provider"
	"github.com/sgrant/p4view/internal/store"
)

// Source tags where a discovered server came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceTicket      Source = "ticket"
)

// DefaultAddress is assumed when the connection-address variable is unset.
// A bare port number implies the local machine.
const DefaultAddress = "1666"

// DiscoveredServer is one candidate before reconciliation with the server
// store. Ticket-sourced candidates always carry a username; environment
// candidates carry one only when the username variable is set.
type DiscoveredServer struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Source   Source `json:"source"`
	Username string `json:"username,omitempty"`
}

// Result summarizes a discovery run.
type Result struct {
	Created   []store.ServerConfig `json:"created"`
	Recovered int                  `json:"recovered"`
	Errors    []string             `json:"errors"`
}

// Engine reconciles discovered candidates with the server store.
type Engine struct {
	provider provider.Provider
	servers  *store.ServerStore
	auth     *auth.Manager
}

// NewEngine returns a discovery engine over the given collaborators.
func NewEngine(p provider.Provider, servers *store.ServerStore, manager *auth.Manager) *Engine {
	return &Engine{provider: p, servers: servers, auth: manager}
}

// protocolPrefixes are the transport tokens the CLI accepts ahead of a
// connection address.
var protocolPrefixes = []string{
	"tcp", "tcp4", "tcp6", "tcp46", "tcp64",
	"ssl", "ssl4", "ssl6", "ssl46", "ssl64",
}

// localHostname returns this machine's name, falling back to "localhost"
// when the lookup resolves empty.
func localHostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

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

// ExtractServerName derives a display name from a connection address:
// strip any known transport prefix, resolve bare port numbers to the local
// hostname, unwrap IPv6 brackets, and drop a trailing port. What remains
// is returned verbatim, case preserved.
func ExtractServerName(address string) string {
	rest := address
	for _, prefix := range protocolPrefixes {
		if len(rest) > len(prefix) && rest[len(prefix)] == ':' &&
			strings.EqualFold(rest[:len(prefix)], prefix) {
			rest = rest[len(prefix)+1:]
			break
		}
	}

	if isAllDigits(rest) {
		return localHostname()
	}

	if strings.HasPrefix(rest, "[") {
		if end := strings.Index(rest, "]"); end > 0 {
			return rest[1:end]
		}
	}

	if idx := strings.LastIndex(rest, ":"); idx >= 0 && isAllDigits(rest[idx+1:]) {
		rest = rest[:idx]
	}

	return rest
}

// envVarNames returns the configured environment variable names for the
// connection address and default username.
func envVarNames() (portVar, userVar string) {
	portVar = viper.GetString("env.port_var")
	if portVar == "" {
		portVar = "P4PORT"
	}
	userVar = viper.GetString("env.user_var")
	if userVar == "" {
		userVar = "P4USER"
	}
	return portVar, userVar
}

// discoverFromEnvironment reads the connection-address variable and the
// optional username variable.
func (e *Engine) discoverFromEnvironment() DiscoveredServer {
	portVar, userVar := envVarNames()

	address := os.Getenv(portVar)
	if address == "" {
		address = DefaultAddress
	}

	return DiscoveredServer{
		Address:  address,
		Name:     ExtractServerName(address),
		Source:   SourceEnvironment,
		Username: os.Getenv(userVar),
	}
}

// discoverFromTickets turns every ticket's host into a candidate. Tickets
// always carry a username.
func (e *Engine) discoverFromTickets(ctx context.Context) ([]DiscoveredServer, error) {
	res := e.provider.GetTickets(ctx)
	if !res.Success {
		return nil, fmt.Errorf("ticket discovery failed: %s", res.Error)
	}

	candidates := make([]DiscoveredServer, 0, len(res.Data))
	for _, t := range res.Data {
		candidates = append(candidates, DiscoveredServer{
			Address:  t.Host,
			Name:     ExtractServerName(t.Host),
			Source:   SourceTicket,
			Username: t.User,
		})
	}
	return candidates, nil
}

// dedupe collapses candidates to one per connection address,
// case-insensitively. Ticket-sourced entries win collisions because they
// carry more identity information. Order of first appearance is kept.
func dedupe(candidates []DiscoveredServer) []DiscoveredServer {
	byAddr := make(map[string]int)
	var unique []DiscoveredServer

	for _, c := range candidates {
		key := strings.ToLower(c.Address)
		if i, ok := byAddr[key]; ok {
			if unique[i].Source == SourceEnvironment && c.Source == SourceTicket {
				unique[i] = c
			}
			continue
		}
		byAddr[key] = len(unique)
		unique = append(unique, c)
	}
	return unique
}

// DiscoverServers runs both discovery sources, reconciles candidates with
// the server store, and recovers sessions where possible. One source
// failing never aborts the other, and per-candidate failures are
// accumulated rather than fatal.
func (e *Engine) DiscoverServers(ctx context.Context) Result {
	log := logger.ComponentLogger("discovery")
	result := Result{Errors: []string{}}

	candidates := []DiscoveredServer{e.discoverFromEnvironment()}

	ticketCandidates, err := e.discoverFromTickets(ctx)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		candidates = append(candidates, ticketCandidates...)
	}

	for _, candidate := range dedupe(candidates) {
		created, recovered, err := e.reconcile(ctx, candidate)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", candidate.Address, err))
			continue
		}
		if created != nil {
			result.Created = append(result.Created, *created)
		}
		if recovered {
			result.Recovered++
		}
	}

	log.Info("discovery finished",
		"created", len(result.Created),
		"recovered", result.Recovered,
		"errors", len(result.Errors))
	return result
}

// reconcile creates the server record if its address is unknown and
// attempts session recovery for ticket-sourced candidates. An existing
// record suppresses creation but not recovery.
func (e *Engine) reconcile(ctx context.Context, candidate DiscoveredServer) (*store.ServerConfig, bool, error) {
	existing, err := e.servers.FindByAddress(candidate.Address)
	if err != nil {
		return nil, false, err
	}

	var created *store.ServerConfig
	server := existing
	if server == nil {
		description := fmt.Sprintf("Discovered from %s", candidate.Source)
		server, err = e.servers.Add(candidate.Name, candidate.Address, description)
		if err != nil {
			return nil, false, err
		}
		created = server
	}

	recovered := false
	if candidate.Source == SourceTicket && candidate.Username != "" {
		recovered = e.auth.RecoverFor(ctx, server.ID, candidate.Username)
	}
	return created, recovered, nil
}
