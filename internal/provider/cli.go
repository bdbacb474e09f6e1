package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sgrant/p4view/internal/errors"
	"github.com/sgrant/p4view/internal/logger"
	"github.com/sgrant/p4view/internal/p4exec"
	"github.com/sgrant/p4view/internal/ztag"
)

// CLIProvider talks to the server through the p4 command-line client,
// composing the executor with the ztag parser.
type CLIProvider struct {
	executor p4exec.Executor
}

// NewCLIProvider returns a provider backed by the real p4 binary.
func NewCLIProvider() *CLIProvider {
	return &CLIProvider{executor: p4exec.NewRealExecutor()}
}

// NewCLIProviderWithExecutor returns a provider using the given executor.
// This is primarily used for testing.
func NewCLIProviderWithExecutor(e p4exec.Executor) *CLIProvider {
	return &CLIProvider{executor: e}
}

// GetSubmittedChanges lists submitted changelists via "p4 changes -s submitted".
func (p *CLIProvider) GetSubmittedChanges(ctx context.Context, maxCount int, depotPath string) Result[[]ztag.ChangelistInfo] {
	args := []string{"changes", "-s", "submitted", "-l"}
	if maxCount > 0 {
		args = append(args, "-m", strconv.Itoa(maxCount))
	}
	if depotPath != "" {
		args = append(args, depotPath)
	}

	stdout, _, err := p.executor.Run(ctx, args, p4exec.Options{})
	if err != nil {
		return Fail[[]ztag.ChangelistInfo](err.Error())
	}
	return Ok(ztag.Changelists(ztag.ParseRecords(stdout)))
}

// GetPendingChanges lists pending changelists for user. An empty user is
// resolved to the current user first.
func (p *CLIProvider) GetPendingChanges(ctx context.Context, user string) Result[[]ztag.ChangelistInfo] {
	if user == "" {
		current := p.GetCurrentUser(ctx)
		if !current.Success {
			return Fail[[]ztag.ChangelistInfo](fmt.Sprintf("failed to resolve current user: %s", current.Error))
		}
		user = current.Data
	}

	args := []string{"changes", "-s", "pending", "-l", "-u", user}
	stdout, _, err := p.executor.Run(ctx, args, p4exec.Options{})
	if err != nil {
		return Fail[[]ztag.ChangelistInfo](err.Error())
	}
	return Ok(ztag.Changelists(ztag.ParseRecords(stdout)))
}

// GetCurrentUser resolves the ambient username via "p4 user -o".
func (p *CLIProvider) GetCurrentUser(ctx context.Context) Result[string] {
	stdout, _, err := p.executor.Run(ctx, []string{"user", "-o"}, p4exec.Options{})
	if err != nil {
		return Fail[string](err.Error())
	}

	user := ztag.CurrentUser(ztag.Parse(stdout, ""))
	if user == "" {
		return Fail[string]("no user found in output")
	}
	return Ok(user)
}

// RunInfoCommand probes the server at address with a one-shot connection
// context, independent of any ambient session.
func (p *CLIProvider) RunInfoCommand(ctx context.Context, address string) Result[ztag.ServerInfo] {
	stdout, _, err := p.executor.Run(ctx, []string{"info"}, p4exec.Options{Host: address})
	if err != nil {
		return Fail[ztag.ServerInfo](err.Error())
	}
	return Ok(ztag.Info(ztag.ParseSingle(stdout)))
}

// Login authenticates by feeding the password to "p4 login -p -a" on stdin.
// With the print flag the ticket is the trimmed stdout of the process, with
// no tagged framing. An empty ticket on a zero exit is still a failure,
// distinct from a transport error.
func (p *CLIProvider) Login(ctx context.Context, address, username, password string) Result[string] {
	log := logger.ComponentLogger("provider")

	opts := p4exec.Options{Host: address, User: username}
	stdout, _, err := p.executor.RunInput(ctx, password+"\n", []string{"login", "-p", "-a"}, opts)
	if err != nil {
		log.Warn("login failed", "address", address, "user", username, "error", err)
		return Fail[string](err.Error())
	}

	ticket := strings.TrimSpace(stdout)
	// The CLI may echo its password prompt before the ticket; the ticket
	// is the last non-empty line of output.
	if idx := strings.LastIndexByte(ticket, '\n'); idx >= 0 {
		ticket = strings.TrimSpace(ticket[idx+1:])
	}
	if ticket == "" {
		log.Warn("login produced no ticket", "address", address, "user", username)
		return Fail[string](errors.TicketNotFound().Error())
	}

	log.Info("login succeeded", "address", address, "user", username)
	return Ok(ticket)
}

// Logout invalidates the server-side session.
func (p *CLIProvider) Logout(ctx context.Context, address, username string) Result[bool] {
	opts := p4exec.Options{Host: address, User: username}
	_, _, err := p.executor.Run(ctx, []string{"logout"}, opts)
	if err != nil {
		return Fail[bool](err.Error())
	}
	return Ok(true)
}

// ValidateTicket checks the ticket with "p4 login -s". Validation is
// deliberately conservative: any failure collapses to false.
func (p *CLIProvider) ValidateTicket(ctx context.Context, address, username, ticket string) Result[bool] {
	opts := p4exec.Options{Host: address, User: username, Ticket: ticket}
	_, _, err := p.executor.Run(ctx, []string{"login", "-s"}, opts)
	if err != nil {
		return Ok(false)
	}
	return Ok(true)
}

// GetTickets lists the local credential tickets.
func (p *CLIProvider) GetTickets(ctx context.Context) Result[[]ztag.Ticket] {
	stdout, _, err := p.executor.Run(ctx, []string{"tickets"}, p4exec.Options{})
	if err != nil {
		return Fail[[]ztag.Ticket](err.Error())
	}
	return Ok(ztag.Tickets(stdout))
}
