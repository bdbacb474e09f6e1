package provider

import (
	"context"

	"github.com/sgrant/p4view/internal/ztag"
)

// nativeUnavailable is returned by every NativeProvider operation until a
// native binding is linked in.
const nativeUnavailable = "native backend not available in this build"

// NativeProvider is the seam for a native-binding backend. It satisfies
// the same contract as CLIProvider so the session manager and discovery
// engine never know which backend is active. Until a binding is linked in,
// every operation fails with a uniform message.
type NativeProvider struct{}

// NewNativeProvider returns the native backend stub.
func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

func (p *NativeProvider) GetSubmittedChanges(ctx context.Context, maxCount int, depotPath string) Result[[]ztag.ChangelistInfo] {
	return Fail[[]ztag.ChangelistInfo](nativeUnavailable)
}

func (p *NativeProvider) GetPendingChanges(ctx context.Context, user string) Result[[]ztag.ChangelistInfo] {
	return Fail[[]ztag.ChangelistInfo](nativeUnavailable)
}

func (p *NativeProvider) GetCurrentUser(ctx context.Context) Result[string] {
	return Fail[string](nativeUnavailable)
}

func (p *NativeProvider) RunInfoCommand(ctx context.Context, address string) Result[ztag.ServerInfo] {
	return Fail[ztag.ServerInfo](nativeUnavailable)
}

func (p *NativeProvider) Login(ctx context.Context, address, username, password string) Result[string] {
	return Fail[string](nativeUnavailable)
}

func (p *NativeProvider) Logout(ctx context.Context, address, username string) Result[bool] {
	return Fail[bool](nativeUnavailable)
}

func (p *NativeProvider) ValidateTicket(ctx context.Context, address, username, ticket string) Result[bool] {
	// Conservative like the CLI backend: unavailable means not valid.
	return Ok(false)
}

func (p *NativeProvider) GetTickets(ctx context.Context) Result[[]ztag.Ticket] {
	return Fail[[]ztag.Ticket](nativeUnavailable)
}
