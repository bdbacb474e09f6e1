package provider

import (
	"github.com/spf13/viper"

	"github.com/sgrant/p4view/internal/logger"
)

// Backend selects which provider implementation the factory constructs.
type Backend string

const (
	BackendCLI    Backend = "cli"
	BackendNative Backend = "native"
)

// active is the process-wide provider instance. Construction and reset are
// not guarded against concurrent callers; callers must serialize factory
// resets themselves.
var active Provider

// configuredBackend reads the backend selection from configuration,
// defaulting to the CLI backend.
func configuredBackend() Backend {
	switch Backend(viper.GetString("backend")) {
	case BackendNative:
		return BackendNative
	default:
		return BackendCLI
	}
}

// newProvider constructs a provider for the given backend.
func newProvider(backend Backend) Provider {
	switch backend {
	case BackendNative:
		return NewNativeProvider()
	default:
		return NewCLIProvider()
	}
}

// Get returns the process-wide provider, lazily constructing it from the
// configured backend on first use.
func Get() Provider {
	if active == nil {
		backend := configuredBackend()
		logger.Debug("provider: constructing %s backend", backend)
		active = newProvider(backend)
	}
	return active
}

// Set replaces the process-wide provider. This is primarily used for
// testing.
func Set(p Provider) {
	active = p
}

// Reset disposes the process-wide provider so the next Get constructs a
// fresh instance.
func Reset() {
	active = nil
}
