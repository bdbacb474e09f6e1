// Package p4exec runs the Perforce CLI as a short-lived child process and
// returns its output. All server communication in this module goes through
// this package; there is no network client.
package p4exec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/viper"

	"github.com/sgrant/p4view/internal/logger"
)

// TicketEnvVar carries the credential ticket to the child process. The
// ticket is never placed on the command line where it would be visible in
// the process table.
const TicketEnvVar = "P4PASSWD"

// Options are per-invocation connection overrides. Zero values mean "use
// whatever ambient configuration the binary picks up".
type Options struct {
	Host   string // -p <address>
	User   string // -u <user>
	Client string // -c <client>
	Ticket string // exported via TicketEnvVar, never argv
}

// CommandError reports a child process that exited non-zero.
type CommandError struct {
	Stderr   string
	ExitCode int
	Err      error
}

// Error prefers the tool's own stderr; when the process produced none it
// falls back to a generic failure message.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	if e.ExitCode != 0 {
		return fmt.Sprintf("p4 failed with code %d", e.ExitCode)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor runs one p4 invocation. It can be swapped for testing via the
// provider constructors.
type Executor interface {
	// Run executes "p4 -ztag <args...>" and returns stdout and stderr.
	// A non-zero exit is returned as a *CommandError.
	Run(ctx context.Context, args []string, opts Options) (stdout, stderr string, err error)

	// RunRaw is Run without the -ztag global flag, for commands whose
	// output has no tagged framing (login ticket printing).
	RunRaw(ctx context.Context, args []string, opts Options) (stdout, stderr string, err error)

	// RunInput is RunRaw with a single string written to the child's
	// stdin before it is closed. Required for password submission.
	RunInput(ctx context.Context, input string, args []string, opts Options) (stdout, stderr string, err error)
}

// RealExecutor invokes the configured p4 binary.
type RealExecutor struct {
	binary string
}

// NewRealExecutor returns an executor using the configured binary name
// ("p4.binary" in config, default "p4").
func NewRealExecutor() *RealExecutor {
	binary := viper.GetString("p4.binary")
	if binary == "" {
		binary = "p4"
	}
	return &RealExecutor{binary: binary}
}

// buildArgs assembles the global argument list: connection overrides come
// before the command so the CLI treats them as global flags.
func buildArgs(tagged bool, args []string, opts Options) []string {
	full := make([]string, 0, len(args)+7)
	if tagged {
		full = append(full, "-ztag")
	}
	if opts.Host != "" {
		full = append(full, "-p", opts.Host)
	}
	if opts.User != "" {
		full = append(full, "-u", opts.User)
	}
	if opts.Client != "" {
		full = append(full, "-c", opts.Client)
	}
	return append(full, args...)
}

func (e *RealExecutor) command(ctx context.Context, tagged bool, args []string, opts Options) *exec.Cmd {
	cmd := exec.CommandContext(ctx, e.binary, buildArgs(tagged, args, opts)...)
	cmd.Env = os.Environ()
	if opts.Ticket != "" {
		cmd.Env = append(cmd.Env, TicketEnvVar+"="+opts.Ticket)
	}
	return cmd
}

// run executes the command, draining stdout and stderr fully before
// resolving so the child can never block on a full pipe.
func (e *RealExecutor) run(ctx context.Context, tagged bool, input *string, args []string, opts Options) (string, string, error) {
	cmd := e.command(ctx, tagged, args, opts)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if input != nil {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return "", "", &CommandError{Err: fmt.Errorf("failed to create stdin pipe: %w", err)}
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return "", "", &CommandError{Err: fmt.Errorf("failed to start %s: %w", e.binary, err)}
		}
		// Write the input and close stdin so the child doesn't hang
		// waiting for more. A failed write (the child may exit without
		// reading) is logged; the exit code decides the outcome.
		if _, werr := io.WriteString(stdin, *input); werr != nil {
			logger.Warn("p4exec: failed to write stdin: %v", werr)
		}
		stdin.Close()
	} else {
		if err := cmd.Start(); err != nil {
			return "", "", &CommandError{Err: fmt.Errorf("failed to start %s: %w", e.binary, err)}
		}
	}

	err := cmd.Wait()
	outStr, errStr := stdout.String(), stderr.String()

	if err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		logger.Debug("p4exec: command failed: args=%v, code=%d, stderr=%s", args, code, errStr)
		return outStr, errStr, &CommandError{Stderr: errStr, ExitCode: code, Err: err}
	}

	logger.Debug("p4exec: command succeeded: args=%v", args)
	return outStr, errStr, nil
}

// Run executes a tagged-output command.
func (e *RealExecutor) Run(ctx context.Context, args []string, opts Options) (string, string, error) {
	return e.run(ctx, true, nil, args, opts)
}

// RunRaw executes a command without tagged framing.
func (e *RealExecutor) RunRaw(ctx context.Context, args []string, opts Options) (string, string, error) {
	return e.run(ctx, false, nil, args, opts)
}

// RunInput executes a command, feeding input to the child's stdin.
func (e *RealExecutor) RunInput(ctx context.Context, input string, args []string, opts Options) (string, string, error) {
	return e.run(ctx, false, &input, args, opts)
}
