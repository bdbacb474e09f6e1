package p4exec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

var ctx = context.Background()

func TestBuildArgs_GlobalFlagFirst(t *testing.T) {
	args := buildArgs(true, []string{"changes", "-s", "submitted"}, Options{})
	if len(args) == 0 || args[0] != "-ztag" {
		t.Fatalf("Expected -ztag first, got %v", args)
	}
}

func TestBuildArgs_Overrides(t *testing.T) {
	opts := Options{Host: "perforce:1666", User: "alice", Client: "ws1", Ticket: "SECRET"}
	args := buildArgs(true, []string{"info"}, opts)

	want := []string{"-ztag", "-p", "perforce:1666", "-u", "alice", "-c", "ws1", "info"}
	if len(args) != len(want) {
		t.Fatalf("Expected %v, got %v", want, args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("Arg %d: expected %s, got %s", i, want[i], args[i])
		}
	}

	// The ticket must never appear on the command line.
	for _, a := range args {
		if a == "SECRET" {
			t.Error("Ticket leaked into argv")
		}
	}
}

func TestBuildArgs_Raw(t *testing.T) {
	args := buildArgs(false, []string{"login", "-p"}, Options{Host: "perforce:1666"})
	for _, a := range args {
		if a == "-ztag" {
			t.Error("Raw invocation should not carry -ztag")
		}
	}
	if args[0] != "-p" || args[1] != "perforce:1666" {
		t.Errorf("Expected host override first, got %v", args)
	}
}

// fakeBinary points the executor at a stand-in for the p4 binary.
func fakeBinary(t *testing.T, name string) *RealExecutor {
	t.Helper()
	viper.Set("p4.binary", name)
	t.Cleanup(func() { viper.Set("p4.binary", "p4") })
	return NewRealExecutor()
}

func TestRun_CapturesStdout(t *testing.T) {
	e := fakeBinary(t, "echo")

	stdout, _, err := e.Run(ctx, []string{"hello"}, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// echo prints the injected global flag too
	if !strings.Contains(stdout, "-ztag") || !strings.Contains(stdout, "hello") {
		t.Errorf("Unexpected stdout: %q", stdout)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	e := fakeBinary(t, "false")

	_, _, err := e.Run(ctx, nil, Options{})
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected *CommandError, got %T", err)
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", cmdErr.ExitCode)
	}
	if cmdErr.Error() != "p4 failed with code 1" {
		t.Errorf("Expected generic failure text for empty stderr, got %q", cmdErr.Error())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	e := fakeBinary(t, "p4view-no-such-binary")

	_, _, err := e.Run(ctx, []string{"info"}, Options{})
	if err == nil {
		t.Fatal("Expected error for missing binary")
	}
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Expected *CommandError, got %T", err)
	}
}

func TestRunInput_WritesStdin(t *testing.T) {
	e := fakeBinary(t, "cat")

	stdout, _, err := e.RunInput(ctx, "secret\n", nil, Options{})
	if err != nil {
		t.Fatalf("RunInput failed: %v", err)
	}
	if stdout != "secret\n" {
		t.Errorf("Expected stdin echoed back, got %q", stdout)
	}
}

func TestRunInput_ChildIgnoresStdin(t *testing.T) {
	e := fakeBinary(t, "true")

	// A child that exits without reading stdin must still resolve on its
	// exit code, not on the stdin write.
	_, _, err := e.RunInput(ctx, "unread input\n", nil, Options{})
	if err != nil {
		t.Errorf("Expected success from a child ignoring stdin, got %v", err)
	}
}

func TestCommandError_PrefersStderr(t *testing.T) {
	err := &CommandError{Stderr: "Perforce password (P4PASSWD) invalid or unset.", ExitCode: 1}
	if !strings.Contains(err.Error(), "P4PASSWD") {
		t.Errorf("Expected stderr in message, got %q", err.Error())
	}
}
