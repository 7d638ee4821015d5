package implementation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestNewInvocation(t *testing.T) {
	tests := []struct {
		program string
		path    string
		want    Invocation
	}{
		{
			program: "",
			path:    filepath.Join("/", "justfile"),
			want:    Invocation{Program: "just", Args: []string{"--fmt", "--unstable", "--justfile", "justfile"}, Dir: filepath.Join("/")},
		},
		{
			program: "/usr/local/bin/just",
			path:    filepath.Join("/", "home", "me", "project", "sub", "deploy.just"),
			want:    Invocation{Program: "/usr/local/bin/just", Args: []string{"--fmt", "--unstable", "--justfile", "deploy.just"}, Dir: filepath.Join("/", "home", "me", "project", "sub")},
		},
	}

	for _, test := range tests {
		if diff := cmp.Diff(test.want, NewInvocation(test.program, test.path)); diff != "" {
			t.Errorf("NewInvocation(%q, %q) mismatch (-want +got):\n%s", test.program, test.path, diff)
		}
	}
}

func TestInvocationString(t *testing.T) {
	invocation := NewInvocation("just", filepath.Join("/", "a", "justfile"))
	if got, want := invocation.String(), "just --fmt --unstable --justfile justfile"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// script writes an executable shell script and returns its path.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "just")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecRunnerWorkingDirectory(t *testing.T) {
	program := script(t, `pwd -P; echo "$@"`)
	dir := filepath.Join(t.TempDir(), "one", "two", "three")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	stdout, err := ExecRunner{}.Run(context.Background(), NewInvocation(program, filepath.Join(dir, "justfile")))
	if err != nil {
		t.Fatal(err)
	}

	want := resolved + "\n--fmt --unstable --justfile justfile\n"
	if stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	program := script(t, `echo partial; echo "error: Expected '*', ':', or '=' but found end of line" >&2; exit 3`)
	invocation := NewInvocation(program, filepath.Join(t.TempDir(), "justfile"))

	stdout, err := ExecRunner{}.Run(context.Background(), invocation)
	if stdout != "" {
		t.Errorf("stdout should be dropped on failure, got %q", stdout)
	}

	var processError *ProcessError
	if !errors.As(err, &processError) {
		t.Fatalf("expected *ProcessError, got %T: %v", err, err)
	}
	if processError.ExitCode != 3 {
		t.Errorf("exit code = %d", processError.ExitCode)
	}
	if !strings.HasPrefix(err.Error(), "Command failed: "+invocation.String()) {
		t.Errorf("message = %q", err.Error())
	}
	if !strings.HasSuffix(err.Error(), "but found end of line") {
		t.Errorf("message does not carry stderr: %q", err.Error())
	}
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	invocation := NewInvocation(filepath.Join(t.TempDir(), "no-such-just"), filepath.Join(t.TempDir(), "justfile"))

	_, err := ExecRunner{}.Run(context.Background(), invocation)

	var processError *ProcessError
	if !errors.As(err, &processError) {
		t.Fatalf("expected *ProcessError, got %T: %v", err, err)
	}
	if processError.ExitCode != -1 {
		t.Errorf("exit code = %d", processError.ExitCode)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cause should be a missing file, got %v", errors.Unwrap(err))
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	program := script(t, "exec sleep 5")
	invocation := NewInvocation(program, filepath.Join(t.TempDir(), "justfile"))

	start := time.Now()
	_, err := ExecRunner{Timeout: 50 * time.Millisecond}.Run(context.Background(), invocation)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 4*time.Second {
		t.Errorf("timeout not applied, took %s", elapsed)
	}
}
