package hostexec

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecutorSuccess(t *testing.T) {
	e := &Executor{Timeout: 2 * time.Second}
	res, err := e.Run(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(res.Stdout, "hello") {
		t.Fatalf("stdout = %q", res.Stdout)
	}
	if res.Code != 0 {
		t.Fatalf("code = %d", res.Code)
	}
}

func TestExecutorNonZeroExit(t *testing.T) {
	e := &Executor{}
	res, err := e.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	if err != nil {
		t.Fatalf("non-zero exit must not be a run error: %v", err)
	}
	if res.Code != 3 {
		t.Fatalf("code = %d, want 3", res.Code)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Fatalf("stderr = %q", res.Stderr)
	}
}

func TestExecutorMissingCommand(t *testing.T) {
	e := &Executor{}
	if _, err := e.Run(context.Background(), "hwobserve-no-such-command"); err == nil {
		t.Fatalf("expected spawn error")
	}
}

func TestExecutorEmptyCommand(t *testing.T) {
	e := &Executor{}
	if _, err := e.Run(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty command")
	}
}

func TestExecutorTimeout(t *testing.T) {
	e := &Executor{Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, _ = e.Run(context.Background(), "sleep", "2")
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout did not trigger quickly")
	}
}

func TestExecutorOutputTruncation(t *testing.T) {
	e := &Executor{MaxOutput: 10}
	res, err := e.Run(context.Background(), "sh", "-c", "printf '123456789012345'")
	if err == nil {
		t.Fatalf("expected truncation error")
	}
	if len(res.Stdout) != 10 {
		t.Fatalf("stdout length = %d, want 10", len(res.Stdout))
	}
}

func TestOutputTrimsAndFailsOnExit(t *testing.T) {
	e := &Executor{}
	out, err := Output(context.Background(), e, "echo", "  spaced  ")
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if out != "spaced" {
		t.Fatalf("out = %q", out)
	}

	_, err = Output(context.Background(), e, "sh", "-c", "echo bad >&2; exit 1")
	if err == nil {
		t.Fatalf("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("stderr missing from error: %v", err)
	}
}
