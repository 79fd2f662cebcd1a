// Package hostexec runs host commands with a timeout and bounded output.
// Strategies and hardware probes depend on the Runner interface so tests
// can substitute canned results.
package hostexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Result carries the outcome of one command invocation.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// Runner executes a single host command. Implementations must not retry.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Result, error)
}

// Executor is the production Runner. A zero Executor runs commands with no
// timeout and unbounded output.
type Executor struct {
	Timeout   time.Duration
	MaxOutput int
}

func (e *Executor) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if name == "" {
		return nil, errors.New("command is required")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	command := exec.CommandContext(ctx, name, args...)

	stdoutBuf := &limitedBuffer{limit: e.MaxOutput}
	stderrBuf := &limitedBuffer{limit: e.MaxOutput}
	command.Stdout = stdoutBuf
	command.Stderr = stderrBuf

	err := command.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, err
		}
	}

	if stdoutBuf.truncated || stderrBuf.truncated {
		return &Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String(), Code: exitCode}, fmt.Errorf("output truncated")
	}

	return &Result{Stdout: stdoutBuf.String(), Stderr: stderrBuf.String(), Code: exitCode}, nil
}

// Output runs the command and returns trimmed stdout, with a non-nil error
// for both spawn failures and non-zero exits.
func Output(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	res, err := r.Run(ctx, name, args...)
	if err != nil {
		return "", err
	}
	if res.Code != 0 {
		return "", fmt.Errorf("%s exited %d: %s", name, res.Code, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}

type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.limit <= 0 {
		return l.buf.Write(p)
	}
	remaining := l.limit - l.buf.Len()
	if remaining <= 0 {
		l.truncated = true
		return len(p), nil
	}
	if len(p) > remaining {
		l.truncated = true
		_, _ = l.buf.Write(p[:remaining])
		return len(p), nil
	}
	return l.buf.Write(p)
}

func (l *limitedBuffer) String() string {
	return l.buf.String()
}

var _ io.Writer = (*limitedBuffer)(nil)
