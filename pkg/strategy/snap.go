package strategy

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
)

// Snap installs a tool as a snap from a given channel.
type Snap struct {
	ToolName string
	SnapName string
	Channel  string
	Run      hostexec.Runner
	Log      *slog.Logger
}

func (s *Snap) Tool() string { return s.ToolName }
func (s *Snap) Kind() Kind   { return KindSnap }

// Viable reports whether snapd's CLI is on the host at all. Without it the
// snap can be neither installed nor queried, and a registered fallback
// strategy should take over.
func (s *Snap) Viable() bool {
	_, err := exec.LookPath("snap")
	return err == nil
}

// Install installs the snap, or refreshes it onto the configured channel
// when it is already present, so repeated installs converge on the same
// end state.
func (s *Snap) Install(ctx context.Context) error {
	verb := "install"
	if s.listed(ctx) {
		verb = "refresh"
	}
	args := []string{verb, s.SnapName}
	if s.Channel != "" {
		args = append(args, "--channel="+s.Channel)
	}
	if _, err := hostexec.Output(ctx, s.Run, "snap", args...); err != nil {
		return installErr(s.ToolName, CommandFailed, "snap %s %s: %w", verb, s.SnapName, err)
	}
	s.logger().Info("installed snap", "tool", s.ToolName, "snap", s.SnapName, "channel", s.Channel)
	return nil
}

func (s *Snap) Remove(ctx context.Context) error {
	if !s.listed(ctx) {
		return nil
	}
	if _, err := hostexec.Output(ctx, s.Run, "snap", "remove", s.SnapName); err != nil {
		return err
	}
	s.logger().Info("removed snap", "tool", s.ToolName, "snap", s.SnapName)
	return nil
}

// Check requires every service of the snap to be active; a snap without
// services passes when it is installed at all.
func (s *Snap) Check(ctx context.Context) bool {
	out, err := hostexec.Output(ctx, s.Run, "snap", "services", s.SnapName)
	if err != nil {
		return s.listed(ctx)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return s.listed(ctx)
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if fields[2] != "active" {
			return false
		}
	}
	return true
}

func (s *Snap) listed(ctx context.Context) bool {
	_, err := hostexec.Output(ctx, s.Run, "snap", "list", s.SnapName)
	return err == nil
}

func (s *Snap) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}
