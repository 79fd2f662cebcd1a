package strategy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/platform"
)

// APT installs a tool from the distribution archives.
type APT struct {
	ToolName string
	Packages []string
	Profile  platform.Profile
	Run      hostexec.Runner
	Log      *slog.Logger
}

func (s *APT) Tool() string { return s.ToolName }
func (s *APT) Kind() Kind   { return KindPackage }

func (s *APT) Install(ctx context.Context) error {
	if s.Profile.System != "ubuntu" {
		return installErr(s.ToolName, UnsupportedPlatform, "apt install requires ubuntu, host is %s", s.Profile.System)
	}
	for _, pkg := range s.Packages {
		args := append([]string{"install", "--yes"}, pkg)
		if _, err := hostexec.Output(ctx, s.Run, "apt-get", args...); err != nil {
			return installErr(s.ToolName, CommandFailed, "apt-get install %s: %w", pkg, err)
		}
		s.logger().Info("installed package", "tool", s.ToolName, "package", pkg)
	}
	return nil
}

// Remove deliberately leaves the packages in place: they may be shared with
// other services on the machine. Deconfiguration is carried by the exporter
// enable-list instead.
func (s *APT) Remove(ctx context.Context) error {
	s.logger().Info("skip removing packages", "tool", s.ToolName, "packages", strings.Join(s.Packages, ","))
	return nil
}

func (s *APT) Check(ctx context.Context) bool {
	for _, pkg := range s.Packages {
		if !debInstalled(ctx, s.Run, pkg) {
			return false
		}
	}
	return true
}

func (s *APT) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}

// debInstalled queries the dpkg database for an installed package. Probe
// failure counts as not installed.
func debInstalled(ctx context.Context, run hostexec.Runner, pkg string) bool {
	out, err := hostexec.Output(ctx, run, "dpkg-query", "-W", "-f=${Status}", pkg)
	if err != nil {
		return false
	}
	return strings.Contains(out, "install ok installed")
}
