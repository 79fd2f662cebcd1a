package strategy

import (
	"context"
	"log/slog"
	"os"

	"github.com/hwobserve/hwobserve/pkg/checksum"
	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/platform"
)

// ResourceFormat selects how an attached artifact is placed on the host.
type ResourceFormat int

const (
	// FormatDeb: the attachment is a Debian package installed with dpkg;
	// the tool binary lands at OriginPath and is symlinked into place.
	FormatDeb ResourceFormat = iota
	// FormatBinary: the attachment is the tool binary itself, made
	// executable and symlinked into place.
	FormatBinary
)

// Resource installs a tool from an operator-attached artifact. Install never
// fetches anything: an absent, empty, or unrecognised attachment is a
// durable MissingResource condition that only the operator can clear.
type Resource struct {
	ToolName     string
	ResourceName string
	// Path is where the attachment lives when the operator has supplied it.
	Path   string
	Format ResourceFormat

	// OriginPath is where the deb drops the binary (FormatDeb only).
	OriginPath string
	// SymlinkBin is the stable path the exporter invokes the tool through.
	SymlinkBin string

	Versions []checksum.VersionInfo
	Profile  platform.Profile
	Run      hostexec.Runner
	Log      *slog.Logger
}

func (s *Resource) Tool() string { return s.ToolName }
func (s *Resource) Kind() Kind   { return KindResource }

func (s *Resource) Install(ctx context.Context) error {
	info, err := os.Stat(s.Path)
	if err != nil {
		return installErr(s.ToolName, MissingResource, "resource %s not attached at %s", s.ResourceName, s.Path)
	}
	// A zero-size file is the placeholder the operator is expected to
	// replace: vendors forbid redistributing these artifacts.
	if info.Size() == 0 {
		return installErr(s.ToolName, MissingResource, "resource %s at %s is empty", s.ResourceName, s.Path)
	}

	if len(s.Versions) > 0 {
		if !s.archSupported() {
			return installErr(s.ToolName, UnsupportedPlatform, "no supported %s release for %s", s.ResourceName, s.Profile.Machine)
		}
		ok, err := checksum.Validate(s.Versions, s.Path, s.Profile)
		if err != nil {
			return installErr(s.ToolName, MissingResource, "validate resource %s: %w", s.ResourceName, err)
		}
		if !ok {
			return installErr(s.ToolName, MissingResource, "resource %s at %s does not match any supported release", s.ResourceName, s.Path)
		}
	}

	switch s.Format {
	case FormatDeb:
		if _, err := hostexec.Output(ctx, s.Run, "dpkg", "-i", s.Path); err != nil {
			return installErr(s.ToolName, CommandFailed, "dpkg -i %s: %w", s.Path, err)
		}
		if err := symlink(s.OriginPath, s.SymlinkBin); err != nil {
			return installErr(s.ToolName, CommandFailed, "link %s: %w", s.SymlinkBin, err)
		}
	case FormatBinary:
		if err := os.Chmod(s.Path, 0o755); err != nil {
			return installErr(s.ToolName, CommandFailed, "make %s executable: %w", s.Path, err)
		}
		if err := symlink(s.Path, s.SymlinkBin); err != nil {
			return installErr(s.ToolName, CommandFailed, "link %s: %w", s.SymlinkBin, err)
		}
	}

	s.logger().Info("installed attached resource", "tool", s.ToolName, "resource", s.ResourceName)
	return nil
}

func (s *Resource) Remove(ctx context.Context) error {
	if err := os.Remove(s.SymlinkBin); err != nil && !os.IsNotExist(err) {
		return err
	}
	if s.Format == FormatDeb && debInstalled(ctx, s.Run, s.ToolName) {
		if _, err := hostexec.Output(ctx, s.Run, "dpkg", "--remove", s.ToolName); err != nil {
			return err
		}
	}
	s.logger().Info("removed attached resource", "tool", s.ToolName)
	return nil
}

func (s *Resource) Check(ctx context.Context) bool {
	target, err := os.Stat(s.SymlinkBin)
	if err != nil {
		return false
	}
	return target.Mode()&0o111 != 0
}

func (s *Resource) archSupported() bool {
	for _, v := range s.Versions {
		for _, a := range v.Archs {
			if a == s.Profile.Machine {
				return true
			}
		}
	}
	return false
}

func (s *Resource) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}

// symlink replaces dst with a link to src.
func symlink(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(src, dst)
}
