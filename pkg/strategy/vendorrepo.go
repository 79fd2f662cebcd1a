package strategy

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/platform"
)

// VendorRepo installs a tool from a vendor apt repository. Install adds the
// repository source and signing key before pulling the packages.
type VendorRepo struct {
	ToolName string
	Packages []string

	// RepoLine is a full sources.list entry, written to RepoFile.
	RepoLine string
	RepoFile string

	// KeyringSource is an armored signing key shipped with hwobserve;
	// Install copies it to KeyringFile. Both may be empty for repositories
	// signed by an already-trusted key.
	KeyringSource string
	KeyringFile   string

	Profile platform.Profile
	Run     hostexec.Runner
	Log     *slog.Logger
}

func (s *VendorRepo) Tool() string { return s.ToolName }
func (s *VendorRepo) Kind() Kind   { return KindVendorRepo }

func (s *VendorRepo) Install(ctx context.Context) error {
	if s.Profile.System != "ubuntu" {
		return installErr(s.ToolName, UnsupportedPlatform, "vendor repo install requires ubuntu, host is %s", s.Profile.System)
	}

	if s.KeyringSource != "" && s.KeyringFile != "" {
		key, err := os.ReadFile(s.KeyringSource)
		if err != nil {
			return installErr(s.ToolName, MissingResource, "read signing key: %w", err)
		}
		if err := writeRoot(s.KeyringFile, key); err != nil {
			return installErr(s.ToolName, CommandFailed, "install signing key: %w", err)
		}
	}

	if err := writeRoot(s.RepoFile, []byte(s.RepoLine+"\n")); err != nil {
		return installErr(s.ToolName, CommandFailed, "write repo source: %w", err)
	}

	if _, err := hostexec.Output(ctx, s.Run, "apt-get", "update"); err != nil {
		return installErr(s.ToolName, CommandFailed, "apt-get update: %w", err)
	}
	for _, pkg := range s.Packages {
		if _, err := hostexec.Output(ctx, s.Run, "apt-get", "install", "--yes", pkg); err != nil {
			return installErr(s.ToolName, CommandFailed, "apt-get install %s: %w", pkg, err)
		}
		s.logger().Info("installed package from vendor repo", "tool", s.ToolName, "package", pkg)
	}
	return nil
}

// Remove drops the repository source but keeps the packages; uninstalling
// them can break co-resident services that grew a dependency on them.
func (s *VendorRepo) Remove(ctx context.Context) error {
	for _, path := range []string{s.RepoFile, s.KeyringFile} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	s.logger().Info("removed vendor repo source, packages kept", "tool", s.ToolName)
	return nil
}

func (s *VendorRepo) Check(ctx context.Context) bool {
	for _, pkg := range s.Packages {
		if !debInstalled(ctx, s.Run, pkg) {
			return false
		}
	}
	return true
}

func (s *VendorRepo) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logging.Discard()
}

func writeRoot(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
