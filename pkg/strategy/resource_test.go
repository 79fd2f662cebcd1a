package strategy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/hwobserve/hwobserve/pkg/checksum"
	"github.com/hwobserve/hwobserve/pkg/platform"
)

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func digestOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func TestResourceInstallMissingAttachment(t *testing.T) {
	s := &Resource{
		ToolName:     "storcli",
		ResourceName: "storcli-deb",
		Path:         filepath.Join(t.TempDir(), "storcli-deb"),
		Run:          &fakeRunner{},
	}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != MissingResource {
		t.Fatalf("error kind = %s, want %s", got, MissingResource)
	}
}

func TestResourceInstallEmptyPlaceholder(t *testing.T) {
	dir := t.TempDir()
	s := &Resource{
		ToolName:     "storcli",
		ResourceName: "storcli-deb",
		Path:         writeArtifact(t, dir, "storcli-deb", ""),
		Run:          &fakeRunner{},
	}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != MissingResource {
		t.Fatalf("error kind = %s, want %s", got, MissingResource)
	}
}

func TestResourceInstallChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	s := &Resource{
		ToolName:     "storcli",
		ResourceName: "storcli-deb",
		Path:         writeArtifact(t, dir, "storcli-deb", "tampered contents"),
		Versions: []checksum.VersionInfo{{
			Version:   "007.2508",
			Archs:     []platform.Arch{"x86_64"},
			SHA256:    digestOf("genuine contents"),
			AllSeries: true,
		}},
		Profile: ubuntuProfile(),
		Run:     &fakeRunner{},
	}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != MissingResource {
		t.Fatalf("error kind = %s, want %s", got, MissingResource)
	}
}

func TestResourceInstallUnsupportedArch(t *testing.T) {
	dir := t.TempDir()
	s := &Resource{
		ToolName:     "sas2ircu",
		ResourceName: "sas2ircu-bin",
		Path:         writeArtifact(t, dir, "sas2ircu-bin", "binary"),
		Versions: []checksum.VersionInfo{{
			Version:   "20.00.00.00",
			Archs:     []platform.Arch{"x86_64"},
			SHA256:    digestOf("binary"),
			AllSeries: true,
		}},
		Profile: platform.Profile{System: "ubuntu", Release: "22.04", Machine: "aarch64"},
		Run:     &fakeRunner{},
	}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != UnsupportedPlatform {
		t.Fatalf("error kind = %s, want %s", got, UnsupportedPlatform)
	}
}

func TestResourceInstallBinary(t *testing.T) {
	dir := t.TempDir()
	content := "#!/bin/true"
	s := &Resource{
		ToolName:     "sas3ircu",
		ResourceName: "sas3ircu-bin",
		Path:         writeArtifact(t, dir, "sas3ircu-bin", content),
		Format:       FormatBinary,
		SymlinkBin:   filepath.Join(dir, "sas3ircu"),
		Versions: []checksum.VersionInfo{{
			Version:   "16.00.00.00",
			Archs:     []platform.Arch{"x86_64"},
			SHA256:    digestOf(content),
			AllSeries: true,
		}},
		Profile: ubuntuProfile(),
		Run:     &fakeRunner{},
	}

	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if !s.Check(context.Background()) {
		t.Fatalf("check failed after install")
	}

	link, err := os.Readlink(s.SymlinkBin)
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if link != s.Path {
		t.Fatalf("symlink points to %s, want %s", link, s.Path)
	}

	// Reinstall converges on the same end state.
	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
}

func TestResourceInstallDeb(t *testing.T) {
	dir := t.TempDir()
	run := &fakeRunner{}
	origin := writeArtifact(t, dir, "storcli64", "binary")
	s := &Resource{
		ToolName:     "storcli",
		ResourceName: "storcli-deb",
		Path:         writeArtifact(t, dir, "storcli-deb", "deb contents"),
		Format:       FormatDeb,
		OriginPath:   origin,
		SymlinkBin:   filepath.Join(dir, "storcli"),
		Profile:      ubuntuProfile(),
		Run:          run,
	}

	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if run.count("dpkg -i "+s.Path) != 1 {
		t.Fatalf("dpkg not invoked: %v", run.calls)
	}
	link, err := os.Readlink(s.SymlinkBin)
	if err != nil {
		t.Fatalf("readlink: %v", err)
	}
	if link != origin {
		t.Fatalf("symlink points to %s, want %s", link, origin)
	}
}

func TestResourceRemove(t *testing.T) {
	dir := t.TempDir()
	content := "#!/bin/true"
	s := &Resource{
		ToolName:     "sas3ircu",
		ResourceName: "sas3ircu-bin",
		Path:         writeArtifact(t, dir, "sas3ircu-bin", content),
		Format:       FormatBinary,
		SymlinkBin:   filepath.Join(dir, "sas3ircu"),
		Profile:      ubuntuProfile(),
		Run:          &fakeRunner{},
	}
	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}

	if err := s.Remove(context.Background()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Check(context.Background()) {
		t.Fatalf("check passed after remove")
	}
	// Removing again is a no-op.
	if err := s.Remove(context.Background()); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}
