package strategy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hwobserve/hwobserve/pkg/platform"
)

func TestVendorRepoInstall(t *testing.T) {
	dir := t.TempDir()
	key := filepath.Join(dir, "hpe.asc")
	if err := os.WriteFile(key, []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----"), 0o644); err != nil {
		t.Fatalf("write key: %v", err)
	}

	run := &fakeRunner{}
	s := &VendorRepo{
		ToolName:      "ssacli",
		Packages:      []string{"ssacli"},
		RepoLine:      "deb https://downloads.linux.hpe.com/SDR/repo/mcp jammy/current non-free",
		RepoFile:      filepath.Join(dir, "hwobserve-hpe.list"),
		KeyringSource: key,
		KeyringFile:   filepath.Join(dir, "hpe.gpg"),
		Profile:       ubuntuProfile(),
		Run:           run,
	}

	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	data, err := os.ReadFile(s.RepoFile)
	if err != nil {
		t.Fatalf("repo source not written: %v", err)
	}
	if !strings.Contains(string(data), "downloads.linux.hpe.com") {
		t.Fatalf("unexpected repo source: %q", data)
	}
	if _, err := os.Stat(s.KeyringFile); err != nil {
		t.Fatalf("keyring not installed: %v", err)
	}
	if run.count("apt-get update") != 1 || run.count("apt-get install --yes ssacli") != 1 {
		t.Fatalf("unexpected commands: %v", run.calls)
	}
}

func TestVendorRepoInstallMissingKey(t *testing.T) {
	dir := t.TempDir()
	s := &VendorRepo{
		ToolName:      "ssacli",
		Packages:      []string{"ssacli"},
		RepoLine:      "deb https://example.invalid jammy main",
		RepoFile:      filepath.Join(dir, "repo.list"),
		KeyringSource: filepath.Join(dir, "absent.asc"),
		KeyringFile:   filepath.Join(dir, "key.gpg"),
		Profile:       ubuntuProfile(),
		Run:           &fakeRunner{},
	}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != MissingResource {
		t.Fatalf("error kind = %s, want %s", got, MissingResource)
	}
}

func TestVendorRepoInstallRequiresUbuntu(t *testing.T) {
	s := &VendorRepo{ToolName: "ssacli", Profile: platform.Profile{System: "debian"}, Run: &fakeRunner{}}
	err := s.Install(context.Background())
	if got := errorKind(t, err); got != UnsupportedPlatform {
		t.Fatalf("error kind = %s, want %s", got, UnsupportedPlatform)
	}
}

func TestVendorRepoRemoveKeepsPackages(t *testing.T) {
	dir := t.TempDir()
	repoFile := filepath.Join(dir, "repo.list")
	if err := os.WriteFile(repoFile, []byte("deb https://example.invalid jammy main\n"), 0o644); err != nil {
		t.Fatalf("seed repo file: %v", err)
	}

	run := &fakeRunner{}
	s := &VendorRepo{ToolName: "ssacli", Packages: []string{"ssacli"}, RepoFile: repoFile, Profile: ubuntuProfile(), Run: run}

	if err := s.Remove(context.Background()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(repoFile); !os.IsNotExist(err) {
		t.Fatalf("repo source still present")
	}
	if run.count("apt-get") != 0 {
		t.Fatalf("remove must not uninstall packages: %v", run.calls)
	}
}
