package strategy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
)

func TestSnapInstallFresh(t *testing.T) {
	run := &fakeRunner{responses: map[string]*hostexec.Result{
		"snap list dcgm": {Code: 1, Stderr: "error: no matching snaps installed"},
	}}
	s := &Snap{ToolName: "dcgm", SnapName: "dcgm", Channel: "v4/stable", Run: run}

	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if run.count("snap install dcgm --channel=v4/stable") != 1 {
		t.Fatalf("unexpected commands: %v", run.calls)
	}
}

func TestSnapInstallRefreshesExisting(t *testing.T) {
	run := &fakeRunner{responses: map[string]*hostexec.Result{
		"snap list dcgm": {Stdout: "Name  Version  Rev  Tracking  Publisher  Notes\ndcgm  3.3.5    123  v3/stable nvidia     -"},
	}}
	s := &Snap{ToolName: "dcgm", SnapName: "dcgm", Channel: "v4/stable", Run: run}

	if err := s.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if run.count("snap refresh dcgm --channel=v4/stable") != 1 {
		t.Fatalf("expected refresh onto the configured channel: %v", run.calls)
	}
	if run.count("snap install") != 0 {
		t.Fatalf("installed snap must be refreshed, not reinstalled: %v", run.calls)
	}
}

func TestSnapCheckServiceStates(t *testing.T) {
	header := "Service  Startup  Current  Notes\n"
	cases := []struct {
		name string
		out  string
		want bool
	}{
		{"all active", header + "dcgm.dcgm-exporter  enabled  active  -", true},
		{"one inactive", header + "dcgm.dcgm-exporter  enabled  inactive  -", false},
	}
	for _, tc := range cases {
		run := &fakeRunner{responses: map[string]*hostexec.Result{
			"snap services dcgm": {Stdout: tc.out},
			"snap list dcgm":     {Stdout: "Name Version"},
		}}
		s := &Snap{ToolName: "dcgm", SnapName: "dcgm", Run: run}
		if got := s.Check(context.Background()); got != tc.want {
			t.Fatalf("%s: check = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSnapCheckFallsBackToList(t *testing.T) {
	run := &fakeRunner{responses: map[string]*hostexec.Result{
		"snap services smartctl-exporter": {Code: 1, Stderr: "error: snap has no services"},
		"snap list smartctl-exporter":     {Stdout: "Name Version"},
	}}
	s := &Snap{ToolName: "smartctl_exporter", SnapName: "smartctl-exporter", Run: run}
	if !s.Check(context.Background()) {
		t.Fatalf("listed snap without services reported absent")
	}
}

func TestSnapViable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "snap"), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("seed fake snap: %v", err)
	}
	s := &Snap{ToolName: "dcgm", SnapName: "dcgm"}

	t.Setenv("PATH", dir)
	if !s.Viable() {
		t.Fatalf("snap on PATH reported not viable")
	}

	t.Setenv("PATH", t.TempDir())
	if s.Viable() {
		t.Fatalf("missing snapd reported viable")
	}
}

func TestSnapRemoveAbsentIsNoOp(t *testing.T) {
	run := &fakeRunner{responses: map[string]*hostexec.Result{
		"snap list dcgm": {Code: 1, Stderr: "error: no matching snaps installed"},
	}}
	s := &Snap{ToolName: "dcgm", SnapName: "dcgm", Run: run}

	if err := s.Remove(context.Background()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if run.count("snap remove") != 0 {
		t.Fatalf("absent snap removed: %v", run.calls)
	}
}
