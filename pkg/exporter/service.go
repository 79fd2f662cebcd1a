package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
)

// DefaultUnitDir is where the exporter unit file is installed.
const DefaultUnitDir = "/etc/systemd/system"

var unitTemplate = template.Must(template.New("unit").Parse(`[Unit]
Description=Hardware metrics exporter
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart={{.ExecStart}} --config {{.ConfigPath}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`))

// Service manages the exporter's systemd unit.
type Service struct {
	Run hostexec.Runner

	Name      string
	UnitDir   string
	ExecStart string
}

type unitParams struct {
	ExecStart  string
	ConfigPath string
}

// RenderUnit produces the unit file contents.
func (s *Service) RenderUnit(configPath string) (string, error) {
	var b strings.Builder
	err := unitTemplate.Execute(&b, unitParams{ExecStart: s.ExecStart, ConfigPath: configPath})
	if err != nil {
		return "", fmt.Errorf("render unit: %w", err)
	}
	return b.String(), nil
}

// Install writes the unit file and enables the service to start on boot and
// now. Idempotent: rewriting an identical unit and re-enabling are no-ops
// for systemd.
func (s *Service) Install(ctx context.Context, configPath string) error {
	unit, err := s.RenderUnit(configPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.unitPath(), []byte(unit), 0o644); err != nil {
		return fmt.Errorf("write unit: %w", err)
	}
	if _, err := hostexec.Output(ctx, s.Run, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("daemon-reload: %w", err)
	}
	if _, err := hostexec.Output(ctx, s.Run, "systemctl", "enable", "--now", s.name()); err != nil {
		return fmt.Errorf("enable %s: %w", s.name(), err)
	}
	return nil
}

// Uninstall stops and disables the service and removes the unit file.
// Tolerates a unit that was never installed.
func (s *Service) Uninstall(ctx context.Context) error {
	// Best effort: the unit may already be gone.
	_, _ = hostexec.Output(ctx, s.Run, "systemctl", "disable", "--now", s.name())
	if err := os.Remove(s.unitPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove unit: %w", err)
	}
	if _, err := hostexec.Output(ctx, s.Run, "systemctl", "daemon-reload"); err != nil {
		return fmt.Errorf("daemon-reload: %w", err)
	}
	return nil
}

func (s *Service) name() string {
	if s.Name != "" {
		return s.Name
	}
	return DefaultService
}

func (s *Service) unitPath() string {
	dir := s.UnitDir
	if dir == "" {
		dir = DefaultUnitDir
	}
	return filepath.Join(dir, s.name()+".service")
}
