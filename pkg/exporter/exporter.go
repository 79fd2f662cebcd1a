// Package exporter owns the metrics exporter on the host: its config file,
// its systemd unit, and the alert rules that pair with the enabled
// collectors.
package exporter

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hwobserve/hwobserve/pkg/config"
	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/reconcile"
	"github.com/hwobserve/hwobserve/pkg/tool"
)

const (
	// DefaultService is the systemd unit name of the exporter.
	DefaultService = "hwobserve-exporter"
	// DefaultConfigPath is where the exporter reads its config.
	DefaultConfigPath = "/etc/hwobserve-exporter/config.yaml"
)

// ErrRestartFailed wraps a restart that left the exporter down after the
// config was already written. The config on disk is correct; only the
// service needs attention.
var ErrRestartFailed = errors.New("exporter restart failed")

// Writer regenerates the exporter config from the verified tool set and
// restarts the service when, and only when, the rendered config differs
// from what is on disk.
type Writer struct {
	Registry *tool.Registry
	Run      hostexec.Runner
	Log      *slog.Logger

	ConfigPath string
	Service    string

	Port             int
	ExporterLogLevel string
	CollectTimeout   time.Duration
	Redfish          config.RedfishConfig

	AlertRulesDir       string
	AlertRulesDeployDir string

	// RestartRetries bounds the post-restart health poll; RetryInterval
	// is the pause between polls.
	RestartRetries int
	RetryInterval  time.Duration
}

// exporterConfig is the YAML document the exporter process consumes.
type exporterConfig struct {
	Port             int      `yaml:"port"`
	Level            string   `yaml:"level"`
	CollectTimeout   int      `yaml:"collect_timeout"`
	EnableCollectors []string `yaml:"enable_collectors"`

	RedfishHost     string `yaml:"redfish_host,omitempty"`
	RedfishUsername string `yaml:"redfish_username,omitempty"`
	RedfishPassword string `yaml:"redfish_password,omitempty"`
}

// Apply renders the config for the verified tool set, writes it if it
// changed, and restarts the exporter at most once. An identical rendered
// config is a no-op: no write, no restart.
func (w *Writer) Apply(ctx context.Context, verified tool.Set) (reconcile.ExporterAction, error) {
	log := w.logger()

	collectors := w.Registry.Collectors(verified)
	rendered, err := w.Render(collectors)
	if err != nil {
		return reconcile.ExporterSkipped, fmt.Errorf("render exporter config: %w", err)
	}

	if w.AlertRulesDir != "" && w.AlertRulesDeployDir != "" {
		if err := w.SyncAlertRules(collectors); err != nil {
			log.Warn("alert rule sync failed", "err", err)
		}
	}

	if fingerprint(rendered) == fileFingerprint(w.configPath()) {
		log.Debug("exporter config unchanged", "collectors", collectors)
		return reconcile.ExporterUnchanged, nil
	}

	if err := os.MkdirAll(filepath.Dir(w.configPath()), 0o755); err != nil {
		return reconcile.ExporterSkipped, fmt.Errorf("create exporter config dir: %w", err)
	}
	// Credentials live in this file; keep it out of reach of other users.
	if err := os.WriteFile(w.configPath(), rendered, 0o600); err != nil {
		return reconcile.ExporterSkipped, fmt.Errorf("write exporter config: %w", err)
	}
	log.Info("exporter config written", "path", w.configPath(), "collectors", collectors)

	if err := w.Restart(ctx); err != nil {
		return reconcile.ExporterWritten, err
	}
	return reconcile.ExporterRestarted, nil
}

// Render produces the exporter config document for an enabled collector
// list. Deterministic: the same inputs always yield the same bytes, which
// is what makes the fingerprint comparison meaningful.
func (w *Writer) Render(collectors []string) ([]byte, error) {
	doc := exporterConfig{
		Port:             w.Port,
		Level:            strings.ToUpper(w.ExporterLogLevel),
		CollectTimeout:   int(w.CollectTimeout.Seconds()),
		EnableCollectors: collectors,
	}
	if containsCollector(collectors, "collector.redfish") {
		doc.RedfishHost = "https://127.0.0.1"
		doc.RedfishUsername = w.Redfish.Username
		doc.RedfishPassword = w.Redfish.Password
	}
	return yaml.Marshal(doc)
}

// Restart bounces the exporter and polls until it reports active. A unit
// that never comes back is reported as ErrRestartFailed so the caller can
// surface a durable condition instead of silently flapping.
func (w *Writer) Restart(ctx context.Context) error {
	if _, err := hostexec.Output(ctx, w.Run, "systemctl", "restart", w.service()); err != nil {
		return fmt.Errorf("%w: %v", ErrRestartFailed, err)
	}
	retries := w.RestartRetries
	if retries <= 0 {
		retries = 3
	}
	for i := 0; i < retries; i++ {
		if w.Healthy(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrRestartFailed, ctx.Err())
		case <-time.After(w.RetryInterval):
		}
	}
	return fmt.Errorf("%w: %s not active after %d checks", ErrRestartFailed, w.service(), retries)
}

// Healthy reports whether the exporter unit is active.
func (w *Writer) Healthy(ctx context.Context) bool {
	out, err := hostexec.Output(ctx, w.Run, "systemctl", "is-active", w.service())
	return err == nil && strings.TrimSpace(out) == "active"
}

// SyncAlertRules deploys the rule files whose collector is enabled and
// removes stale ones from the deploy dir. Rule files are named after the
// collector with the "collector." prefix stripped, e.g. mega_raid.yaml.
// A rule file already deployed with identical content is left untouched,
// so a pass that changes nothing performs no writes.
func (w *Writer) SyncAlertRules(collectors []string) error {
	enabled := make(map[string]bool, len(collectors))
	for _, c := range collectors {
		enabled[strings.TrimPrefix(c, "collector.")+".yaml"] = true
	}

	if err := os.MkdirAll(w.AlertRulesDeployDir, 0o755); err != nil {
		return fmt.Errorf("create alert rules dir: %w", err)
	}

	entries, err := os.ReadDir(w.AlertRulesDir)
	if err != nil {
		return fmt.Errorf("read alert rules: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		if !enabled[entry.Name()] {
			continue
		}
		data, err := os.ReadFile(filepath.Join(w.AlertRulesDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read alert rule %s: %w", entry.Name(), err)
		}
		deployed := filepath.Join(w.AlertRulesDeployDir, entry.Name())
		if existing, err := os.ReadFile(deployed); err == nil && bytes.Equal(existing, data) {
			continue
		}
		if err := os.WriteFile(deployed, data, 0o644); err != nil {
			return fmt.Errorf("deploy alert rule %s: %w", entry.Name(), err)
		}
	}

	deployed, err := os.ReadDir(w.AlertRulesDeployDir)
	if err != nil {
		return fmt.Errorf("read deployed rules: %w", err)
	}
	for _, entry := range deployed {
		if entry.IsDir() || enabled[entry.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(w.AlertRulesDeployDir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale rule %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (w *Writer) configPath() string {
	if w.ConfigPath != "" {
		return w.ConfigPath
	}
	return DefaultConfigPath
}

func (w *Writer) service() string {
	if w.Service != "" {
		return w.Service
	}
	return DefaultService
}

func (w *Writer) logger() *slog.Logger {
	if w.Log != nil {
		return w.Log
	}
	return logging.Discard()
}

func fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// fileFingerprint hashes what is on disk; a missing or unreadable file
// hashes to the empty string, which never matches a rendered config.
func fileFingerprint(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fingerprint(data)
}

func containsCollector(collectors []string, name string) bool {
	for _, c := range collectors {
		if c == name {
			return true
		}
	}
	return false
}
