// Package config loads runtime settings for hwobserve from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for hwobserve.
type Config struct {
	// ExporterPort is the listen port written into the exporter config.
	ExporterPort int `yaml:"exporterPort"`
	// ExporterLogLevel is passed through to the exporter config.
	ExporterLogLevel string `yaml:"exporterLogLevel"`
	// CollectTimeout bounds a single exporter collection, in seconds.
	CollectTimeout int `yaml:"collectTimeout"`

	// ResourceDir holds operator-attached vendor artifacts, one file per
	// resource name (e.g. storcli-deb, sas3ircu-bin).
	ResourceDir string `yaml:"resourceDir"`

	// DCGMSnapChannel selects the DCGM snap channel ("auto" or
	// "<track>/<risk>").
	DCGMSnapChannel string `yaml:"dcgmSnapChannel"`

	// Redfish holds BMC credentials for the redfish collector.
	Redfish RedfishConfig `yaml:"redfish"`

	// EnableTools forces tools into the target set regardless of detection.
	EnableTools []string `yaml:"enableTools"`
	// DisableTools removes tools from the target set regardless of detection.
	DisableTools []string `yaml:"disableTools"`

	// AlertRulesDir holds the pre-authored per-collector rule groups;
	// AlertRulesDeployDir receives the selected ones.
	AlertRulesDir       string `yaml:"alertRulesDir"`
	AlertRulesDeployDir string `yaml:"alertRulesDeployDir"`

	LogLevel string `yaml:"logLevel"`
}

// RedfishConfig carries BMC session credentials.
type RedfishConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ExporterPort:        10200,
		ExporterLogLevel:    "INFO",
		CollectTimeout:      10,
		ResourceDir:         "/var/lib/hwobserve/resources",
		DCGMSnapChannel:     "auto",
		AlertRulesDir:       "/usr/share/hwobserve/rules",
		AlertRulesDeployDir: "/etc/hwobserve/rules.d",
		LogLevel:            "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if dir := os.Getenv("HWOBSERVE_RESOURCE_DIR"); dir != "" {
		cfg.ResourceDir = dir
	}
	if level := os.Getenv("HWOBSERVE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if user := os.Getenv("HWOBSERVE_REDFISH_USERNAME"); user != "" {
		cfg.Redfish.Username = user
	}
	if pass := os.Getenv("HWOBSERVE_REDFISH_PASSWORD"); pass != "" {
		cfg.Redfish.Password = pass
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the exporter or the snap store would refuse.
func (c *Config) Validate() error {
	if c.ExporterPort < 1 || c.ExporterPort > 65535 {
		return fmt.Errorf("invalid exporterPort %d: must be in [1, 65535]", c.ExporterPort)
	}
	switch strings.ToUpper(c.ExporterLogLevel) {
	case "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL":
	default:
		return fmt.Errorf("invalid exporterLogLevel %q", c.ExporterLogLevel)
	}
	if c.CollectTimeout < 1 {
		return fmt.Errorf("invalid collectTimeout %d: must be positive", c.CollectTimeout)
	}
	if err := ValidateDCGMChannel(c.DCGMSnapChannel); err != nil {
		return err
	}
	return nil
}

// ValidateDCGMChannel checks a DCGM snap channel spec. "auto" defers the
// track choice to the installed NVIDIA driver.
func ValidateDCGMChannel(channel string) error {
	if channel == "" || channel == "auto" {
		return nil
	}
	track, risk, found := strings.Cut(channel, "/")
	if !found {
		return fmt.Errorf("invalid dcgmSnapChannel %q: must be 'auto' or '<track>/<risk>'", channel)
	}
	switch track {
	case "v3", "v4":
	default:
		return fmt.Errorf("invalid dcgmSnapChannel track %q: must be v3 or v4", track)
	}
	switch risk {
	case "stable", "candidate", "edge":
	default:
		return fmt.Errorf("invalid dcgmSnapChannel risk %q: must be stable, candidate or edge", risk)
	}
	return nil
}

// DefaultConfigPath returns the default location for the config file.
func DefaultConfigPath() string {
	if path := os.Getenv("HWOBSERVE_CONFIG"); path != "" {
		return path
	}
	return "/etc/hwobserve/config.yaml"
}
