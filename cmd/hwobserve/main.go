package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hwobserve/hwobserve/pkg/config"
	"github.com/hwobserve/hwobserve/pkg/detect"
	"github.com/hwobserve/hwobserve/pkg/exporter"
	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/platform"
	"github.com/hwobserve/hwobserve/pkg/reconcile"
	"github.com/hwobserve/hwobserve/pkg/tool"
	"github.com/hwobserve/hwobserve/pkg/version"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "hwobserve",
		Short: "Hardware monitoring tool lifecycle manager",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: /etc/hwobserve/config.yaml)")

	root.AddCommand(applyCmd())
	root.AddCommand(planCmd())
	root.AddCommand(redetectCmd())
	root.AddCommand(removeCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles everything one pass needs.
type app struct {
	cfg     *config.Config
	engine  *reconcile.Engine
	writer  *exporter.Writer
	service *exporter.Service
}

func setup() (*app, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			path = config.DefaultConfigPath()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LogLevel, os.Getenv("HWOBSERVE_LOG_FORMAT"))
	profile := platform.Detect()

	runner := &hostexec.Executor{
		Timeout:   5 * time.Minute,
		MaxOutput: 1 << 20,
	}

	registry := tool.NewRegistry(tool.Options{
		Profile:     profile,
		Run:         runner,
		Log:         logger,
		ResourceDir: cfg.ResourceDir,
		DCGMChannel: cfg.DCGMSnapChannel,
	})

	enable, err := parseTools(cfg.EnableTools)
	if err != nil {
		return nil, fmt.Errorf("enableTools: %w", err)
	}
	disable, err := parseTools(cfg.DisableTools)
	if err != nil {
		return nil, fmt.Errorf("disableTools: %w", err)
	}

	writer := &exporter.Writer{
		Registry:            registry,
		Run:                 runner,
		Log:                 logger,
		Port:                cfg.ExporterPort,
		ExporterLogLevel:    cfg.ExporterLogLevel,
		CollectTimeout:      time.Duration(cfg.CollectTimeout) * time.Second,
		Redfish:             cfg.Redfish,
		AlertRulesDir:       cfg.AlertRulesDir,
		AlertRulesDeployDir: cfg.AlertRulesDeployDir,
		RetryInterval:       2 * time.Second,
	}

	engine := &reconcile.Engine{
		Registry: registry,
		Detector: &detect.Detector{Run: runner, Log: logger},
		Writer:   writer,
		Enable:   enable,
		Disable:  disable,
		Log:      logger,
	}

	service := &exporter.Service{
		Run:       runner,
		ExecStart: "/usr/bin/hwobserve-exporter",
	}

	return &app{cfg: cfg, engine: engine, writer: writer, service: service}, nil
}

func parseTools(names []string) (tool.Set, error) {
	set := tool.NewSet()
	for _, name := range names {
		id, ok := tool.ParseID(name)
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (known: %v)", name, tool.KnownIDs())
		}
		set.Add(id)
	}
	return set, nil
}

func applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Run one reconciliation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if err := a.service.Install(cmd.Context(), exporter.DefaultConfigPath); err != nil {
				return fmt.Errorf("install exporter service: %w", err)
			}
			report := a.engine.Run(cmd.Context())
			printReport(report)
			if !report.OK() {
				return fmt.Errorf("reconciliation incomplete: %s", report.Summary())
			}
			return nil
		},
	}
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the reconciliation delta without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			report := a.engine.Plan(cmd.Context())
			fmt.Printf("detected:\t%v\n", report.Detected)
			fmt.Printf("target:\t%v\n", report.Target)
			fmt.Printf("install:\t%v\n", report.Plan.ToInstall)
			fmt.Printf("remove:\t%v\n", report.Plan.ToRemove)
			fmt.Printf("unchanged:\t%v\n", report.Plan.Unchanged)
			return nil
		},
	}
}

func redetectCmd() *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "redetect",
		Short: "Re-run hardware detection",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if apply {
				report := a.engine.Run(cmd.Context())
				printReport(report)
				if !report.OK() {
					return fmt.Errorf("reconciliation incomplete: %s", report.Summary())
				}
				return nil
			}
			report := a.engine.Plan(cmd.Context())
			fmt.Printf("detected:\t%v\n", report.Detected)
			fmt.Printf("target:\t%v\n", report.Target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "reconcile to the redetected set")
	return cmd
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove all managed tools and deconfigure the exporter",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			report := a.engine.RemoveAll(cmd.Context())
			printReport(report)
			if err := a.service.Uninstall(cmd.Context()); err != nil {
				return fmt.Errorf("uninstall exporter service: %w", err)
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tool states and exporter health",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			report := a.engine.Plan(cmd.Context())
			printReport(report)
			if a.writer.Healthy(cmd.Context()) {
				fmt.Println("exporter:\tactive")
			} else {
				fmt.Println("exporter:\tinactive")
			}
			fmt.Println(report.Summary())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}

func printReport(report *reconcile.Report) {
	for _, id := range tool.KnownIDs() {
		status, ok := report.Tools[id]
		if !ok {
			continue
		}
		if status.Err != nil {
			fmt.Printf("%s\t%s\t%v\n", id, status.State, status.Err)
			continue
		}
		fmt.Printf("%s\t%s\n", id, status.State)
	}
	if report.Exporter != "" {
		fmt.Printf("exporter config:\t%s\n", report.Exporter)
	}
}
