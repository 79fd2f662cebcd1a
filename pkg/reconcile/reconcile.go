// Package reconcile drives detected hardware, operator overrides, and
// installation strategies to a converged tool set, then hands the verified
// result to the exporter config writer.
//
// A pass runs synchronously in response to exactly one external trigger and
// never overlaps another pass. There is no internal retry: transient
// failures are reported and retried by whatever fires the next trigger.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/strategy"
	"github.com/hwobserve/hwobserve/pkg/tool"
)

// State is the lifecycle position of one tool after a pass.
type State string

const (
	// StateNotApplicable: the hardware is absent or the operator disabled
	// the tool.
	StateNotApplicable State = "not-applicable"
	// StatePending: the tool is wanted but install failed transiently;
	// the next trigger retries it.
	StatePending State = "pending"
	// StateBlocked: the tool is wanted but needs operator action (missing
	// resource, unsupported platform); never auto-retried into success.
	StateBlocked State = "blocked"
	// StateInstalled: install succeeded and the post-pass check verified
	// the tool is present.
	StateInstalled State = "installed"
	// StateRemoved: the tool was removed this pass.
	StateRemoved State = "removed"
)

// ToolStatus is the per-tool outcome of a pass.
type ToolStatus struct {
	State State
	Err   error
}

// Plan is the install/remove delta for one pass. Slices follow registry
// order; the plan is recomputed per pass and never persisted.
type Plan struct {
	ToInstall []tool.ID
	ToRemove  []tool.ID
	Unchanged []tool.ID
}

// Detector yields the hardware-applicable tool set.
type Detector interface {
	Detect(ctx context.Context) tool.Set
}

// ExporterAction reports what the config writer did with the verified set.
type ExporterAction string

const (
	ExporterUnchanged ExporterAction = "unchanged"
	ExporterWritten   ExporterAction = "written"
	ExporterRestarted ExporterAction = "restarted"
	ExporterSkipped   ExporterAction = "skipped"
)

// ConfigWriter regenerates the exporter configuration from the verified
// tool set. Implementations restart the exporter at most once per call.
type ConfigWriter interface {
	Apply(ctx context.Context, verified tool.Set) (ExporterAction, error)
}

// Catalogue is the slice of the tool registry the engine needs.
type Catalogue interface {
	IDs() []tool.ID
	Lookup(id tool.ID) (tool.Spec, bool)
	List() []tool.Spec
}

// Engine orchestrates one reconciliation pass at a time.
type Engine struct {
	Registry Catalogue
	Detector Detector
	Writer   ConfigWriter

	// Enable and Disable are the operator override sets. The target set
	// for a pass is (detected ∪ Enable) \ Disable.
	Enable  tool.Set
	Disable tool.Set

	Log *slog.Logger

	// Host package and service state cannot take two concurrent passes.
	mu sync.Mutex
}

// Report is the composite result of one pass.
type Report struct {
	// ID tags the pass for log correlation.
	ID string

	Detected []tool.ID
	Target   []tool.ID
	Plan     Plan

	// Tools maps every registry tool to its post-pass state.
	Tools map[tool.ID]ToolStatus

	// Verified lists the tools whose Check passed after execution; this
	// set, not detection, drives the exporter config.
	Verified []tool.ID

	Exporter    ExporterAction
	ExporterErr error

	// DryRun marks a plan-only pass; no strategy or exporter side effects
	// happened.
	DryRun bool
}

// OK reports whether every targeted tool reached its intended state and the
// exporter action succeeded.
func (r *Report) OK() bool {
	for _, status := range r.Tools {
		if status.Err != nil {
			return false
		}
	}
	return r.ExporterErr == nil
}

// Summary renders the operator-facing status line: which tools are blocked
// or pending and why, or a terse success.
func (r *Report) Summary() string {
	var blocked, pending, failedRemove []string
	for _, id := range sortedKeys(r.Tools) {
		status := r.Tools[id]
		if status.Err == nil {
			continue
		}
		switch status.State {
		case StateBlocked:
			blocked = append(blocked, fmt.Sprintf("%s (%v)", id, status.Err))
		case StatePending:
			pending = append(pending, fmt.Sprintf("%s (%v)", id, status.Err))
		case StateRemoved:
			failedRemove = append(failedRemove, fmt.Sprintf("%s (%v)", id, status.Err))
		}
	}

	var parts []string
	if len(blocked) > 0 {
		parts = append(parts, "blocked: "+strings.Join(blocked, "; "))
	}
	if len(pending) > 0 {
		parts = append(parts, "pending: "+strings.Join(pending, "; "))
	}
	if len(failedRemove) > 0 {
		parts = append(parts, "remove failed: "+strings.Join(failedRemove, "; "))
	}
	if r.ExporterErr != nil {
		parts = append(parts, fmt.Sprintf("exporter: %v", r.ExporterErr))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("ready (%d tools verified)", len(r.Verified))
	}
	return strings.Join(parts, "; ")
}

// Target computes (detected ∪ enable) \ disable, restricted to registered
// tools.
func (e *Engine) Target(detected tool.Set) tool.Set {
	target := detected.Union(e.Enable).Subtract(e.Disable)
	known := tool.NewSet(e.Registry.IDs()...)
	return target.Subtract(target.Subtract(known))
}

// Installed queries every registered strategy's Check. Read-only.
func (e *Engine) Installed(ctx context.Context) tool.Set {
	installed := tool.NewSet()
	for _, spec := range e.Registry.List() {
		if spec.Strategy().Check(ctx) {
			installed.Add(spec.ID)
		}
	}
	return installed
}

// BuildPlan diffs the target set against the installed set, preserving
// registry order so execution order is deterministic.
func BuildPlan(order []tool.ID, target, installed tool.Set) Plan {
	var plan Plan
	for _, id := range order {
		switch {
		case target.Has(id) && !installed.Has(id):
			plan.ToInstall = append(plan.ToInstall, id)
		case !target.Has(id) && installed.Has(id):
			plan.ToRemove = append(plan.ToRemove, id)
		case target.Has(id):
			plan.Unchanged = append(plan.Unchanged, id)
		}
	}
	return plan
}

// Plan computes and reports the pass without executing it. No strategy
// install/remove runs and the exporter is untouched.
func (e *Engine) Plan(ctx context.Context) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := e.newReport()
	report.DryRun = true
	report.Exporter = ExporterSkipped

	detected := e.Detector.Detect(ctx)
	target := e.Target(detected)
	installed := e.Installed(ctx)

	report.Detected = detected.Sorted()
	report.Target = target.Sorted()
	report.Plan = BuildPlan(e.Registry.IDs(), target, installed)

	for _, id := range e.Registry.IDs() {
		switch {
		case !target.Has(id):
			report.Tools[id] = ToolStatus{State: StateNotApplicable}
		case installed.Has(id):
			report.Tools[id] = ToolStatus{State: StateInstalled}
		default:
			report.Tools[id] = ToolStatus{State: StatePending}
		}
	}
	report.Verified = installedIntersect(target, installed)
	return report
}

// Run executes a full pass: detect, plan, execute the delta tool-by-tool,
// re-verify the target set, and hand the verified set to the config writer.
func (e *Engine) Run(ctx context.Context) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := e.newReport()
	log := e.logger().With("pass", report.ID)

	detected := e.Detector.Detect(ctx)
	target := e.Target(detected)
	installed := e.Installed(ctx)

	report.Detected = detected.Sorted()
	report.Target = target.Sorted()
	report.Plan = BuildPlan(e.Registry.IDs(), target, installed)
	log.Info("reconciliation plan",
		"install", report.Plan.ToInstall,
		"remove", report.Plan.ToRemove,
		"unchanged", report.Plan.Unchanged)

	// Only the plan's delta is executed: tools that are both targeted and
	// installed are left alone. One tool's failure never blocks the
	// others: each entry is attempted independently and its outcome
	// recorded.
	for _, id := range e.Registry.IDs() {
		spec, _ := e.Registry.Lookup(id)
		switch {
		case target.Has(id) && installed.Has(id):
			report.Tools[id] = ToolStatus{State: StateInstalled}
		case target.Has(id):
			report.Tools[id] = e.installOne(ctx, log, spec)
		case installed.Has(id):
			report.Tools[id] = e.removeOne(ctx, log, spec)
		default:
			report.Tools[id] = ToolStatus{State: StateNotApplicable}
		}
	}

	// Verified-present is decided by a fresh post-execution check, not by
	// install outcomes: the exporter must never be told to scrape a
	// collector whose backing tool is absent.
	verified := tool.NewSet()
	for _, id := range target.Sorted() {
		spec, _ := e.Registry.Lookup(id)
		if spec.Strategy().Check(ctx) {
			verified.Add(id)
			if status := report.Tools[id]; status.Err == nil {
				report.Tools[id] = ToolStatus{State: StateInstalled}
			}
		} else if status := report.Tools[id]; status.Err == nil && status.State == StateInstalled {
			// Present at plan time but gone now; retried next trigger.
			report.Tools[id] = ToolStatus{
				State: StatePending,
				Err:   fmt.Errorf("%s: present at plan time but check failed", id),
			}
		}
	}
	report.Verified = verified.Sorted()

	e.applyExporter(ctx, log, report, verified)
	log.Info("reconciliation pass finished", "ok", report.OK(), "verified", report.Verified)
	return report
}

// RemoveAll tears down every installed tool and deconfigures the exporter;
// the removal hook path. Remove failures are reported but never block the
// rest of the teardown.
func (e *Engine) RemoveAll(ctx context.Context) *Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := e.newReport()
	log := e.logger().With("pass", report.ID)

	installed := e.Installed(ctx)
	for _, id := range e.Registry.IDs() {
		if !installed.Has(id) {
			report.Tools[id] = ToolStatus{State: StateNotApplicable}
			continue
		}
		spec, _ := e.Registry.Lookup(id)
		report.Plan.ToRemove = append(report.Plan.ToRemove, id)
		report.Tools[id] = e.removeOne(ctx, log, spec)
	}
	report.Verified = nil

	e.applyExporter(ctx, log, report, tool.NewSet())
	return report
}

func (e *Engine) installOne(ctx context.Context, log *slog.Logger, spec tool.Spec) ToolStatus {
	strat := spec.Strategy()
	if err := strat.Install(ctx); err != nil {
		state := StatePending
		var installErr *strategy.InstallError
		if errors.As(err, &installErr) {
			// Durable conditions wait for the operator, not a retry.
			if installErr.Kind == strategy.MissingResource || installErr.Kind == strategy.UnsupportedPlatform {
				state = StateBlocked
			}
		}
		log.Warn("tool install failed", "tool", spec.ID, "state", state, "err", err)
		return ToolStatus{State: state, Err: err}
	}
	if !strat.Check(ctx) {
		err := fmt.Errorf("%s: installed but check failed", spec.ID)
		log.Warn("tool check failed after install", "tool", spec.ID)
		return ToolStatus{State: StatePending, Err: err}
	}
	log.Info("tool installed", "tool", spec.ID, "strategy", strat.Kind().String())
	return ToolStatus{State: StateInstalled}
}

func (e *Engine) removeOne(ctx context.Context, log *slog.Logger, spec tool.Spec) ToolStatus {
	// A remove failure still drops the tool from the verified set: better
	// to stop scraping a half-removed tool than to block teardown.
	if err := spec.Strategy().Remove(ctx); err != nil {
		log.Warn("tool remove failed", "tool", spec.ID, "err", err)
		return ToolStatus{State: StateRemoved, Err: err}
	}
	log.Info("tool removed", "tool", spec.ID)
	return ToolStatus{State: StateRemoved}
}

func (e *Engine) applyExporter(ctx context.Context, log *slog.Logger, report *Report, verified tool.Set) {
	if e.Writer == nil {
		report.Exporter = ExporterSkipped
		return
	}
	action, err := e.Writer.Apply(ctx, verified)
	report.Exporter = action
	report.ExporterErr = err
	if err != nil {
		log.Warn("exporter config apply failed", "err", err)
	}
}

func (e *Engine) newReport() *Report {
	return &Report{
		ID:    uuid.NewString(),
		Tools: make(map[tool.ID]ToolStatus),
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logging.Discard()
}

func installedIntersect(target, installed tool.Set) []tool.ID {
	verified := tool.NewSet()
	for id := range target {
		if installed.Has(id) {
			verified.Add(id)
		}
	}
	return verified.Sorted()
}

func sortedKeys(m map[tool.ID]ToolStatus) []tool.ID {
	ids := make([]tool.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
