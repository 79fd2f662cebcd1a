package tool

import (
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/hwobserve/hwobserve/pkg/checksum"
	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/platform"
	"github.com/hwobserve/hwobserve/pkg/strategy"
)

// ToolsDir is where tool binaries are linked for the exporter to invoke.
const ToolsDir = "/usr/sbin"

const smartctlExporterRelease = "https://github.com/prometheus-community/smartctl_exporter/releases/download/v0.12.0/smartctl_exporter-0.12.0.linux-amd64.tar.gz"

// Spec ties a tool to its acquisition strategies and exporter collectors.
// Specs are built once at startup and never mutated.
type Spec struct {
	ID ID
	// Strategies are the registered acquisition methods; Strategy picks
	// the effective one by rank.
	Strategies []strategy.Strategy
	// Collectors are the exporter collector names this tool backs, in
	// enable-list order.
	Collectors []string
	// Resource names the operator attachment the tool needs, if any.
	Resource string
	// NeedsCredential marks tools whose collector requires configured
	// credentials (redfish).
	NeedsCredential bool
}

// Strategy returns the preferred viable strategy: lowest rank among the
// candidates whose host prerequisites are met, with registration order
// breaking remaining ties. When nothing is viable the rank-only winner is
// returned so reports still name the strategy that is blocked.
func (s Spec) Strategy() strategy.Strategy {
	var best, bestAny strategy.Strategy
	for _, cand := range s.Strategies {
		if bestAny == nil || cand.Kind().Rank() < bestAny.Kind().Rank() {
			bestAny = cand
		}
		if v, ok := cand.(interface{ Viable() bool }); ok && !v.Viable() {
			continue
		}
		if best == nil || cand.Kind().Rank() < best.Kind().Rank() {
			best = cand
		}
	}
	if best == nil {
		return bestAny
	}
	return best
}

// Options carries the runtime inputs the registry's strategies need.
type Options struct {
	Profile platform.Profile
	Run     hostexec.Runner
	Log     *slog.Logger

	// ResourceDir holds operator attachments, one file per resource name.
	ResourceDir string
	// DCGMChannel is the validated snap channel; "auto" and "" map to the
	// default stable channel.
	DCGMChannel string
}

// Registry is the immutable tool catalogue. Execution order of a
// reconciliation pass follows registry order.
type Registry struct {
	order []ID
	specs map[ID]Spec
}

// NewRegistry builds the registry from the static tool catalogue.
func NewRegistry(opts Options) *Registry {
	res := func(name string) string { return filepath.Join(opts.ResourceDir, name) }

	dcgmChannel := opts.DCGMChannel
	if dcgmChannel == "" || dcgmChannel == "auto" {
		dcgmChannel = "latest/stable"
	}

	specs := []Spec{
		{
			ID:         StorCLI,
			Collectors: []string{"collector.mega_raid"},
			Resource:   "storcli-deb",
			Strategies: []strategy.Strategy{&strategy.Resource{
				ToolName:     string(StorCLI),
				ResourceName: "storcli-deb",
				Path:         res("storcli-deb"),
				Format:       strategy.FormatDeb,
				OriginPath:   "/opt/MegaRAID/storcli/storcli64",
				SymlinkBin:   filepath.Join(ToolsDir, string(StorCLI)),
				Versions:     checksum.StorCLIVersions,
				Profile:      opts.Profile,
				Run:          opts.Run,
				Log:          opts.Log,
			}},
		},
		{
			ID:         PercCLI,
			Collectors: []string{"collector.poweredge_raid"},
			Resource:   "perccli-deb",
			Strategies: []strategy.Strategy{&strategy.Resource{
				ToolName:     string(PercCLI),
				ResourceName: "perccli-deb",
				Path:         res("perccli-deb"),
				Format:       strategy.FormatDeb,
				OriginPath:   "/opt/MegaRAID/perccli/perccli64",
				SymlinkBin:   filepath.Join(ToolsDir, string(PercCLI)),
				Versions:     checksum.PercCLIVersions,
				Profile:      opts.Profile,
				Run:          opts.Run,
				Log:          opts.Log,
			}},
		},
		{
			ID:         SAS2IRCU,
			Collectors: []string{"collector.lsi_sas_2"},
			Resource:   "sas2ircu-bin",
			Strategies: []strategy.Strategy{&strategy.Resource{
				ToolName:     string(SAS2IRCU),
				ResourceName: "sas2ircu-bin",
				Path:         res("sas2ircu-bin"),
				Format:       strategy.FormatBinary,
				SymlinkBin:   filepath.Join(ToolsDir, string(SAS2IRCU)),
				Versions:     checksum.SAS2IRCUVersions,
				Profile:      opts.Profile,
				Run:          opts.Run,
				Log:          opts.Log,
			}},
		},
		{
			ID:         SAS3IRCU,
			Collectors: []string{"collector.lsi_sas_3"},
			Resource:   "sas3ircu-bin",
			Strategies: []strategy.Strategy{&strategy.Resource{
				ToolName:     string(SAS3IRCU),
				ResourceName: "sas3ircu-bin",
				Path:         res("sas3ircu-bin"),
				Format:       strategy.FormatBinary,
				SymlinkBin:   filepath.Join(ToolsDir, string(SAS3IRCU)),
				Versions:     checksum.SAS3IRCUVersions,
				Profile:      opts.Profile,
				Run:          opts.Run,
				Log:          opts.Log,
			}},
		},
		{
			ID:         SSACLI,
			Collectors: []string{"collector.hpe_ssa"},
			Strategies: []strategy.Strategy{&strategy.VendorRepo{
				ToolName:      string(SSACLI),
				Packages:      []string{"ssacli"},
				RepoLine:      "deb https://downloads.linux.hpe.com/SDR/repo/mcp stretch/current non-free",
				RepoFile:      "/etc/apt/sources.list.d/hwobserve-hpe-mcp.list",
				KeyringSource: "/usr/share/hwobserve/keys/hpe-mcp.asc",
				KeyringFile:   "/etc/apt/trusted.gpg.d/hwobserve-hpe-mcp.asc",
				Profile:       opts.Profile,
				Run:           opts.Run,
				Log:           opts.Log,
			}},
		},
		{
			ID:         IPMISensor,
			Collectors: []string{"collector.ipmi_sensor"},
			Strategies: []strategy.Strategy{&strategy.APT{
				ToolName: string(IPMISensor),
				Packages: []string{"freeipmi-tools"},
				Profile:  opts.Profile,
				Run:      opts.Run,
				Log:      opts.Log,
			}},
		},
		{
			ID:         IPMISEL,
			Collectors: []string{"collector.ipmi_sel"},
			Strategies: []strategy.Strategy{&strategy.APT{
				ToolName: string(IPMISEL),
				// ipmiseld polls the SEL into the local syslog.
				Packages: []string{"freeipmi-tools", "freeipmi-ipmiseld"},
				Profile:  opts.Profile,
				Run:      opts.Run,
				Log:      opts.Log,
			}},
		},
		{
			ID:         IPMIDCMI,
			Collectors: []string{"collector.ipmi_dcmi"},
			Strategies: []strategy.Strategy{&strategy.APT{
				ToolName: string(IPMIDCMI),
				Packages: []string{"freeipmi-tools"},
				Profile:  opts.Profile,
				Run:      opts.Run,
				Log:      opts.Log,
			}},
		},
		{
			ID:              Redfish,
			Collectors:      []string{"collector.redfish"},
			NeedsCredential: true,
			Strategies:      []strategy.Strategy{&strategy.NoOp{ToolName: string(Redfish)}},
		},
		{
			ID:         SmartCtl,
			Collectors: []string{"collector.smartctl"},
			Strategies: []strategy.Strategy{&strategy.APT{
				ToolName: string(SmartCtl),
				Packages: []string{"smartmontools"},
				Profile:  opts.Profile,
				Run:      opts.Run,
				Log:      opts.Log,
			}},
		},
		{
			ID:         DCGM,
			Collectors: []string{"collector.dcgm"},
			Strategies: []strategy.Strategy{&strategy.Snap{
				ToolName: string(DCGM),
				SnapName: "dcgm",
				Channel:  dcgmChannel,
				Run:      opts.Run,
				Log:      opts.Log,
			}},
		},
		{
			ID:         SmartCtlExporter,
			Collectors: []string{"collector.smartctl_exporter"},
			Strategies: []strategy.Strategy{
				&strategy.Snap{
					ToolName: string(SmartCtlExporter),
					SnapName: "smartctl-exporter",
					Channel:  "latest/stable",
					Run:      opts.Run,
					Log:      opts.Log,
				},
				&strategy.Download{
					ToolName: string(SmartCtlExporter),
					URL:      smartctlExporterRelease,
					Dir:      "/opt/SmartCtlExporter",
					BinName:  "smartctl_exporter",
					Log:      opts.Log,
				},
			},
		},
	}

	reg := &Registry{specs: make(map[ID]Spec, len(specs))}
	for _, spec := range specs {
		reg.order = append(reg.order, spec.ID)
		reg.specs[spec.ID] = spec
	}
	return reg
}

// Lookup returns the spec for a tool ID.
func (r *Registry) Lookup(id ID) (Spec, bool) {
	spec, ok := r.specs[id]
	return spec, ok
}

// List returns every spec in registry order.
func (r *Registry) List() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.specs[id])
	}
	return out
}

// IDs returns the registered tool IDs in registry order.
func (r *Registry) IDs() []ID {
	return append([]ID(nil), r.order...)
}

// Collectors returns the ordered, de-duplicated collector enable-list for a
// tool set. Order follows the registry, so the exporter config is stable
// for a given set.
func (r *Registry) Collectors(tools Set) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range r.order {
		if !tools.Has(id) {
			continue
		}
		for _, c := range r.specs[id].Collectors {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// ParseID validates an operator-supplied tool name.
func ParseID(name string) (ID, bool) {
	id := ID(name)
	for _, known := range knownIDs {
		if id == known {
			return id, true
		}
	}
	return "", false
}

var knownIDs = []ID{
	StorCLI, PercCLI, SAS2IRCU, SAS3IRCU, SSACLI,
	IPMISensor, IPMISEL, IPMIDCMI, Redfish, SmartCtl,
	DCGM, SmartCtlExporter,
}

// KnownIDs returns every tool ID, sorted.
func KnownIDs() []ID {
	out := append([]ID(nil), knownIDs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
