// Package detect probes the host for hardware classes and maps them to the
// tools that can monitor them.
//
// Probes are read-only and cheap. A probe that cannot run (missing command,
// permission denied, no such device) marks its hardware class as not
// applicable; it never fails detection as a whole. A machine with no GPU is
// not an error.
package detect

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/hwobserve/hwobserve/pkg/hostexec"
	"github.com/hwobserve/hwobserve/pkg/logging"
	"github.com/hwobserve/hwobserve/pkg/tool"
)

const nvidiaDriverPath = "/proc/driver/nvidia/version"

// Detector probes the host and yields the applicable tool set. Results are
// produced fresh on every call; hardware can change between triggers.
type Detector struct {
	Run hostexec.Runner
	Log *slog.Logger

	// RedfishTimeout bounds the BMC health endpoint probe.
	RedfishTimeout time.Duration

	// Test seams. Zero values select the real host.
	NvidiaDriver string
	RedfishURL   string
	BlockDevices func(ctx context.Context) ([]string, error)
}

// Detect runs every probe battery and returns the union of applicable
// tools.
func (d *Detector) Detect(ctx context.Context) tool.Set {
	result := tool.NewSet()
	for _, probe := range []func(context.Context) tool.Set{
		d.raidTools,
		d.bmcTools,
		d.diskTools,
		d.gpuTools,
	} {
		for id := range probe(ctx) {
			result.Add(id)
		}
	}
	d.logger().Debug("hardware detection complete", "tools", result.Sorted())
	return result
}

// raidTools matches RAID controllers against the supported vendor tables,
// using lshw for the broad sweep and hwinfo for the Adaptec controllers
// lshw cannot distinguish.
func (d *Detector) raidTools(ctx context.Context) tool.Set {
	tools := d.raidToolsLSHW(ctx)
	for id := range d.raidToolsHWInfo(ctx) {
		tools.Add(id)
	}
	return tools
}

type lshwNode struct {
	ID            string            `json:"id"`
	Class         string            `json:"class"`
	Vendor        string            `json:"vendor"`
	Product       string            `json:"product"`
	Configuration map[string]string `json:"configuration"`
}

const storageVendorBroadcom = "Broadcom / LSI"

var lshwSupportedStorage = map[tool.ID][]string{
	tool.SAS2IRCU: {"SAS2004", "SAS2008", "SAS2108", "SAS2208", "SAS2304", "SAS2308"},
	tool.SAS3IRCU: {"SAS3004", "SAS3008"},
	tool.SSACLI:   {"Smart Array Gen8 Controllers", "Smart Array Gen9 Controllers"},
}

func (d *Detector) raidToolsLSHW(ctx context.Context) tool.Set {
	tools := tool.NewSet()

	systemVendor := d.systemVendor(ctx)

	out, err := hostexec.Output(ctx, d.Run, "lshw", "-json", "-c", "storage")
	if err != nil {
		d.logger().Debug("lshw storage probe unavailable", "err", err)
		return tools
	}
	var nodes []lshwNode
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		d.logger().Debug("lshw storage output unparseable", "err", err)
		return tools
	}

	for _, node := range nodes {
		driver := node.Configuration["driver"]
		switch node.ID {
		case "sas":
			if node.Vendor != storageVendorBroadcom {
				continue
			}
			if productMatches(node.Product, lshwSupportedStorage[tool.SAS3IRCU]) {
				tools.Add(tool.SAS3IRCU)
			}
			if productMatches(node.Product, lshwSupportedStorage[tool.SAS2IRCU]) {
				tools.Add(tool.SAS2IRCU)
			}
		case "raid":
			switch {
			case systemVendor == "HP" && productMatches(node.Product, lshwSupportedStorage[tool.SSACLI]):
				tools.Add(tool.SSACLI)
			case systemVendor == "Dell Inc.":
				tools.Add(tool.PercCLI)
			case driver == "megaraid_sas" && node.Vendor == storageVendorBroadcom:
				tools.Add(tool.StorCLI)
			}
		}
	}
	return tools
}

func productMatches(product string, supported []string) bool {
	for _, s := range supported {
		if strings.Contains(product, s) {
			return true
		}
	}
	return false
}

func (d *Detector) systemVendor(ctx context.Context) string {
	out, err := hostexec.Output(ctx, d.Run, "lshw", "-json")
	if err != nil {
		return ""
	}
	// lshw emits either a single object or a one-element array depending
	// on the release.
	var node lshwNode
	if err := json.Unmarshal([]byte(out), &node); err == nil {
		return node.Vendor
	}
	var nodes []lshwNode
	if err := json.Unmarshal([]byte(out), &nodes); err == nil && len(nodes) > 0 {
		return nodes[0].Vendor
	}
	return ""
}

// hwinfoSupportedStorage lists line groups that must all be present in one
// hwinfo device block for the tool to apply.
var hwinfoSupportedStorage = map[tool.ID][][]string{
	tool.SSACLI: {{
		"Hardware Class: storage",
		`Vendor: pci 0x9005 "Adaptec"`,
		`Device: pci 0x028f "Smart Storage PQI 12G SAS/PCIe 3"`,
		`SubDevice: pci 0x1100 "Smart Array P816i-a SR Gen10"`,
	}},
}

func (d *Detector) raidToolsHWInfo(ctx context.Context) tool.Set {
	tools := tool.NewSet()
	out, err := hostexec.Output(ctx, d.Run, "hwinfo", "--storage")
	if err != nil {
		d.logger().Debug("hwinfo storage probe unavailable", "err", err)
		return tools
	}
	for _, block := range strings.Split(out, "\n\n") {
		for id, groups := range hwinfoSupportedStorage {
			for _, group := range groups {
				if blockContainsAll(block, group) {
					tools.Add(id)
				}
			}
		}
	}
	return tools
}

func blockContainsAll(block string, lines []string) bool {
	for _, line := range lines {
		if !strings.Contains(block, line) {
			return false
		}
	}
	return true
}

// bmcTools probes the BMC protocols. The freeipmi probe commands may not be
// installed yet on first run, so presence of the IPMI device node is enough
// to mark the IPMI tools applicable; once the tools are installed the
// command probes refine per-protocol availability.
func (d *Detector) bmcTools(ctx context.Context) tool.Set {
	tools := tool.NewSet()

	probes := []struct {
		id   tool.ID
		name string
		args []string
	}{
		{tool.IPMISensor, "ipmimonitoring", []string{"--sdr-cache-recreate"}},
		{tool.IPMISEL, "ipmi-sel", []string{"--sdr-cache-recreate"}},
		{tool.IPMIDCMI, "ipmi-dcmi", []string{"--get-system-power-statistics"}},
	}
	anyCommand := false
	for _, probe := range probes {
		if _, err := hostexec.Output(ctx, d.Run, probe.name, probe.args...); err == nil {
			tools.Add(probe.id)
			anyCommand = true
		} else {
			d.logger().Debug("ipmi probe failed", "tool", probe.id, "err", err)
		}
	}
	if !anyCommand && ipmiDevicePresent() {
		tools.Add(tool.IPMISensor)
		tools.Add(tool.IPMISEL)
		tools.Add(tool.IPMIDCMI)
	}

	if d.redfishAvailable(ctx) {
		tools.Add(tool.Redfish)
	} else {
		d.logger().Debug("redfish is not available")
	}
	return tools
}

func ipmiDevicePresent() bool {
	for _, dev := range []string{"/dev/ipmi0", "/dev/ipmi/0", "/dev/ipmidev/0"} {
		if _, err := os.Stat(dev); err == nil {
			return true
		}
	}
	return false
}

// redfishAvailable checks the BMC's Redfish service root over HTTPS. The
// BMC serves a self-signed certificate, so verification is skipped; this is
// a reachability probe, not a trust decision.
func (d *Detector) redfishAvailable(ctx context.Context) bool {
	endpoint := d.RedfishURL
	if endpoint == "" {
		addr := d.bmcAddress(ctx)
		if addr == "" {
			return false
		}
		endpoint = "https://" + addr + ":443/redfish/v1/"
	}

	timeout := d.RedfishTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		d.logger().Debug("redfish probe failed", "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || len(payload) == 0 {
		return false
	}
	return true
}

// bmcAddress reads the BMC LAN address from ipmitool.
func (d *Detector) bmcAddress(ctx context.Context) string {
	out, err := hostexec.Output(ctx, d.Run, "ipmitool", "lan", "print")
	if err != nil {
		d.logger().Debug("ipmitool lan print failed", "err", err)
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if found && strings.TrimSpace(key) == "IP Address" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// diskTools marks the SMART tools applicable when the host has at least one
// physical block device.
func (d *Detector) diskTools(ctx context.Context) tool.Set {
	tools := tool.NewSet()
	devices, err := d.blockDevices(ctx)
	if err != nil {
		d.logger().Debug("block device probe failed", "err", err)
		return tools
	}
	for _, name := range devices {
		if physicalDisk(name) {
			tools.Add(tool.SmartCtl)
			tools.Add(tool.SmartCtlExporter)
			break
		}
	}
	return tools
}

func (d *Detector) blockDevices(ctx context.Context) ([]string, error) {
	if d.BlockDevices != nil {
		return d.BlockDevices(ctx)
	}
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	return names, nil
}

func physicalDisk(name string) bool {
	for _, prefix := range []string{"sd", "hd", "vd", "nvme"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// gpuTools marks DCGM applicable when an NVIDIA driver is loaded, falling
// back to PCI display enumeration for hosts with the card but no driver
// yet.
func (d *Detector) gpuTools(ctx context.Context) tool.Set {
	tools := tool.NewSet()

	driver := d.NvidiaDriver
	if driver == "" {
		driver = nvidiaDriverPath
	}
	if _, err := os.Stat(driver); err == nil {
		tools.Add(tool.DCGM)
		return tools
	}

	out, err := hostexec.Output(ctx, d.Run, "lshw", "-json", "-c", "display")
	if err != nil {
		d.logger().Debug("lshw display probe unavailable", "err", err)
		return tools
	}
	var nodes []lshwNode
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		return tools
	}
	for _, node := range nodes {
		if strings.Contains(strings.ToLower(node.Vendor), "nvidia") {
			tools.Add(tool.DCGM)
			break
		}
	}
	return tools
}

func (d *Detector) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logging.Discard()
}
