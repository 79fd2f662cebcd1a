// Package tool defines the hardware tool identifiers and the static
// registry mapping each tool to its installation strategy, exporter
// collectors, and resource requirements.
package tool

import "sort"

// ID names one monitorable hardware class/tool pairing. IDs are stable and
// used as map keys throughout.
type ID string

const (
	StorCLI          ID = "storcli"
	PercCLI          ID = "perccli"
	SAS2IRCU         ID = "sas2ircu"
	SAS3IRCU         ID = "sas3ircu"
	SSACLI           ID = "ssacli"
	IPMISensor       ID = "ipmi_sensor"
	IPMISEL          ID = "ipmi_sel"
	IPMIDCMI         ID = "ipmi_dcmi"
	Redfish          ID = "redfish"
	SmartCtl         ID = "smartctl"
	DCGM             ID = "dcgm"
	SmartCtlExporter ID = "smartctl_exporter"
)

// Set is an unordered collection of tool IDs.
type Set map[ID]struct{}

func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id ID) { s[id] = struct{}{} }

// Sorted returns the members in lexical order for stable reporting.
func (s Set) Sorted() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Union returns a new set containing members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Subtract returns a new set with other's members removed.
func (s Set) Subtract(other Set) Set {
	out := make(Set, len(s))
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}
