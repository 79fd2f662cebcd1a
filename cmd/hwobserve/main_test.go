package main

import (
	"testing"

	"github.com/hwobserve/hwobserve/pkg/tool"
)

func TestParseTools(t *testing.T) {
	set, err := parseTools([]string{"redfish", "smartctl"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !set.Has(tool.Redfish) || !set.Has(tool.SmartCtl) {
		t.Fatalf("set = %v", set.Sorted())
	}
}

func TestParseToolsRejectsUnknown(t *testing.T) {
	if _, err := parseTools([]string{"nvme-cli"}); err == nil {
		t.Fatalf("unknown tool name accepted")
	}
}

func TestParseToolsEmpty(t *testing.T) {
	set, err := parseTools(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set.Sorted())
	}
}
