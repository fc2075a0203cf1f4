package main

import (
	"bytes"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("shipform %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestRegionsList(t *testing.T) {
	t.Setenv("SHIPFORM_PRIMARY_URL", "../../internal/region/testdata/provinces.json")

	out := runCLI(t, "regions", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("output has %d lines, want header + 3:\n%s", len(lines), out)
	}
	for i, code := range []string{"CODE", "79", "01", "48"} {
		if !strings.HasPrefix(lines[i], code) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], code)
		}
	}
}

func TestRegionsWards(t *testing.T) {
	t.Setenv("SHIPFORM_SECONDARY_URL", "../../internal/region/testdata/wards.json")

	out := runCLI(t, "regions", "wards", "01")
	if !strings.Contains(out, "00004") || !strings.Contains(out, "00008") {
		t.Errorf("output = %q, want wards 00004 and 00008", out)
	}
	if strings.Contains(out, "26734") {
		t.Errorf("output = %q, contains a ward of another city", out)
	}
}
