package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipform.yaml")
	data := "addr: \":9000\"\nsubmit_delay: 2s\nmax_sessions: 50\nprimary_url: testdata/provinces.json\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHIPFORM_MAX_SESSIONS", "75")
	t.Setenv("SHIPFORM_FETCH_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.Addr = ":9000"
	want.SubmitDelay = 2 * time.Second
	want.PrimaryURL = "testdata/provinces.json"
	want.MaxSessions = 75
	want.FetchTimeout = 3 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("SHIPFORM_SUBMIT_DELAY", "soon")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "parse env") {
		t.Errorf("Load() error = %v, want parse env error", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Addr = " "
	cfg.FetchTimeout = 0
	cfg.MaxSessions = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"addr", "fetch_timeout", "max_sessions"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %q, missing %q", err, want)
		}
	}
}
