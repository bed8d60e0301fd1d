package preflight

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ripline/internal/config"
	"ripline/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Unset(t *testing.T) {
	if result := CheckDirectoryAccess("test", " "); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	ok := CheckFreeSpace("scratch", dir, 1)
	if !ok.Passed || ok.Warning {
		t.Fatalf("expected clean pass with tiny threshold, got %+v", ok)
	}
	if !strings.HasSuffix(ok.Detail, "free") {
		t.Fatalf("unexpected detail: %q", ok.Detail)
	}

	low := CheckFreeSpace("scratch", dir, math.MaxUint64)
	if !low.Passed || !low.Warning {
		t.Fatalf("expected warning with huge threshold, got %+v", low)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := testsupport.WriteScript(t, binDir, "present", "exit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Optional", Command: "also-not-present", Optional: true},
		{Name: "Unset", Command: " "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to resolve, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Result().Passed {
		t.Fatal("missing required binary should fail")
	}
	if r := results[2].Result(); !r.Passed || !r.Warning {
		t.Fatalf("missing optional binary should warn, got %+v", r)
	}
	if results[3].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[3].Detail)
	}
}

func TestToolRequirementsFollowEnabledModes(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles = []config.Profile{{Name: "Rip", Mode: "rip"}}

	reqs := ToolRequirements(&cfg)
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	if reqs[0].Optional || !reqs[1].Optional || !reqs[2].Optional {
		t.Fatalf("rip-only config should only require the ripper: %+v", reqs)
	}

	cfg.Profiles = append(cfg.Profiles, config.Profile{Name: "ISO", Mode: "backup_iso"}, config.Profile{Name: "Enc", Mode: "encode"})
	reqs = ToolRequirements(&cfg)
	if reqs[1].Optional || reqs[2].Optional {
		t.Fatalf("encoder and ISO builder should be required: %+v", reqs)
	}
}

func TestCheckJellyfin_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/System/Info" || r.Header.Get("X-Emby-Token") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckJellyfin(context.Background(), srv.URL+"/", "good-key")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckJellyfin_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tests := []struct {
		name, url, key string
	}{
		{"bad key", srv.URL, "bad-key"},
		{"missing url", "", "key"},
		{"missing key", "http://localhost", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := CheckJellyfin(context.Background(), tt.url, tt.key); result.Passed {
				t.Fatalf("expected failure, got %+v", result)
			}
		})
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_WithStubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Disc.Device = ""

	results := RunAll(context.Background(), cfg)
	// three binaries, scratch access, scratch space, destination access
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d: %+v", len(results), results)
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_ReportsMissingDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Disc.Device = ""
	cfg.Paths.DestinationDir = filepath.Join(t.TempDir(), "offline")

	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Destination directory" {
		t.Fatalf("expected only the destination check to fail, got %+v", failed)
	}
}
