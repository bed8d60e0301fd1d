package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ripline/internal/logging"
	"ripline/internal/procsup"
	"ripline/internal/testsupport"
)

type stubFinder struct {
	running map[string]int
	queried [][]string
}

func (f *stubFinder) FindAny(_ context.Context, executables ...string) (procsup.Handle, bool) {
	f.queried = append(f.queried, executables)
	for _, exe := range executables {
		if pid, ok := f.running[exe]; ok {
			return procsup.Handle{PID: pid, Name: exe}, true
		}
	}
	return procsup.Handle{}, false
}

var tools = []string{"makemkvcon", "HandBrakeCLI", "mkisofs"}

func seedScratch(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "title_t00.mkv"), 64)
	testsupport.WriteFile(t, filepath.Join(dir, "backup", "BDMV", "index.bdmv"), 64)
	return dir
}

func TestClearRefusesWhileToolRuns(t *testing.T) {
	for _, exe := range tools {
		for _, force := range []bool{false, true} {
			dir := seedScratch(t)
			finder := &stubFinder{running: map[string]int{exe: 4242}}
			l := NewLifecycle(finder, tools, true, logging.NewNop())

			if l.Clear(context.Background(), dir, force) {
				t.Fatalf("Clear(force=%v) succeeded while %s was running", force, exe)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 2 {
				t.Fatalf("expected scratch untouched, got %d entries", len(entries))
			}
		}
	}
}

func TestClearRemovesContentsRecursively(t *testing.T) {
	dir := seedScratch(t)
	finder := &stubFinder{}
	l := NewLifecycle(finder, tools, false, logging.NewNop())

	if !l.Clear(context.Background(), dir, true) {
		t.Fatal("Clear returned false")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("scratch dir itself should remain: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty scratch, got %d entries", len(entries))
	}
	if len(finder.queried) != 1 || len(finder.queried[0]) != 3 {
		t.Fatalf("expected all three tools to be checked, got %v", finder.queried)
	}
}

func TestClearMissingDirectory(t *testing.T) {
	l := NewLifecycle(&stubFinder{}, tools, false, logging.NewNop())
	if !l.Clear(context.Background(), filepath.Join(t.TempDir(), "absent"), false) {
		t.Fatal("clearing a missing directory should succeed")
	}
}

func TestRemoveFilePolicy(t *testing.T) {
	tests := []struct {
		name            string
		deleteOnSuccess bool
		force           bool
		running         bool
		wantRemoved     bool
	}{
		{"policy off", false, false, false, false},
		{"policy on", true, false, false, true},
		{"forced", false, true, false, true},
		{"forced while running", false, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "movie.mkv")
			testsupport.WriteFile(t, path, 16)
			finder := &stubFinder{}
			if tt.running {
				finder.running = map[string]int{"HandBrakeCLI": 7}
			}
			l := NewLifecycle(finder, tools, tt.deleteOnSuccess, logging.NewNop())

			if got := l.RemoveFile(context.Background(), path, tt.force); got != tt.wantRemoved {
				t.Fatalf("RemoveFile = %v, want %v", got, tt.wantRemoved)
			}
			_, err := os.Stat(path)
			if exists := err == nil; exists == tt.wantRemoved {
				t.Fatalf("file exists = %v after RemoveFile = %v", exists, tt.wantRemoved)
			}
		})
	}
}

func TestListEntries(t *testing.T) {
	dir := seedScratch(t)
	entries, err := ListEntries(dir)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Size != 64 {
			t.Fatalf("entry %s size = %d", e.Name, e.Size)
		}
	}
	if missing, err := ListEntries(filepath.Join(dir, "nope")); err != nil || missing != nil {
		t.Fatalf("missing dir: %v %v", missing, err)
	}
}
