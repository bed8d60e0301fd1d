package staging

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ripline/internal/logging"
	"ripline/internal/services"
	"ripline/internal/testsupport"
)

func TestSelectCandidatePicksLargest(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "title_t00.mkv"), 2048)
	testsupport.WriteFile(t, filepath.Join(dir, "title_t01.MKV"), 8192)
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), 1<<20)
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "huge.mkv"), 1<<20)

	best, all, err := SelectCandidate(context.Background(), logging.NewNop(), dir, VideoExtensions)
	if err != nil {
		t.Fatalf("SelectCandidate returned error: %v", err)
	}
	if filepath.Base(best.Path) != "title_t01.MKV" || best.Size != 8192 {
		t.Fatalf("unexpected candidate %+v", best)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 eligible files, got %d", len(all))
	}
}

func TestSelectCandidateTieKeepsFirst(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.mkv", "c.mp4"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 4096)
	}

	for i := 0; i < 3; i++ {
		best, _, err := SelectCandidate(context.Background(), logging.NewNop(), dir, VideoExtensions)
		if err != nil {
			t.Fatalf("SelectCandidate returned error: %v", err)
		}
		if filepath.Base(best.Path) != "a.mkv" {
			t.Fatalf("expected first file in enumeration order, got %s", best.Path)
		}
	}
}

func TestSelectCandidateNoEligibleFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{dir, filepath.Join(dir, "missing")} {
		_, _, err := SelectCandidate(context.Background(), logging.NewNop(), path, VideoExtensions)
		if !errors.Is(err, services.ErrNoEligibleFiles) {
			t.Fatalf("%s: expected ErrNoEligibleFiles, got %v", path, err)
		}
	}
}

func TestSelectCandidateISO(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "My Disc.iso"), 100)
	testsupport.WriteFile(t, filepath.Join(dir, "other.mkv"), 1000)

	best, _, err := SelectCandidate(context.Background(), logging.NewNop(), dir, ISOExtensions)
	if err != nil {
		t.Fatalf("SelectCandidate returned error: %v", err)
	}
	if best.Ext() != ".iso" {
		t.Fatalf("expected iso, got %s", best.Path)
	}
}
