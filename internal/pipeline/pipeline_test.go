package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/newswatch/scout/internal/store"
	"github.com/newswatch/scout/pkg/models"
)

func TestPersistWritesBothSinks(t *testing.T) {
	dir := t.TempDir()
	records, err := store.OpenRecordStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer records.Close()

	p := &Pipeline{
		Files:   store.NewFileStore(filepath.Join(dir, "out")),
		Records: records,
	}

	recs := []models.NormalizedRecord{{
		ID:          "r1",
		Source:      "bbc",
		URL:         "https://e.com/a",
		Title:       "A story",
		PublishedAt: "2025-03-18T12:00:00Z",
		FetchedAt:   "2025-03-18T12:05:00Z",
	}}
	p.persist(context.Background(), "bbc", recs)

	if _, err := os.Stat(filepath.Join(dir, "out", "bbc.json")); err != nil {
		t.Errorf("rolling file missing: %v", err)
	}
	stored, err := records.FindBySource(context.Background(), "bbc", 0)
	if err != nil || len(stored) != 1 {
		t.Fatalf("record store: %v, %d rows", err, len(stored))
	}
}

// A failing file sink must not block the record store sink.
func TestPersistSinksAreIndependent(t *testing.T) {
	dir := t.TempDir()
	records, err := store.OpenRecordStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer records.Close()

	// Root the file store at an existing regular file so MkdirAll fails.
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &Pipeline{
		Files:   store.NewFileStore(blocked),
		Records: records,
	}
	p.persist(context.Background(), "bbc", []models.NormalizedRecord{{
		ID: "r1", Source: "bbc", URL: "https://e.com/a", Title: "t",
		PublishedAt: "2025-03-18T12:00:00Z", FetchedAt: "2025-03-18T12:05:00Z",
	}})

	stored, err := records.FindBySource(context.Background(), "bbc", 0)
	if err != nil || len(stored) != 1 {
		t.Fatalf("record store sink skipped after file failure: %v, %d rows", err, len(stored))
	}
}
