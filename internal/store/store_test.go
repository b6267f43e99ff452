package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newswatch/scout/pkg/models"
)

func openTestStore(t *testing.T) *RecordStore {
	t.Helper()
	s, err := OpenRecordStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenRecordStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(source, u, title string) models.NormalizedRecord {
	return models.NormalizedRecord{
		ID:          "id-" + u,
		Source:      source,
		URL:         u,
		Title:       title,
		ContentType: "article",
		PublishedAt: "2025-03-18T12:00:00Z",
		FetchedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func TestUpsertIdempotentByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := record("bbc", "https://e.com/a", "Original title")
	if err := s.Upsert(ctx, []models.NormalizedRecord{r}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	r.Title = "Updated title"
	if err := s.Upsert(ctx, []models.NormalizedRecord{r}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.FindBySource(ctx, "bbc", 0)
	if err != nil {
		t.Fatalf("FindBySource: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 after re-upsert of same URL", len(got))
	}
	if got[0].Title != "Updated title" {
		t.Errorf("Title = %q", got[0].Title)
	}
}

func TestUpsertKeepsStoredContent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r := record("bbc", "https://e.com/a", "t")
	r.Content = "full article body"
	if err := s.Upsert(ctx, []models.NormalizedRecord{r}); err != nil {
		t.Fatal(err)
	}

	r.Content = ""
	if err := s.Upsert(ctx, []models.NormalizedRecord{r}); err != nil {
		t.Fatal(err)
	}

	got, _ := s.FindBySource(ctx, "bbc", 0)
	if len(got) != 1 || got[0].Content != "full article body" {
		t.Fatalf("empty re-upsert clobbered content: %+v", got)
	}
}

func TestDistinctSources(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, []models.NormalizedRecord{
		record("bbc", "https://e.com/1", "a"),
		record("reuters", "https://e.com/2", "b"),
		record("bbc", "https://e.com/3", "c"),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.DistinctSources(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"bbc", "reuters"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFindRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	fresh := record("bbc", "https://e.com/fresh", "fresh")
	stale := record("bbc", "https://e.com/stale", "stale")
	stale.FetchedAt = time.Now().UTC().Add(-6 * time.Hour).Format(time.RFC3339)

	if err := s.Upsert(ctx, []models.NormalizedRecord{fresh, stale}); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindRecent(ctx, 120)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "https://e.com/fresh" {
		t.Fatalf("got %+v, want only the fresh record", got)
	}
}

func TestFileStoreWrite(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)

	recs := []models.NormalizedRecord{record("bbc", "https://e.com/a", "A story")}
	if err := fs.Write("bbc", recs); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Rolling file holds the latest cycle.
	rolling := filepath.Join(root, "bbc.json")
	data, err := os.ReadFile(rolling)
	if err != nil {
		t.Fatalf("rolling file missing: %v", err)
	}
	var decoded []models.NormalizedRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("rolling file not a JSON array: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Title != "A story" {
		t.Fatalf("decoded %+v", decoded)
	}

	// Timestamped file lives under the dated directory tree.
	now := time.Now().UTC()
	dated := filepath.Join(root, "bbc", now.Format("2006"), now.Format("01"), now.Format("02"))
	entries, err := os.ReadDir(dated)
	if err != nil {
		t.Fatalf("dated dir missing: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dated dir has %d entries, want 1", len(entries))
	}
}

func TestFileStoreSkipsEmpty(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root)
	if err := fs.Write("bbc", nil); err != nil {
		t.Fatalf("Write(nil): %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "bbc.json")); !os.IsNotExist(err) {
		t.Fatal("empty write should not create files")
	}
}
