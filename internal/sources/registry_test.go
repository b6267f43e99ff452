package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRegistryBuiltins(t *testing.T) {
	r, err := NewRegistry("", "")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if len(r.All()) == 0 {
		t.Fatal("no built-in adapters")
	}
	for _, a := range r.All() {
		if err := a.Validate(); err != nil {
			t.Errorf("built-in %q invalid: %v", a.Name, err)
		}
	}
	if _, ok := r.Get("BBC"); !ok {
		t.Error("lookup should be case-insensitive")
	}
}

func TestEnableListFilters(t *testing.T) {
	r, err := NewRegistry("", "bbc, reuters")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	enabled := r.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("got %d enabled, want 2", len(enabled))
	}
	for _, a := range enabled {
		if a.Name != "bbc" && a.Name != "reuters" {
			t.Errorf("unexpected enabled source %q", a.Name)
		}
	}
}

const overlayYAML = `sources:
  - name: bbc
    listing_url: https://override.example.com/news
    enabled: true
    list:
      item: div.promo
      title: h3
      link: a
  - name: localpaper
    listing_url: https://local.example.com/
    enabled: true
    list:
      item: article
      title: h2
      link: h2 a
`

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOverlayMergeAndAppend(t *testing.T) {
	r, err := NewRegistry(writeOverlay(t, overlayYAML), "")
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	bbc, ok := r.Get("bbc")
	if !ok {
		t.Fatal("bbc missing after overlay")
	}
	if bbc.ListingURL != "https://override.example.com/news" {
		t.Errorf("overlay did not replace built-in: %q", bbc.ListingURL)
	}
	if bbc.List.Item != "div.promo" {
		t.Errorf("overlay selectors not applied: %q", bbc.List.Item)
	}

	if _, ok := r.Get("localpaper"); !ok {
		t.Error("new overlay source not appended")
	}

	// New sources go after the built-ins.
	all := r.All()
	if all[len(all)-1].Name != "localpaper" {
		t.Errorf("appended source not at roster tail: %q", all[len(all)-1].Name)
	}
}

func TestOverlayInvalidAdapterRejected(t *testing.T) {
	bad := `sources:
  - name: broken
    enabled: true
`
	if _, err := NewRegistry(writeOverlay(t, bad), ""); err == nil {
		t.Fatal("adapter without listing_url and selectors should fail validation")
	}
}

func TestValidate(t *testing.T) {
	a := &Adapter{
		Name:       "x",
		ListingURL: "https://e.com/",
		List:       ListSelectors{Item: "li", Title: "h2", Link: "a"},
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("valid adapter rejected: %v", err)
	}

	missing := *a
	missing.List.Link = ""
	if err := missing.Validate(); err == nil {
		t.Error("adapter without a link selector should be invalid")
	}
}
