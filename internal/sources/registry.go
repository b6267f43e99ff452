package sources

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Registry holds the effective source roster: the built-in adapters,
// optionally overlaid with a YAML file and filtered by an enable list.
// Roster order is fixed for the lifetime of the process.
type Registry struct {
	adapters []*Adapter
	byName   map[string]*Adapter
}

// rosterFile is the YAML overlay shape: a list of adapters. An overlay
// entry whose name matches a built-in replaces it wholesale.
type rosterFile struct {
	Sources []*Adapter `yaml:"sources"`
}

// NewRegistry builds the roster from the built-in adapters, an optional
// overlay file, and an optional comma-separated enable list. An empty
// enable list keeps every adapter's own Enabled flag.
func NewRegistry(overlayPath, enableList string) (*Registry, error) {
	adapters := builtinAdapters()

	if overlayPath != "" {
		overlay, err := loadOverlay(overlayPath)
		if err != nil {
			return nil, err
		}
		adapters = merge(adapters, overlay)
		log.Info().Str("path", overlayPath).Int("sources", len(overlay)).Msg("Roster overlay applied")
	}

	if enableList != "" {
		enabled := make(map[string]bool)
		for _, name := range strings.Split(enableList, ",") {
			enabled[strings.TrimSpace(strings.ToLower(name))] = true
		}
		for _, a := range adapters {
			a.Enabled = enabled[strings.ToLower(a.Name)]
		}
	}

	byName := make(map[string]*Adapter, len(adapters))
	for _, a := range adapters {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid source config: %w", err)
		}
		if _, dup := byName[strings.ToLower(a.Name)]; dup {
			return nil, fmt.Errorf("duplicate source name %q", a.Name)
		}
		byName[strings.ToLower(a.Name)] = a
	}

	return &Registry{adapters: adapters, byName: byName}, nil
}

// All returns every adapter in fixed roster order, enabled or not.
func (r *Registry) All() []*Adapter {
	return r.adapters
}

// Enabled returns the adapters active for crawling, in roster order.
func (r *Registry) Enabled() []*Adapter {
	out := make([]*Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// Get looks up an adapter by case-insensitive name.
func (r *Registry) Get(name string) (*Adapter, bool) {
	a, ok := r.byName[strings.ToLower(name)]
	return a, ok
}

func loadOverlay(path string) ([]*Adapter, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster overlay: %w", err)
	}
	var file rosterFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse roster overlay: %w", err)
	}
	return file.Sources, nil
}

// merge overlays the extra adapters onto base. Name matches replace the
// built-in; new names append in sorted order so roster order stays stable
// across restarts regardless of map iteration.
func merge(base, extra []*Adapter) []*Adapter {
	index := make(map[string]int, len(base))
	for i, a := range base {
		index[strings.ToLower(a.Name)] = i
	}

	var added []*Adapter
	for _, a := range extra {
		if i, ok := index[strings.ToLower(a.Name)]; ok {
			base[i] = a
		} else {
			added = append(added, a)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].Name < added[j].Name })
	return append(base, added...)
}
