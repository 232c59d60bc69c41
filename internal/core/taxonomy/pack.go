// Package taxonomy loads and compiles the service keyword taxonomy from the
// embedded v1 services.json.
// It prepares normalized weighted patterns and urgency markers for the classifier
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"leadrelay/internal/core/normalize"
)

//go:embed services.json
var embedded []byte

type rawPatternV1 struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type rawServiceV1 struct {
	Name     string         `json:"name"`
	Patterns []rawPatternV1 `json:"patterns"`
}

type rawPackV1 struct {
	Version  int                 `json:"version"`
	Meta     map[string]any      `json:"meta"`
	Scale    float64             `json:"scale"`
	Services []rawServiceV1      `json:"services"`
	Negative []rawPatternV1      `json:"negative"`
	Urgency  map[string][]string `json:"urgency"`
}

// Pattern is a weighted keyword or phrase, stored in normalized form so it
// matches the classifier's normalized input directly
type Pattern struct {
	Text   string
	Weight float64
}

// Service groups the patterns that vote for one service name
type Service struct {
	Name     string
	Patterns []Pattern
}

// Pack represents a compiled taxonomy for the classifier
type Pack struct {
	Version int

	// Scale multiplies raw pattern scores before the 0..100 clamp
	Scale float64

	// Services sorted by name; patterns sorted by text within each service
	Services []Service

	// Negative patterns subtract from every service score
	Negative []Pattern

	// Urgency maps level 1..5 to its normalized marker phrases
	Urgency map[int][]string

	// Optional extras (surfaced on the taxonomy admin endpoint)
	Meta map[string]any
}

// Load returns the compiled pack from the embedded v1 services.json
func Load() (*Pack, error) {
	return parse(embedded)
}

// LoadFile returns the compiled pack from an external services.json override
func LoadFile(path string) (*Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Pack, error) {
	var rp rawPackV1
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("taxonomy: parse services.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("taxonomy: unsupported services.json version %d (want 1)", rp.Version)
	}
	if rp.Scale < 0 {
		return nil, fmt.Errorf("taxonomy: negative scale %v", rp.Scale)
	}
	if len(rp.Services) == 0 {
		return nil, fmt.Errorf("taxonomy: no services defined")
	}

	p := &Pack{
		Version: rp.Version,
		Scale:   rp.Scale,
		Urgency: make(map[int][]string, 5),
		Meta:    rp.Meta,
	}
	if p.Scale == 0 {
		p.Scale = 1 // authors may omit scale
	}

	n := normalize.New()

	// Services: names lowercased and unique, pattern text normalized+deduped.
	// Spelling variants that normalize to the same text collapse to the first
	seen := make(map[string]struct{}, len(rp.Services))
	for _, rs := range rp.Services {
		name := strings.ToLower(strings.TrimSpace(rs.Name))
		if name == "" {
			return nil, fmt.Errorf("taxonomy: service with empty name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate service %q", name)
		}
		seen[name] = struct{}{}

		pats, err := compilePatterns(n, name, rs.Patterns)
		if err != nil {
			return nil, err
		}
		if len(pats) == 0 {
			return nil, fmt.Errorf("taxonomy: service %q has no usable patterns", name)
		}
		p.Services = append(p.Services, Service{Name: name, Patterns: pats})
	}

	var err error
	if p.Negative, err = compilePatterns(n, "negative", rp.Negative); err != nil {
		return nil, err
	}

	// Urgency: keys are levels "1".."5", markers normalized+deduped
	for key, markers := range rp.Urgency {
		lvl, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || lvl < 1 || lvl > 5 {
			return nil, fmt.Errorf("taxonomy: bad urgency level %q (want 1..5)", key)
		}
		dedup := make(map[string]struct{}, len(markers))
		var acc []string
		for _, m := range markers {
			m = n.Normalize(m)
			if m == "" {
				continue
			}
			if _, ok := dedup[m]; ok {
				continue
			}
			dedup[m] = struct{}{}
			acc = append(acc, m)
		}
		if len(acc) > 0 {
			p.Urgency[lvl] = acc
		}
	}

	// Deterministic iteration for tests/debug
	sort.Slice(p.Services, func(i, j int) bool {
		return p.Services[i].Name < p.Services[j].Name
	})
	sort.Slice(p.Negative, func(i, j int) bool {
		return p.Negative[i].Text < p.Negative[j].Text
	})
	for _, lst := range p.Urgency {
		sort.Strings(lst)
	}

	return p, nil
}

// compilePatterns normalizes, validates and sorts one pattern list.
// owner is only used in error messages
func compilePatterns(n *normalize.Normalizer, owner string, in []rawPatternV1) ([]Pattern, error) {
	seen := make(map[string]struct{}, len(in))
	var out []Pattern
	for _, rp := range in {
		text := n.Normalize(rp.Text)
		if text == "" {
			continue
		}
		if rp.Weight <= 0 {
			return nil, fmt.Errorf("taxonomy: %s pattern %q has non-positive weight %v", owner, rp.Text, rp.Weight)
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, Pattern{Text: text, Weight: rp.Weight})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out, nil
}
