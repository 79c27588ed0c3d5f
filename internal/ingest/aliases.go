package ingest

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pable/go-cricket-metrics/internal/registry"
)

//go:embed aliases.yaml
var defaultAliases []byte

var (
	// ErrDefunct marks a team that no longer exists; its matches are skipped.
	ErrDefunct = errors.New("defunct team")
	// ErrUnknownName marks a team absent from a strict alias table.
	ErrUnknownName = errors.New("unknown team")
)

type aliasFile struct {
	Strict  bool                `yaml:"strict"`
	Teams   map[string][]string `yaml:"teams"`
	Venues  map[string][]string `yaml:"venues"`
	Defunct []string            `yaml:"defunct"`
}

// Aliases maps raw team and venue spellings to canonical identifiers.
type Aliases struct {
	strict  bool
	teams   map[string]string
	venues  map[string]string
	defunct map[string]bool
}

// fold normalises a raw name for lookup.
func fold(s string) string {
	s = strings.ReplaceAll(s, "\uFFFD", "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// clean trims and collapses whitespace without changing case.
func clean(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\uFFFD", "")), " ")
}

// ParseAliases decodes a YAML alias table.
func ParseAliases(data []byte) (*Aliases, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	a := &Aliases{
		strict:  f.Strict,
		teams:   make(map[string]string),
		venues:  make(map[string]string),
		defunct: make(map[string]bool),
	}
	for _, group := range []struct {
		kind string
		src  map[string][]string
		dst  map[string]string
	}{{"team", f.Teams, a.teams}, {"venue", f.Venues, a.venues}} {
		for canonical, spellings := range group.src {
			canonical = clean(canonical)
			if canonical == "" {
				return nil, fmt.Errorf("parse aliases: empty canonical %s name", group.kind)
			}
			for _, s := range append([]string{canonical}, spellings...) {
				k := fold(s)
				if prev, ok := group.dst[k]; ok && prev != canonical {
					return nil, fmt.Errorf("parse aliases: %s %q maps to both %q and %q", group.kind, s, prev, canonical)
				}
				group.dst[k] = canonical
			}
		}
	}
	for _, d := range f.Defunct {
		k := fold(d)
		if _, ok := a.teams[k]; ok {
			return nil, fmt.Errorf("parse aliases: %q is both active and defunct", d)
		}
		a.defunct[k] = true
	}
	return a, nil
}

// LoadAliases reads the alias table at path, or the built-in IPL table when
// path is empty.
func LoadAliases(path string) (*Aliases, error) {
	if path == "" {
		return ParseAliases(defaultAliases)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	return ParseAliases(data)
}

// Team returns the canonical name for raw. An empty raw name returns "".
func (a *Aliases) Team(raw string) (string, error) {
	k := fold(raw)
	if k == "" {
		return "", nil
	}
	if a.defunct[k] {
		return "", fmt.Errorf("%w: %s", ErrDefunct, clean(raw))
	}
	if c, ok := a.teams[k]; ok {
		return c, nil
	}
	if a.strict {
		return "", fmt.Errorf("%w: %s", ErrUnknownName, clean(raw))
	}
	return clean(raw), nil
}

// Venue returns the canonical venue for raw; unlisted venues pass through cleaned.
func (a *Aliases) Venue(raw string) string {
	if c, ok := a.venues[fold(raw)]; ok {
		return c
	}
	return clean(raw)
}

// Teams returns the sorted canonical team names.
func (a *Aliases) Teams() []string { return canonicals(a.teams) }

// Venues returns the sorted canonical venue names.
func (a *Aliases) Venues() []string { return canonicals(a.venues) }

// Seed interns every canonical team and venue, so names the table knows
// resolve even before they appear in any stored match.
func (a *Aliases) Seed(teams, venues *registry.Registry) {
	for _, t := range a.Teams() {
		teams.Intern(t)
	}
	for _, v := range a.Venues() {
		venues.Intern(v)
	}
}

func canonicals(m map[string]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
