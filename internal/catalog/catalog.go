// Package catalog loads and validates the ordered list of response protocol
// levels. A catalog is read-only once loaded.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/psoc/internal/domain"
	"github.com/alexander-akhmetov/psoc/internal/protocol"
)

//go:embed defaults/catalog.yaml
var defaultsFS embed.FS

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid catalog")

// Catalog is an ordered, contiguous set of protocol levels 1..N.
type Catalog struct {
	levels []domain.ProtocolDefinition
}

type file struct {
	Protocols []domain.ProtocolDefinition `yaml:"protocols"`
}

// Default returns the built-in five-level catalog.
func Default() (*Catalog, error) {
	data, err := defaultsFS.ReadFile("defaults/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return Parse(data)
}

// Load reads a catalog from a YAML file. An empty path loads the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path) //nolint:gosec // user's catalog file
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Protocols)
}

// New builds a catalog from definitions, which must already be in level order.
func New(defs []domain.ProtocolDefinition) (*Catalog, error) {
	c := &Catalog{levels: make([]domain.ProtocolDefinition, len(defs))}
	for i, d := range defs {
		d.Actions = append([]string(nil), d.Actions...)
		d.Teams = append([]string(nil), d.Teams...)
		c.levels[i] = d
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that levels run 1..N without gaps and that every level
// has a name and at least one non-blank action.
func (c *Catalog) Validate() error {
	if len(c.levels) == 0 {
		return fmt.Errorf("%w: no protocol levels defined", ErrInvalid)
	}
	for i, d := range c.levels {
		want := protocol.MinLevel + i
		if d.Level != want {
			return fmt.Errorf("%w: entry %d has level %d, want %d (levels must be contiguous from %d)",
				ErrInvalid, i+1, d.Level, want, protocol.MinLevel)
		}
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("%w: level %d has no name", ErrInvalid, d.Level)
		}
		if len(d.Actions) == 0 {
			return fmt.Errorf("%w: level %d has no actions", ErrInvalid, d.Level)
		}
		for j, a := range d.Actions {
			if strings.TrimSpace(a) == "" {
				return fmt.Errorf("%w: level %d action %d is blank", ErrInvalid, d.Level, j+1)
			}
		}
	}
	return nil
}

// Levels returns a copy of all definitions in level order.
func (c *Catalog) Levels() []domain.ProtocolDefinition {
	return append([]domain.ProtocolDefinition(nil), c.levels...)
}

// Get returns the definition for level.
func (c *Catalog) Get(level int) (domain.ProtocolDefinition, bool) {
	i := level - protocol.MinLevel
	if i < 0 || i >= len(c.levels) {
		return domain.ProtocolDefinition{}, false
	}
	return c.levels[i], true
}

// Len returns the number of levels.
func (c *Catalog) Len() int { return len(c.levels) }

// MaxLevel returns the highest level number.
func (c *Catalog) MaxLevel() int { return protocol.MinLevel + len(c.levels) - 1 }

// Markdown renders the catalog as a reference guide.
func (c *Catalog) Markdown() string {
	var b strings.Builder
	b.WriteString("# Response Protocols\n\n")
	b.WriteString("Start with level 1. Complete every step of a level, in order, before the next level unlocks. ")
	b.WriteString("Reset all protocols after incident resolution.\n")
	for _, d := range c.levels {
		fmt.Fprintf(&b, "\n## Level %d: %s\n\n", d.Level, d.Name)
		if d.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", d.Description)
		}
		b.WriteString("**Actions:**\n\n")
		for i, a := range d.Actions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, a)
		}
		b.WriteString("\n")
		if len(d.Teams) > 0 {
			fmt.Fprintf(&b, "**Teams:** %s\n\n", strings.Join(d.Teams, ", "))
		}
		if d.EscalationTime != "" {
			fmt.Fprintf(&b, "**Escalation:** %s\n", d.EscalationTime)
		}
	}
	return b.String()
}
