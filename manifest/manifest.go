// Package manifest declares component types and archetypes in YAML and populates
// a depot storage from them.
//
//	components:
//	  - name: position
//	    fields:
//	      - {name: x, type: f32}
//	      - {name: y, type: f32}
//	archetypes:
//	  - name: walkers
//	    components: [position]
//	    count: 100
//	    values:
//	      - position: {x: 10, y: 4}
//
// Entry i of an archetype's values overrides fields of its i-th entity.
package manifest

import (
	"fmt"
	"os"

	"github.com/TheBitDrifter/depot"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type FieldSpec struct {
	Name    string    `yaml:"name"`
	Type    FieldType `yaml:"type"`
	Default float64   `yaml:"default"`
}

type ComponentSpec struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields"`
}

type ArchetypeSpec struct {
	Name       string                          `yaml:"name"`
	Components []string                        `yaml:"components"`
	Count      int                             `yaml:"count"`
	Values     []map[string]map[string]float64 `yaml:"values"`
}

type Manifest struct {
	Components []ComponentSpec `yaml:"components"`
	Archetypes []ArchetypeSpec `yaml:"archetypes"`

	compiled map[string]*Component
}

// Result reports what Populate created, keyed by archetype name.
type Result struct {
	Archetypes map[string]*depot.Archetype
	Entities   map[string][]depot.Entity
	Total      int
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(raw)
}

func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.compile(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) compile() error {
	m.compiled = make(map[string]*Component, len(m.Components))
	for _, decl := range m.Components {
		if decl.Name == "" {
			return fmt.Errorf("component without a name")
		}
		if _, dup := m.compiled[decl.Name]; dup {
			return fmt.Errorf("duplicate component %s", decl.Name)
		}
		c, err := compileComponent(decl)
		if err != nil {
			return err
		}
		m.compiled[decl.Name] = c
	}

	names := make(map[string]bool, len(m.Archetypes))
	for _, arch := range m.Archetypes {
		if names[arch.Name] {
			return fmt.Errorf("duplicate archetype %q", arch.Name)
		}
		names[arch.Name] = true
		if arch.Count < 0 {
			return fmt.Errorf("archetype %q: negative count %d", arch.Name, arch.Count)
		}
		if len(arch.Values) > arch.Count {
			return fmt.Errorf("archetype %q: %d value entries for %d entities", arch.Name, len(arch.Values), arch.Count)
		}
		members := make(map[string]bool, len(arch.Components))
		for _, name := range arch.Components {
			if _, ok := m.compiled[name]; !ok {
				return fmt.Errorf("archetype %q: unknown component %s", arch.Name, name)
			}
			if members[name] {
				return fmt.Errorf("archetype %q: component %s listed twice", arch.Name, name)
			}
			members[name] = true
		}
		for i, entity := range arch.Values {
			for name, fields := range entity {
				if !members[name] {
					return fmt.Errorf("archetype %q: values[%d] sets %s, which is not a member", arch.Name, i, name)
				}
				if _, err := m.compiled[name].Encode(fields); err != nil {
					return fmt.Errorf("archetype %q: values[%d]: %w", arch.Name, i, err)
				}
			}
		}
	}
	return nil
}

// Component returns the compiled component declared as name.
func (m *Manifest) Component(name string) (*Component, bool) {
	c, ok := m.compiled[name]
	return c, ok
}

// Populate attaches every declared archetype to sto and creates its entities,
// in declaration order. On error the result holds what was created so far.
func (m *Manifest) Populate(sto depot.Storage) (Result, error) {
	res := Result{
		Archetypes: make(map[string]*depot.Archetype, len(m.Archetypes)),
		Entities:   make(map[string][]depot.Entity, len(m.Archetypes)),
	}
	log := depot.Config.Logger()

	for _, decl := range m.Archetypes {
		arch := depot.Factory.NewArchetype()
		for _, name := range decl.Components {
			c := m.compiled[name]
			if err := arch.Register(c.Key(), c.Size(), c.DefaultBytes()); err != nil {
				return res, fmt.Errorf("archetype %q: %w", decl.Name, err)
			}
		}
		attached, err := sto.AttachArchetype(arch)
		if err != nil {
			return res, fmt.Errorf("archetype %q: %w", decl.Name, err)
		}
		res.Archetypes[decl.Name] = attached

		entities, err := sto.NewEntities(decl.Count, attached)
		res.Entities[decl.Name] = entities
		res.Total += len(entities)
		if err != nil {
			return res, fmt.Errorf("archetype %q: created %d of %d entities: %w", decl.Name, len(entities), decl.Count, err)
		}

		for i, entity := range decl.Values {
			for name, fields := range entity {
				c := m.compiled[name]
				record, err := c.Encode(fields)
				if err != nil {
					return res, err
				}
				if err := sto.SetComponent(entities[i], c.Key(), record); err != nil {
					return res, fmt.Errorf("archetype %q: entity %d: %w", decl.Name, entities[i], err)
				}
			}
		}

		log.Info("manifest archetype populated",
			zap.String("archetype", decl.Name),
			zap.Uint32("id", attached.ID()),
			zap.Int("entities", len(entities)),
		)
	}
	return res, nil
}
