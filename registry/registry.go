// Package registry manages the curated category table.
package registry

import (
	_ "embed"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cirque-irc/conformance/types"
)

//go:embed categories.yaml
var defaultCategories []byte

// Config contains registry configuration
type Config struct {
	// ConfigFile optionally overrides the embedded category table.
	ConfigFile string
	Log        *slog.Logger
}

// Registry holds the validated category table, preserving declared order.
type Registry struct {
	categories []types.Category
}

type categoryFile struct {
	Categories []types.Category `yaml:"categories"`
}

// NewRegistry loads and validates the category table.
func NewRegistry(cfg Config) (*Registry, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	data := defaultCategories
	if cfg.ConfigFile != "" {
		log.Debug("Loading category config", "path", cfg.ConfigFile)
		var err error
		data, err = os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return nil, errors.Wrapf(err, "reading category config %s", cfg.ConfigFile)
		}
	}

	var file categoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "parsing category config")
	}

	if err := validate(file.Categories); err != nil {
		return nil, err
	}

	return &Registry{categories: file.Categories}, nil
}

func validate(categories []types.Category) error {
	if len(categories) == 0 {
		return errors.New("category table is empty")
	}
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c.ID == "" {
			return errors.New("category with empty id")
		}
		if _, ok := seen[c.ID]; ok {
			return errors.Errorf("duplicate category %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if !c.Enabled && c.Rationale == "" {
			return errors.Errorf("disabled category %q has no rationale", c.ID)
		}
	}
	return nil
}

// Categories returns the full table in declared order.
func (r *Registry) Categories() []types.Category {
	return r.categories
}

// Enabled returns the enabled categories in declared order. This is the
// only set ever handed to the external suite.
func (r *Registry) Enabled() []types.Category {
	var out []types.Category
	for _, c := range r.categories {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Disabled returns the disabled categories with their rationales.
func (r *Registry) Disabled() []types.Category {
	var out []types.Category
	for _, c := range r.categories {
		if !c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// Get retrieves a category by id.
func (r *Registry) Get(id string) (types.Category, bool) {
	for _, c := range r.categories {
		if c.ID == id {
			return c, true
		}
	}
	return types.Category{}, false
}
