// Package panel provides the PV module catalog the resolver pulls
// electrical parameters from.
package panel

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Panel holds the catalog entry for one PV module model.
type Panel struct {
	Model        string  `yaml:"-" json:"model"`
	Manufacturer string  `yaml:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Technology   string  `yaml:"technology,omitempty" json:"technology,omitempty"`
	IscA         float64 `yaml:"isc" json:"isc_a"`
	VocV         float64 `yaml:"voc" json:"voc_v"`
	PowerStcW    float64 `yaml:"power_stc" json:"power_stc_w"`
}

// NotFoundError reports a lookup for a model the catalog does not hold.
// The resolver surfaces it unchanged; substituting a fallback panel is a
// caller policy, never catalog behavior.
type NotFoundError struct {
	Model string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("panel model %q not found in catalog", e.Model)
}

// Lookup is the catalog contract the parameter resolver consumes.
type Lookup interface {
	Lookup(model string) (Panel, error)
}

// Catalog is a static in-memory panel database, optionally loaded from a
// YAML document.
type Catalog struct {
	panels map[string]Panel
}

// NewCatalog returns a catalog seeded with the builtin panel database.
func NewCatalog() *Catalog {
	return &Catalog{panels: builtinPanels()}
}

// catalogDocument mirrors the panel_database.yaml shape:
//
//	panels:
//	  "Generic 550W":
//	    isc: 14.0
type catalogDocument struct {
	Panels map[string]Panel `yaml:"panels"`
}

// LoadCatalog reads a panel database file over the builtin entries.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read panel database: %w", err)
	}
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse panel database: %w", err)
	}
	for model, p := range doc.Panels {
		p.Model = model
		if p.IscA <= 0 {
			return nil, fmt.Errorf("panel %q has non-positive isc %v", model, p.IscA)
		}
		c.panels[model] = p
	}
	return c, nil
}

// Lookup returns the entry for a model or a NotFoundError.
func (c *Catalog) Lookup(model string) (Panel, error) {
	p, ok := c.panels[model]
	if !ok {
		return Panel{}, &NotFoundError{Model: model}
	}
	return p, nil
}

// Models returns the catalog's model names in sorted order.
func (c *Catalog) Models() []string {
	models := make([]string, 0, len(c.panels))
	for model := range c.panels {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

func builtinPanels() map[string]Panel {
	panels := map[string]Panel{
		"Generic 450W": {Manufacturer: "Generic", Technology: "mono-PERC", IscA: 11.60, VocV: 49.3, PowerStcW: 450},
		"Generic 550W": {Manufacturer: "Generic", Technology: "mono-PERC", IscA: 14.00, VocV: 49.9, PowerStcW: 550},
		"Generic 660W": {Manufacturer: "Generic", Technology: "bifacial", IscA: 18.40, VocV: 46.1, PowerStcW: 660},
		"Custom Panel": {Manufacturer: "User defined", Technology: "custom", IscA: 13.85, VocV: 51.5, PowerStcW: 500},
	}
	for model, p := range panels {
		p.Model = model
		panels[model] = p
	}
	return panels
}
