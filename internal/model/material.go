package model

import (
	"fmt"
	"sort"
)

// MaterialProperties holds the conductor material constants used for the
// temperature-corrected resistivity formula.
type MaterialProperties struct {
	Resistivity20C  float64 `yaml:"resistivity_20c" json:"resistivity_20c"`   // Ω·mm²/m at 20°C
	TempCoefficient float64 `yaml:"temp_coefficient" json:"temp_coefficient"` // 1/°C
}

// MaterialTable maps conductor material names to their properties.
type MaterialTable map[string]MaterialProperties

// UnknownMaterialError reports a lookup against a material that is not in
// the table, carrying the known names for the caller's message.
type UnknownMaterialError struct {
	Material  string
	Available []string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("unknown conductor material %q (available: %v)", e.Material, e.Available)
}

// DefaultMaterials returns the builtin conductor material table.
func DefaultMaterials() MaterialTable {
	return MaterialTable{
		"copper":        {Resistivity20C: 0.01724, TempCoefficient: 0.00393},
		"aluminum":      {Resistivity20C: 0.02826, TempCoefficient: 0.00403},
		"tinned_copper": {Resistivity20C: 0.01786, TempCoefficient: 0.00393},
		"silver":        {Resistivity20C: 0.01587, TempCoefficient: 0.00380},
	}
}

// Names returns the material names in sorted order.
func (t MaterialTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResistivityAt computes the resistivity of a material at an operating
// temperature: rho20 * (1 + alpha*(tempC-20)), in Ω·mm²/m.
func (t MaterialTable) ResistivityAt(material string, tempC float64) (float64, error) {
	props, ok := t[material]
	if !ok {
		return 0, &UnknownMaterialError{Material: material, Available: t.Names()}
	}
	return props.Resistivity20C * (1 + props.TempCoefficient*(tempC-20)), nil
}
