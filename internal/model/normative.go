// Package model defines the domain types and the sizing calculators for
// PV conductor cross-section selection: normative profiles (IEC/NEC/custom),
// material resistivity, current correction, section sizing, and batch runs.
package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CircuitClass identifies which commercial section catalog a circuit uses.
type CircuitClass string

const (
	ClassDCStrings   CircuitClass = "dc_strings"   // panel string circuits
	ClassCN1Inverter CircuitClass = "cn1_inverter" // combiner box to inverter trunks
	ClassACCircuits  CircuitClass = "ac_circuits"  // inverter AC output circuits
	ClassMVCircuits  CircuitClass = "mv_circuits"  // medium voltage feeders
)

// CircuitClasses lists all supported circuit classes in calculation order.
var CircuitClasses = []CircuitClass{ClassDCStrings, ClassCN1Inverter, ClassACCircuits, ClassMVCircuits}

// Method is the cable installation method used for grouping derating lookups.
type Method string

const (
	MethodBuried            Method = "buried"
	MethodTrayPerforated    Method = "tray_perforated"
	MethodTrayNonPerforated Method = "tray_non_perforated"
	MethodConduit           Method = "conduit"
)

// Layout is the cable arrangement within an installation method.
type Layout string

const (
	LayoutSingleLayer Layout = "single_layer"
	LayoutMultilayer  Layout = "multilayer"
)

// Derating factor bounds. Factors outside (0, FactorMax] are treated as
// corrupt table data and replaced by ConservativeFactor.
const (
	FactorMax          = 1.2
	ConservativeFactor = 0.8
)

// Voltage drop percentage bounds applied before every calculation.
const (
	MinDropPercent = 0.1
	MaxDropPercent = 10.0
)

// SafetyFactors holds the normative current safety multipliers.
type SafetyFactors struct {
	IscSafetyFactor float64 `yaml:"isc_safety_factor" json:"isc_safety_factor"`
	ParallelStrings int     `yaml:"parallel_strings" json:"parallel_strings"`
}

// CableDefaults holds the conductor defaults a normative prescribes.
type CableDefaults struct {
	Material   string  `yaml:"material" json:"material"`
	Insulation string  `yaml:"insulation" json:"insulation"`
	MaxTempC   float64 `yaml:"max_temp_c" json:"max_temp_c"`
}

// InstallationDefaults holds the default installation method and layout.
type InstallationDefaults struct {
	Method  Method  `yaml:"method" json:"method"`
	Layout  Layout  `yaml:"layout" json:"layout"`
	DepthCm float64 `yaml:"depth_cm" json:"depth_cm"`
}

// TempPoint is one ambient-temperature derating table entry.
type TempPoint struct {
	AmbientC float64 `json:"ambient_c"`
	Factor   float64 `json:"factor"`
}

// TemperatureDerating is the ordered ambient-temperature correction table
// plus the design ambient the normative assumes.
//
// The YAML shape mirrors the normative catalog documents:
//
//	ambient_design: 30
//	values:
//	  "30": 1.0
//	  "35": 0.96
type TemperatureDerating struct {
	AmbientDesignC float64
	Points         []TempPoint // ascending by AmbientC
}

// MarshalYAML emits the ambient_design/values document shape.
func (d TemperatureDerating) MarshalYAML() (any, error) {
	values := make(map[string]float64, len(d.Points))
	for _, p := range d.Points {
		values[formatNum(p.AmbientC)] = p.Factor
	}
	return map[string]any{
		"ambient_design": d.AmbientDesignC,
		"values":         values,
	}, nil
}

// UnmarshalYAML parses the values mapping into a sorted point list.
func (d *TemperatureDerating) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		AmbientDesign float64            `yaml:"ambient_design"`
		Values        map[string]float64 `yaml:"values"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	points := make([]TempPoint, 0, len(raw.Values))
	for key, factor := range raw.Values {
		ambient, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return fmt.Errorf("invalid temperature key %q: %w", key, err)
		}
		points = append(points, TempPoint{AmbientC: ambient, Factor: factor})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].AmbientC < points[j].AmbientC })
	d.AmbientDesignC = raw.AmbientDesign
	d.Points = points
	return nil
}

// GroupKey is a grouping table key: either an exact circuit count or an
// open-ended threshold ("N or more circuits").
type GroupKey struct {
	N         int
	OpenEnded bool
}

// ParseGroupKey parses "3" or "6+" style keys.
func ParseGroupKey(s string) (GroupKey, error) {
	s = strings.TrimSpace(s)
	open := strings.HasSuffix(s, "+")
	n, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
	if err != nil || n < 1 {
		return GroupKey{}, fmt.Errorf("invalid grouping key %q", s)
	}
	return GroupKey{N: n, OpenEnded: open}, nil
}

func (k GroupKey) String() string {
	if k.OpenEnded {
		return strconv.Itoa(k.N) + "+"
	}
	return strconv.Itoa(k.N)
}

// GroupEntry is one grouping derating table entry.
type GroupEntry struct {
	Key    GroupKey `json:"key"`
	Factor float64  `json:"factor"`
}

// GroupingTable maps circuit counts to grouping derating factors.
// Entries are kept ascending by key count.
type GroupingTable struct {
	Entries []GroupEntry
}

// MarshalYAML emits a plain key→factor mapping.
func (t GroupingTable) MarshalYAML() (any, error) {
	values := make(map[string]float64, len(t.Entries))
	for _, e := range t.Entries {
		values[e.Key.String()] = e.Factor
	}
	return values, nil
}

// UnmarshalYAML parses a key→factor mapping, accepting "N" and "N+" keys.
func (t *GroupingTable) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]float64
	if err := node.Decode(&raw); err != nil {
		return err
	}
	entries := make([]GroupEntry, 0, len(raw))
	for key, factor := range raw {
		gk, err := ParseGroupKey(key)
		if err != nil {
			return err
		}
		entries = append(entries, GroupEntry{Key: gk, Factor: factor})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key.N < entries[j].Key.N })
	t.Entries = entries
	return nil
}

// FactorFor resolves the grouping factor for a circuit count:
// exact match first, then the highest qualifying open-ended threshold,
// then the nearest entry by absolute distance (lower count wins ties).
// Returns false only when the table is empty.
func (t GroupingTable) FactorFor(count int) (float64, bool) {
	if len(t.Entries) == 0 {
		return 1.0, false
	}
	for _, e := range t.Entries {
		if !e.Key.OpenEnded && e.Key.N == count {
			return e.Factor, true
		}
	}
	best := -1
	for i, e := range t.Entries {
		if e.Key.OpenEnded && count >= e.Key.N {
			if best == -1 || e.Key.N > t.Entries[best].Key.N {
				best = i
			}
		}
	}
	if best >= 0 {
		return t.Entries[best].Factor, true
	}
	nearest := t.Entries[0]
	for _, e := range t.Entries[1:] {
		if absInt(e.Key.N-count) < absInt(nearest.Key.N-count) {
			nearest = e
		}
	}
	return nearest.Factor, true
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// LayoutGrouping is a per-layout grouping table.
type LayoutGrouping struct {
	Values GroupingTable `yaml:"values"`
}

// MethodGrouping holds the grouping tables for one installation method:
// either a direct table, per-layout sub-tables, or both.
type MethodGrouping struct {
	Values  *GroupingTable
	Layouts map[Layout]LayoutGrouping
}

// MarshalYAML emits "values" plus one key per layout sub-table.
func (m MethodGrouping) MarshalYAML() (any, error) {
	out := make(map[string]any, len(m.Layouts)+1)
	if m.Values != nil {
		out["values"] = *m.Values
	}
	for layout, lg := range m.Layouts {
		out[string(layout)] = lg
	}
	return out, nil
}

// UnmarshalYAML splits a method mapping into its direct table and any
// layout sub-tables. Unknown nested shapes are decoded as layouts so that
// inconsistently nested custom profiles still resolve.
func (m *MethodGrouping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("grouping method must be a mapping")
	}
	m.Values = nil
	m.Layouts = nil
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		if key == "values" {
			var table GroupingTable
			if err := value.Decode(&table); err != nil {
				return err
			}
			m.Values = &table
			continue
		}
		var lg LayoutGrouping
		if err := value.Decode(&lg); err != nil {
			return err
		}
		if m.Layouts == nil {
			m.Layouts = map[Layout]LayoutGrouping{}
		}
		m.Layouts[Layout(key)] = lg
	}
	return nil
}

// VoltageDropLimits is the voltage drop budget of a normative.
type VoltageDropLimits struct {
	MaxPercent        float64 `yaml:"max_percent" json:"max_percent"`
	ReferenceVoltageV float64 `yaml:"reference_voltage" json:"reference_voltage"`
}

// Sanitized clamps MaxPercent into the permitted band. ReferenceVoltageV is
// left as-is; a non-positive reference is a hard calculation error instead.
func (l VoltageDropLimits) Sanitized() VoltageDropLimits {
	if l.MaxPercent < MinDropPercent {
		l.MaxPercent = MinDropPercent
	}
	if l.MaxPercent > MaxDropPercent {
		l.MaxPercent = MaxDropPercent
	}
	return l
}

// NormativeProfile is one electrical code's full parameter bundle.
// Profiles are value types: calculations never mutate them.
type NormativeProfile struct {
	Code                string                     `yaml:"-" json:"code"`
	Name                string                     `yaml:"name,omitempty" json:"name,omitempty"`
	Description         string                     `yaml:"description,omitempty" json:"description,omitempty"`
	Country             string                     `yaml:"country,omitempty" json:"country,omitempty"`
	SafetyFactors       SafetyFactors              `yaml:"safety_factors" json:"safety_factors"`
	Cable               CableDefaults              `yaml:"cable" json:"cable"`
	Installation        InstallationDefaults       `yaml:"installation" json:"installation"`
	TemperatureDerating TemperatureDerating        `yaml:"temperature_derating" json:"temperature_derating"`
	GroupingDerating    map[Method]MethodGrouping  `yaml:"grouping_derating" json:"grouping_derating"`
	VoltageDrop         VoltageDropLimits          `yaml:"voltage_drop" json:"voltage_drop"`
	CommercialSections  map[CircuitClass][]float64 `yaml:"commercial_sections" json:"commercial_sections"`
}

// SectionsFor returns the ascending commercial section catalog for a class.
// The returned slice is a copy.
func (p NormativeProfile) SectionsFor(class CircuitClass) []float64 {
	src := p.CommercialSections[class]
	out := make([]float64, len(src))
	copy(out, src)
	sort.Float64s(out)
	return out
}

// ValidateStructure checks the invariants a calculation cannot run
// without. Derating factor ranges are deliberately not checked here: an
// out-of-range factor degrades to the conservative value at correction
// time, and a merged per-project configuration must stay resolvable.
func (p NormativeProfile) ValidateStructure() error {
	if p.SafetyFactors.IscSafetyFactor <= 1 {
		return fmt.Errorf("normative %s: isc safety factor must be > 1, got %v", p.Code, p.SafetyFactors.IscSafetyFactor)
	}
	if p.SafetyFactors.ParallelStrings < 1 {
		return fmt.Errorf("normative %s: parallel strings default must be >= 1, got %d", p.Code, p.SafetyFactors.ParallelStrings)
	}
	if p.VoltageDrop.ReferenceVoltageV <= 0 {
		return fmt.Errorf("normative %s: reference voltage must be > 0, got %v", p.Code, p.VoltageDrop.ReferenceVoltageV)
	}
	if len(p.TemperatureDerating.Points) == 0 {
		return fmt.Errorf("normative %s: empty temperature derating table", p.Code)
	}
	for class, sections := range p.CommercialSections {
		for _, s := range sections {
			if s <= 0 {
				return fmt.Errorf("normative %s: non-positive section %v for %s", p.Code, s, class)
			}
		}
	}
	return nil
}

// Validate checks the structural invariants plus the derating factor
// ranges. Catalog registration uses it, so builtin and file profiles
// always ship clean tables.
func (p NormativeProfile) Validate() error {
	if err := p.ValidateStructure(); err != nil {
		return err
	}
	for _, pt := range p.TemperatureDerating.Points {
		if pt.Factor <= 0 || pt.Factor > FactorMax {
			return fmt.Errorf("normative %s: temperature factor %v for %v°C out of range", p.Code, pt.Factor, pt.AmbientC)
		}
	}
	return nil
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
