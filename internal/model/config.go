package model

// PanelSpec is the electrical data of the PV module feeding a calculation.
type PanelSpec struct {
	Model     string  `json:"model"`
	IscA      float64 `json:"isc_a"`
	VocV      float64 `json:"voc_v"`
	PowerStcW float64 `json:"power_stc_w"`
}

// ConfigMetadata records where the effective configuration came from.
// It exists for response traceability only; the math never reads it.
type ConfigMetadata struct {
	Normative           string   `json:"normative"`
	ProjectID           string   `json:"project_id,omitempty"`
	Stage               string   `json:"stage,omitempty"`
	PanelModel          string   `json:"panel_model"`
	OverridesApplied    bool     `json:"overrides_applied"`
	OverriddenSections  []string `json:"overridden_sections,omitempty"`
	AdHocSections       []string `json:"ad_hoc_sections,omitempty"`
	PanelFallbackUsed   bool     `json:"panel_fallback_used,omitempty"`
	OverrideLastChanged string   `json:"override_last_changed,omitempty"`
}

// CalculationConfig is the flattened, effective configuration one batch
// calculation runs against. It is derived once per request by the
// parameter resolver and never mutated afterwards.
type CalculationConfig struct {
	Panel        PanelSpec            `json:"panel"`
	Safety       SafetyFactors        `json:"safety_factors"`
	Cable        CableDefaults        `json:"cable"`
	Installation InstallationDefaults `json:"installation"`
	Temperature  TemperatureDerating  `json:"temperature_derating"`
	Grouping     map[Method]MethodGrouping `json:"grouping_derating"`
	VoltageDrop  VoltageDropLimits          `json:"voltage_drop"`
	Sections     map[CircuitClass][]float64 `json:"commercial_sections"`

	// AmbientTempC overrides the profile's design ambient when set;
	// nil means "use the profile value".
	AmbientTempC *float64 `json:"ambient_temp_c,omitempty"`

	// ParallelMap maps normalized CN1 circuit ids to parallel string counts.
	// Only populated for CN1 batch runs.
	ParallelMap map[string]int `json:"parallel_map,omitempty"`

	Metadata ConfigMetadata `json:"metadata"`
}

// EffectiveAmbientC resolves the ambient temperature for derating lookups:
// explicit override first, then the profile's design ambient.
func (c CalculationConfig) EffectiveAmbientC() float64 {
	if c.AmbientTempC != nil {
		return *c.AmbientTempC
	}
	return c.Temperature.AmbientDesignC
}

// ParallelStringsFor returns the parallel string count for a normalized CN1
// circuit id. Missing ids default to 1; the second return reports whether
// the id was actually mapped.
func (c CalculationConfig) ParallelStringsFor(circuitID string) (int, bool) {
	if n, ok := c.ParallelMap[circuitID]; ok && n >= 1 {
		return n, true
	}
	return 1, false
}
