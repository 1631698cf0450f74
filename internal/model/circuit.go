package model

// VoltageStatus classifies the voltage-drop outcome of a sized circuit,
// or the failure kind for rows that could not be sized.
type VoltageStatus string

const (
	StatusOK        VoltageStatus = "OK"
	StatusWarning   VoltageStatus = "WARNING"
	StatusCritical  VoltageStatus = "CRITICAL"
	StatusNoSection VoltageStatus = "NO_SECTION"
	StatusError     VoltageStatus = "ERROR"       // domain error on the row
	StatusFatal     VoltageStatus = "FATAL_ERROR" // unexpected error on the row
)

// IsFailure reports whether the status marks a row that produced no sizing.
func (s VoltageStatus) IsFailure() bool {
	return s == StatusError || s == StatusFatal
}

// CircuitRow is one physical circuit or string to size. Rows are read-only
// input owned by the caller; combiner and inverter ids are only set for
// rows participating in CN1 aggregation.
type CircuitRow struct {
	ID         string  `json:"id"`
	LengthPosM float64 `json:"length_pos_m"`
	LengthNegM float64 `json:"length_neg_m"`
	CN1ID      string  `json:"cn1_id,omitempty"`
	InverterID string  `json:"inverter_id,omitempty"`
}

// TotalLengthM is the round-trip conductor run length of the row.
func (r CircuitRow) TotalLengthM() float64 {
	return r.LengthPosM + r.LengthNegM
}

// CircuitResult is the immutable per-row outcome of a sizing run.
// Success records fill the numeric fields; failure records carry only the
// id, the error text, and a failure status. Pointer fields are nil when a
// commercial section could not be selected.
type CircuitResult struct {
	ID                    string        `json:"id"`
	TotalLengthM          float64       `json:"total_length_m"`
	NominalCurrentA       float64       `json:"nominal_current_a"`
	CorrectedCurrentA     float64       `json:"corrected_current_a"`
	ResistivityOhmMm2PerM float64       `json:"resistivity_ohm_mm2_per_m"`
	TheoreticalSectionMm2 float64       `json:"theoretical_section_mm2"`
	CommercialSectionMm2  *float64      `json:"commercial_section_mm2"`
	VoltageDropV          *float64      `json:"voltage_drop_v"`
	VoltageDropPct        *float64      `json:"voltage_drop_pct"`
	MaxVoltageDropV       float64       `json:"max_voltage_drop_v"`
	JouleLossesW          *float64      `json:"joule_losses_w"`
	ResistanceOhm         *float64      `json:"resistance_ohm"`
	VoltageStatus         VoltageStatus `json:"voltage_status"`
	CircuitClass          CircuitClass  `json:"circuit_class"`
	Normative             string        `json:"normative"`
	CableMaterial         string        `json:"cable_material"`
	ParallelStrings       int           `json:"parallel_strings,omitempty"`
	Notes                 []string      `json:"notes,omitempty"`
	Error                 string        `json:"error,omitempty"`
}

// FailureResult builds a failure-kind result for a row.
func FailureResult(id string, status VoltageStatus, err error, normative string) CircuitResult {
	return CircuitResult{
		ID:            id,
		VoltageStatus: status,
		Normative:     normative,
		Error:         err.Error(),
	}
}
