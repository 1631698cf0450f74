package model

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors raised by the sizing chain. The batch runner converts
// these into per-row ERROR results.
var (
	ErrInvalidLength            = errors.New("circuit lengths must be > 0")
	ErrInvalidVoltageDropBudget = errors.New("voltage drop budget must be > 0")
	ErrInvalidSection           = errors.New("theoretical section must be > 0")
)

// Display rounding precisions. Rounding is presentation-only: every
// derived quantity is computed from the unrounded values.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// SelectCommercialSection scans an ascending catalog and returns the first
// section >= theoretical. When the theoretical section exceeds the whole
// catalog, it returns the largest available plus exceeded=true; an empty
// catalog returns ok=false.
func SelectCommercialSection(theoreticalMm2 float64, catalog []float64) (section float64, exceeded, ok bool) {
	if len(catalog) == 0 {
		return 0, false, false
	}
	for _, s := range catalog {
		if s >= theoreticalMm2 {
			return s, false, true
		}
	}
	return catalog[len(catalog)-1], true, true
}

// Calculator sizes circuits of one class against an effective
// configuration. It is safe to share across rows of a batch: every method
// is a pure function of the receiver's immutable fields and its inputs.
type Calculator struct {
	Config    CalculationConfig
	Class     CircuitClass
	Materials MaterialTable
}

// NewCalculator builds a calculator with the builtin material table.
func NewCalculator(cfg CalculationConfig, class CircuitClass) *Calculator {
	return &Calculator{Config: cfg, Class: class, Materials: DefaultMaterials()}
}

// CalculateRow sizes a single circuit row: nominal current from the panel
// Isc and the normative safety factor, derating correction, resistivity at
// the operating ambient, then section selection and the realized drop.
func (c *Calculator) CalculateRow(row CircuitRow) (CircuitResult, error) {
	nominal := c.Config.Panel.IscA * c.Config.Safety.IscSafetyFactor
	return c.sizeRow(row, row.ID, nominal, 0)
}

// CalculateCN1Row sizes a combiner-trunk row. The nominal current is the
// single-string Isc multiplied by the number of parallel strings feeding
// the trunk, then by the safety factor.
func (c *Calculator) CalculateCN1Row(row CircuitRow) (CircuitResult, error) {
	circuitID := NormalizeCircuitID(firstNonEmpty(row.CN1ID, row.ID), row.InverterID)
	parallel, mapped := c.Config.ParallelStringsFor(circuitID)
	nominal := c.Config.Panel.IscA * float64(parallel) * c.Config.Safety.IscSafetyFactor

	result, err := c.sizeRow(row, circuitID, nominal, parallel)
	if err != nil {
		return result, err
	}
	if !mapped {
		result.Notes = append(result.Notes, fmt.Sprintf("circuit %q not in parallel mapping, assuming 1 string", circuitID))
	}
	return result, nil
}

func (c *Calculator) sizeRow(row CircuitRow, id string, nominalA float64, parallel int) (CircuitResult, error) {
	if row.LengthPosM <= 0 || row.LengthNegM <= 0 {
		return CircuitResult{}, fmt.Errorf("%w: pos=%vm neg=%vm", ErrInvalidLength, row.LengthPosM, row.LengthNegM)
	}

	corr, err := Correct(nominalA, c.Config)
	if err != nil {
		return CircuitResult{}, err
	}

	ambient := c.Config.EffectiveAmbientC()
	resistivity, err := c.Materials.ResistivityAt(c.Config.Cable.Material, ambient)
	if err != nil {
		return CircuitResult{}, err
	}

	totalLength := row.TotalLengthM()
	limits := c.Config.VoltageDrop.Sanitized()
	maxDropV := limits.ReferenceVoltageV * (limits.MaxPercent / 100)
	if maxDropV <= 0 {
		return CircuitResult{}, fmt.Errorf("%w: got %v V (reference %v V, %v%%)",
			ErrInvalidVoltageDropBudget, maxDropV, limits.ReferenceVoltageV, limits.MaxPercent)
	}

	// S = 2*rho*L*I / dV. The factor of 2 models the outbound plus return
	// conductor of a two-wire run.
	theoretical := (2 * resistivity * totalLength * corr.CorrectedA) / maxDropV
	if theoretical <= 0 {
		return CircuitResult{}, fmt.Errorf("%w: got %v mm²", ErrInvalidSection, theoretical)
	}

	result := CircuitResult{
		ID:                    id,
		TotalLengthM:          round2(totalLength),
		NominalCurrentA:       round2(nominalA),
		CorrectedCurrentA:     round2(corr.CorrectedA),
		ResistivityOhmMm2PerM: round6(resistivity),
		TheoreticalSectionMm2: round3(theoretical),
		MaxVoltageDropV:       round3(maxDropV),
		CircuitClass:          c.Class,
		Normative:             c.Config.Metadata.Normative,
		CableMaterial:         c.Config.Cable.Material,
		ParallelStrings:       parallel,
		Notes:                 corr.Notes,
	}

	catalog := c.Config.Sections[c.Class]
	section, exceeded, ok := SelectCommercialSection(theoretical, catalog)
	if !ok {
		result.VoltageStatus = StatusNoSection
		result.Notes = append(result.Notes, fmt.Sprintf("no commercial sections defined for class %s", c.Class))
		return result, nil
	}
	if exceeded {
		result.Notes = append(result.Notes, fmt.Sprintf("theoretical %.3f mm² exceeds catalog maximum %.1f mm²", theoretical, section))
	}

	dropV := (2 * resistivity * totalLength * corr.CorrectedA) / section
	dropPct := dropV / limits.ReferenceVoltageV * 100
	resistance := (2 * resistivity * totalLength) / section
	losses := corr.CorrectedA * corr.CorrectedA * resistance

	result.CommercialSectionMm2 = ptr(round3(section))
	result.VoltageDropV = ptr(round3(dropV))
	result.VoltageDropPct = ptr(round3(dropPct))
	result.ResistanceOhm = ptr(round6(resistance))
	result.JouleLossesW = ptr(round2(losses))

	switch {
	case dropPct <= limits.MaxPercent:
		result.VoltageStatus = StatusOK
	case dropPct <= limits.MaxPercent*1.1:
		result.VoltageStatus = StatusWarning
	default:
		result.VoltageStatus = StatusCritical
	}
	return result, nil
}

func ptr(v float64) *float64 { return &v }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
