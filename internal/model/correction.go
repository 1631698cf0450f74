package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidCurrent reports a non-positive nominal current. The caller
// decides the policy; the engine never substitutes a safe value silently.
var ErrInvalidCurrent = errors.New("nominal current must be > 0")

// Correction is the outcome of applying derating factors to a nominal
// current. Degraded corrections are still usable; the notes say why the
// lookup was not exact.
type Correction struct {
	NominalA    float64  `json:"nominal_a"`
	CorrectedA  float64  `json:"corrected_a"`
	TempFactor  float64  `json:"temp_factor"`
	GroupFactor float64  `json:"group_factor"`
	Degraded    bool     `json:"degraded,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Correct derates a nominal current by the ambient-temperature and
// grouping factors the configuration resolves to. The corrected (design)
// current is nominal / (tempFactor * groupFactor).
func Correct(nominalA float64, cfg CalculationConfig) (Correction, error) {
	if nominalA <= 0 {
		return Correction{}, fmt.Errorf("%w: got %v A", ErrInvalidCurrent, nominalA)
	}

	c := Correction{NominalA: nominalA}

	tempFactor, tempNote := temperatureFactor(cfg.Temperature, cfg.EffectiveAmbientC())
	if tempNote != "" {
		c.Notes = append(c.Notes, tempNote)
	}

	count := cfg.Safety.ParallelStrings
	if count < 1 {
		count = 1
	}
	groupFactor, groupNote := groupingFactor(cfg.Grouping, cfg.Installation.Method, cfg.Installation.Layout, count)
	if groupNote != "" {
		c.Notes = append(c.Notes, groupNote)
	}

	c.TempFactor, c.GroupFactor = tempFactor, groupFactor
	for i, factor := range []float64{tempFactor, groupFactor} {
		if factor <= 0 || factor > FactorMax {
			which := "temperature"
			if i == 1 {
				which = "grouping"
			}
			c.Notes = append(c.Notes, fmt.Sprintf("%s factor %v out of range, replaced by conservative %v", which, factor, ConservativeFactor))
			c.Degraded = true
			if i == 0 {
				c.TempFactor = ConservativeFactor
			} else {
				c.GroupFactor = ConservativeFactor
			}
		}
	}

	c.CorrectedA = nominalA / (c.TempFactor * c.GroupFactor)
	return c, nil
}

// temperatureFactor resolves the ambient derating factor: exact table
// point, linear interpolation between neighbors, or the nearest point
// outside the table range (annotated).
func temperatureFactor(table TemperatureDerating, ambientC float64) (float64, string) {
	points := table.Points
	if len(points) == 0 {
		return 1.0, "no temperature derating table, factor 1.0"
	}
	for _, p := range points {
		if p.AmbientC == ambientC {
			return p.Factor, ""
		}
	}
	if ambientC < points[0].AmbientC {
		return points[0].Factor, fmt.Sprintf("ambient %v°C below table, using nearest %v°C", ambientC, points[0].AmbientC)
	}
	last := points[len(points)-1]
	if ambientC > last.AmbientC {
		return last.Factor, fmt.Sprintf("ambient %v°C above table, using nearest %v°C", ambientC, last.AmbientC)
	}
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]
		if ambientC > lo.AmbientC && ambientC < hi.AmbientC {
			t := (ambientC - lo.AmbientC) / (hi.AmbientC - lo.AmbientC)
			return lo.Factor + t*(hi.Factor-lo.Factor), ""
		}
	}
	return last.Factor, fmt.Sprintf("ambient %v°C not resolvable, using %v°C", ambientC, last.AmbientC)
}

// groupingFactor resolves the grouping derating factor for an
// installation method, layout, and parallel circuit count. A missing
// table resolves to 1.0 with a note rather than an error.
func groupingFactor(grouping map[Method]MethodGrouping, method Method, layout Layout, count int) (float64, string) {
	mg, ok := grouping[method]
	if !ok {
		return 1.0, fmt.Sprintf("method %q has no grouping table, factor 1.0", method)
	}

	var table GroupingTable
	switch {
	case mg.Layouts != nil && len(mg.Layouts[layout].Values.Entries) > 0:
		table = mg.Layouts[layout].Values
	case mg.Values != nil && len(mg.Values.Entries) > 0:
		table = *mg.Values
	default:
		// Inconsistently nested profiles: take the first sibling sub-table
		// that carries values, in layout name order so repeated runs over
		// the same tables resolve the same factor.
		siblings := make([]Layout, 0, len(mg.Layouts))
		for l := range mg.Layouts {
			siblings = append(siblings, l)
		}
		sort.Slice(siblings, func(i, j int) bool { return siblings[i] < siblings[j] })
		for _, l := range siblings {
			if lg := mg.Layouts[l]; len(lg.Values.Entries) > 0 {
				table = lg.Values
				break
			}
		}
		if len(table.Entries) == 0 {
			return 1.0, fmt.Sprintf("no grouping values for method %q layout %q, factor 1.0", method, layout)
		}
	}

	factor, ok := table.FactorFor(count)
	if !ok {
		return 1.0, fmt.Sprintf("empty grouping table for method %q, factor 1.0", method)
	}
	return factor, ""
}
