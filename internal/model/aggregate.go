package model

import "strings"

// UnknownCircuitID buckets rows whose combiner or inverter identifiers do
// not follow the expected naming convention. Such rows never fail a batch.
const UnknownCircuitID = "UNKNOWN"

// NormalizeCircuitID builds the canonical join key between string-level
// rows and CN1 trunk rows. One rule applies on both sides of the join:
// the combiner box number is zero-padded to width 2, the inverter number
// has its leading zeros stripped (empty becomes "0"), and the parts join
// as "cn1-<box>-inv<inv>".
func NormalizeCircuitID(cn1ID, inverterID string) string {
	box := strings.ToLower(strings.TrimSpace(cn1ID))
	box = strings.TrimPrefix(box, "cn1-")
	if box == "" || !isDigits(box) {
		return UnknownCircuitID
	}
	for len(box) < 2 {
		box = "0" + box
	}

	inv := strings.ToLower(strings.TrimSpace(inverterID))
	inv = strings.TrimPrefix(inv, "inv-")
	inv = strings.TrimLeft(inv, "0")
	if inv == "" {
		inv = "0"
	}
	if !isDigits(inv) {
		return UnknownCircuitID
	}

	return "cn1-" + box + "-inv" + inv
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// BuildParallelMap groups string-level rows by their normalized combiner
// plus inverter key and counts the strings per trunk. The result feeds
// CN1 sizing, where the trunk carries the combined current of all its
// parallel strings.
func BuildParallelMap(stringRows []CircuitRow) map[string]int {
	mapping := make(map[string]int)
	for _, row := range stringRows {
		mapping[NormalizeCircuitID(row.CN1ID, row.InverterID)]++
	}
	return mapping
}
