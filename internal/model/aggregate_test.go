package model

import "testing"

func TestNormalizeCircuitID(t *testing.T) {
	tests := []struct {
		name     string
		cn1      string
		inverter string
		want     string
	}{
		{"plain numbers", "1", "1", "cn1-01-inv1"},
		{"prefixed box", "CN1-01", "INV-1", "cn1-01-inv1"},
		{"zero padding applied", "3", "2", "cn1-03-inv2"},
		{"already padded", "12", "4", "cn1-12-inv4"},
		{"inverter leading zeros stripped", "05", "007", "cn1-05-inv7"},
		{"inverter all zeros", "01", "000", "cn1-01-inv0"},
		{"empty inverter", "01", "", "cn1-01-inv0"},
		{"mixed case prefix", "Cn1-02", "Inv-03", "cn1-02-inv3"},
		{"surrounding whitespace", " 7 ", " 2 ", "cn1-07-inv2"},
		{"empty box", "", "1", UnknownCircuitID},
		{"non-numeric box", "north", "1", UnknownCircuitID},
		{"non-numeric inverter", "01", "east", UnknownCircuitID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCircuitID(tt.cn1, tt.inverter)
			if got != tt.want {
				t.Errorf("NormalizeCircuitID(%q, %q) = %q, want %q", tt.cn1, tt.inverter, got, tt.want)
			}
		})
	}
}

func TestNormalizeCircuitID_JoinConsistency(t *testing.T) {
	// the string side and the trunk side of the join must produce the same
	// key for equivalent raw identifiers
	a := NormalizeCircuitID("1", "01")
	b := NormalizeCircuitID("CN1-01", "inv-1")
	if a != b {
		t.Errorf("equivalent identifiers normalize differently: %q vs %q", a, b)
	}
}

func TestBuildParallelMap(t *testing.T) {
	rows := []CircuitRow{
		{ID: "ST-001", CN1ID: "1", InverterID: "1"},
		{ID: "ST-002", CN1ID: "CN1-01", InverterID: "INV-1"},
		{ID: "ST-003", CN1ID: "01", InverterID: "1"},
		{ID: "ST-004", CN1ID: "2", InverterID: "1"},
		{ID: "ST-005", CN1ID: "bogus", InverterID: "1"},
	}

	mapping := BuildParallelMap(rows)

	if mapping["cn1-01-inv1"] != 3 {
		t.Errorf("expected 3 strings on cn1-01-inv1, got %d", mapping["cn1-01-inv1"])
	}
	if mapping["cn1-02-inv1"] != 1 {
		t.Errorf("expected 1 string on cn1-02-inv1, got %d", mapping["cn1-02-inv1"])
	}
	if mapping[UnknownCircuitID] != 1 {
		t.Errorf("malformed ids should bucket under %s, got %d", UnknownCircuitID, mapping[UnknownCircuitID])
	}
}

func TestBuildParallelMap_Empty(t *testing.T) {
	mapping := BuildParallelMap(nil)
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping, got %v", mapping)
	}
}
