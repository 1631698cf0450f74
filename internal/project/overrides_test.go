package project

import (
	"os"
	"path/filepath"
	"testing"
)

// ─── Save / Load Tests ─────────────────────────────────────

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	sections := map[string]any{
		"voltage_drop": map[string]any{"max_percent": 1.75},
	}
	saved, err := store.Save("plant-a", "dc_strings", "IEC", sections)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.Version != "1.0" {
		t.Errorf("expected version 1.0, got %q", saved.Version)
	}
	if saved.LastModified == "" {
		t.Error("expected last_modified to be stamped")
	}

	loaded, err := store.Load("plant-a", "dc_strings")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected override, got nil")
	}
	if loaded.ProjectID != "plant-a" || loaded.Stage != "dc_strings" || loaded.BaseNorm != "IEC" {
		t.Errorf("identity fields wrong: %+v", loaded)
	}
	vd, ok := loaded.Sections["voltage_drop"].(map[string]any)
	if !ok {
		t.Fatalf("sections lost shape: %T", loaded.Sections["voltage_drop"])
	}
	if vd["max_percent"] != 1.75 {
		t.Errorf("expected max_percent 1.75, got %v", vd["max_percent"])
	}
}

func TestStoreSave_MergesIntoExisting(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save("plant-a", "dc_strings", "IEC", map[string]any{
		"voltage_drop": map[string]any{"max_percent": 1.75},
	})
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	_, err = store.Save("plant-a", "dc_strings", "IEC", map[string]any{
		"voltage_drop": map[string]any{"reference_voltage": 1000},
		"cable":        map[string]any{"material": "aluminum"},
	})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := store.Load("plant-a", "dc_strings")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	vd := loaded.Sections["voltage_drop"].(map[string]any)
	if vd["max_percent"] != 1.75 {
		t.Errorf("first save's leaf lost in merge: %v", vd["max_percent"])
	}
	if vd["reference_voltage"] != 1000 {
		t.Errorf("second save's leaf missing: %v", vd["reference_voltage"])
	}
	if _, ok := loaded.Sections["cable"]; !ok {
		t.Error("new section missing after merge")
	}
}

func TestStoreLoad_MissingIsNil(t *testing.T) {
	store := NewStore(t.TempDir())
	ov, err := store.Load("nope", "dc_strings")
	if err != nil {
		t.Fatalf("missing override must not error: %v", err)
	}
	if ov != nil {
		t.Errorf("expected nil override, got %+v", ov)
	}
}

func TestStoreLoad_CorruptYAML(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	dir := filepath.Join(root, "plant-a", "normatives")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dc_strings.yaml"), []byte("sections: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load("plant-a", "dc_strings"); err == nil {
		t.Error("expected parse error for corrupt file")
	}
}

// ─── Delete / Exists / Stages Tests ────────────────────────

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Save("plant-a", "dc_strings", "IEC", map[string]any{"cable": "x"}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("plant-a", "dc_strings") {
		t.Fatal("override should exist after save")
	}
	if err := store.Delete("plant-a", "dc_strings"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if store.Exists("plant-a", "dc_strings") {
		t.Error("override should be gone after delete")
	}
	// deleting again is idempotent
	if err := store.Delete("plant-a", "dc_strings"); err != nil {
		t.Errorf("deleting absent override must not error: %v", err)
	}
}

func TestStoreStages(t *testing.T) {
	store := NewStore(t.TempDir())

	for _, stage := range []string{"dc_strings", "cn1_inverter"} {
		if _, err := store.Save("plant-a", stage, "IEC", map[string]any{"cable": "x"}); err != nil {
			t.Fatal(err)
		}
	}

	stages, err := store.Stages("plant-a")
	if err != nil {
		t.Fatalf("stages failed: %v", err)
	}
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %v", stages)
	}

	stages, err = store.Stages("no-such-project")
	if err != nil {
		t.Fatalf("unknown project must not error: %v", err)
	}
	if stages != nil {
		t.Errorf("expected no stages, got %v", stages)
	}
}

// ─── Key Validation Tests ──────────────────────────────────

func TestStoreRejectsPathKeys(t *testing.T) {
	store := NewStore(t.TempDir())

	bad := []struct{ project, stage string }{
		{"../escape", "dc_strings"},
		{"plant-a", "../../etc"},
		{"", "dc_strings"},
		{"plant-a", ""},
		{".", "dc_strings"},
		{"plant/a", "dc_strings"},
		{`plant\a`, "dc_strings"},
	}
	for _, tt := range bad {
		if _, err := store.Save(tt.project, tt.stage, "IEC", map[string]any{"x": 1}); err == nil {
			t.Errorf("Save(%q, %q) should reject path-like keys", tt.project, tt.stage)
		}
		if _, err := store.Load(tt.project, tt.stage); err == nil {
			t.Errorf("Load(%q, %q) should reject path-like keys", tt.project, tt.stage)
		}
	}
}
