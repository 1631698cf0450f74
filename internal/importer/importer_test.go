package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("string_id,length_pos_m,length_neg_m,cn1_id\nST-001,40,40,CN1-01\nST-002,55,55,CN1-01\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("string_id;length_pos_m;length_neg_m;cn1_id\nST-001;40;40;CN1-01\nST-002;55;55;CN1-01\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("string_id\tlength_pos_m\tlength_neg_m\nST-001\t40\t40\nST-002\t55\t55\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("string_id|length_pos_m|length_neg_m\nST-001|40|40\nST-002|55|55\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"string_id", "length_pos_m", "length_neg_m", "cn1_id", "inverter_id"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.ID != 0 {
		t.Errorf("expected ID at 0, got %d", mapping.ID)
	}
	if mapping.LengthPos != 1 {
		t.Errorf("expected LengthPos at 1, got %d", mapping.LengthPos)
	}
	if mapping.LengthNeg != 2 {
		t.Errorf("expected LengthNeg at 2, got %d", mapping.LengthNeg)
	}
	if mapping.CN1 != 3 {
		t.Errorf("expected CN1 at 3, got %d", mapping.CN1)
	}
	if mapping.Inverter != 4 {
		t.Errorf("expected Inverter at 4, got %d", mapping.Inverter)
	}
}

func TestDetectColumns_CaseInsensitive(t *testing.T) {
	row := []string{"STRING_ID", "LENGTH_POS_M", "LENGTH_NEG_M", "CN1_ID"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.ID != 0 {
		t.Errorf("expected ID at 0, got %d", mapping.ID)
	}
	if mapping.LengthPos != 1 {
		t.Errorf("expected LengthPos at 1, got %d", mapping.LengthPos)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	row := []string{"circuit_id", "l_pos", "l_neg", "combiner", "inv"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.ID != 0 {
		t.Errorf("expected ID at 0, got %d", mapping.ID)
	}
	if mapping.LengthPos != 1 {
		t.Errorf("expected LengthPos at 1, got %d", mapping.LengthPos)
	}
	if mapping.LengthNeg != 2 {
		t.Errorf("expected LengthNeg at 2, got %d", mapping.LengthNeg)
	}
	if mapping.CN1 != 3 {
		t.Errorf("expected CN1 at 3, got %d", mapping.CN1)
	}
	if mapping.Inverter != 4 {
		t.Errorf("expected Inverter at 4, got %d", mapping.Inverter)
	}
}

func TestDetectColumns_ReorderedColumns(t *testing.T) {
	row := []string{"inverter_id", "length_neg_m", "length_pos_m", "string_id"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Inverter != 0 {
		t.Errorf("expected Inverter at 0, got %d", mapping.Inverter)
	}
	if mapping.LengthNeg != 1 {
		t.Errorf("expected LengthNeg at 1, got %d", mapping.LengthNeg)
	}
	if mapping.LengthPos != 2 {
		t.Errorf("expected LengthPos at 2, got %d", mapping.LengthPos)
	}
	if mapping.ID != 3 {
		t.Errorf("expected ID at 3, got %d", mapping.ID)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	row := []string{"ST-001", "40", "40", "CN1-01"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("expected no header detection for data row")
	}
	// Should fall back to positional
	if mapping.ID != 0 || mapping.LengthPos != 1 || mapping.LengthNeg != 2 || mapping.CN1 != 3 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m,cn1_id,inverter_id\nST-001,40,40,CN1-01,INV-1\nST-002,55.5,54.5,CN1-02,INV-1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}

	if result.Rows[0].ID != "ST-001" {
		t.Errorf("expected id 'ST-001', got '%s'", result.Rows[0].ID)
	}
	if result.Rows[0].LengthPosM != 40 {
		t.Errorf("expected positive length 40, got %f", result.Rows[0].LengthPosM)
	}
	if result.Rows[0].LengthNegM != 40 {
		t.Errorf("expected negative length 40, got %f", result.Rows[0].LengthNegM)
	}
	if result.Rows[0].CN1ID != "CN1-01" {
		t.Errorf("expected CN1ID 'CN1-01', got '%s'", result.Rows[0].CN1ID)
	}
	if result.Rows[0].InverterID != "INV-1" {
		t.Errorf("expected InverterID 'INV-1', got '%s'", result.Rows[0].InverterID)
	}

	if result.Rows[1].LengthPosM != 55.5 {
		t.Errorf("expected positive length 55.5, got %f", result.Rows[1].LengthPosM)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "ST-001,40,40,CN1-01\nST-002,55,55,CN1-01\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
	if result.Rows[0].ID != "ST-001" {
		t.Errorf("expected id 'ST-001', got '%s'", result.Rows[0].ID)
	}
	if result.Rows[0].LengthPosM != 40 {
		t.Errorf("expected positive length 40, got %f", result.Rows[0].LengthPosM)
	}
}

func TestImportCSVFromReader_SemicolonDelimiter(t *testing.T) {
	data := "string_id;length_pos_m;length_neg_m\nST-001;40;40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ';')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
	if result.Rows[0].ID != "ST-001" {
		t.Errorf("expected id 'ST-001', got '%s'", result.Rows[0].ID)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	data := ""
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

func TestImportCSVFromReader_InvalidLength(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nST-001,abc,40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for invalid length")
	}
	if len(result.Rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(result.Rows))
	}
}

func TestImportCSVFromReader_NegativeLength(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nST-001,-40,40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for negative length")
	}
}

func TestImportCSVFromReader_MissingLength(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nST-001,,40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for missing positive length")
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nGood,40,40\nBad,abc,40\nAlsoGood,55,55\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 2 {
		t.Errorf("expected 2 valid rows, got %d", len(result.Rows))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nST-001,40,40\n\n\nST-002,55,55\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 2 {
		t.Errorf("expected 2 rows (skipping empty rows), got %d (errors: %v)", len(result.Rows), result.Errors)
	}
}

func TestImportCSVFromReader_GeneratedID(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\n,40,40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
	if result.Rows[0].ID == "" {
		t.Error("expected generated id for missing circuit id")
	}
	hasWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Missing circuit id") {
			hasWarning = true
		}
	}
	if !hasWarning {
		t.Errorf("expected missing-id warning, got: %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "string_id,length_pos_m,cn1_id\nST-001,40,CN1-01\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) == 0 {
		t.Error("expected error for missing length_neg_m column")
	}
	foundMissing := false
	for _, e := range result.Errors {
		if strings.Contains(e, "Required columns not found") {
			foundMissing = true
		}
	}
	if !foundMissing {
		t.Errorf("expected 'Required columns not found' error, got: %v", result.Errors)
	}
}

// ─── CSV File Import Tests ──────────────────────────────────

func TestImportCSV_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "circuits.csv")
	content := "string_id,length_pos_m,length_neg_m,cn1_id\nST-001,40,40,CN1-01\nST-002,55,55,CN1-01\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "circuits.csv")
	content := "string_id;length_pos_m;length_neg_m\nST-001;40;40\nST-002;55;55\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d (errors: %v)", len(result.Rows), result.Errors)
	}

	// Should have a warning about semicolon delimiter
	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/path/file.csv")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "circuits.xlsx")

	f := excelize.NewFile()
	if sheet != "" {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			t.Fatalf("failed to create sheet: %v", err)
		}
		f.SetActiveSheet(idx)
	} else {
		sheet = f.GetSheetName(0)
	}

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, "", [][]interface{}{
		{"string_id", "length_pos_m", "length_neg_m", "cn1_id", "inverter_id"},
		{"ST-001", 40, 40, "CN1-01", "INV-1"},
		{"ST-002", 55, 55, "CN1-02", "INV-1"},
	})

	result := ImportExcel(path, "")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}

	if result.Rows[0].ID != "ST-001" {
		t.Errorf("expected 'ST-001', got '%s'", result.Rows[0].ID)
	}
	if result.Rows[0].LengthPosM != 40 {
		t.Errorf("expected positive length 40, got %f", result.Rows[0].LengthPosM)
	}
	if result.Rows[0].CN1ID != "CN1-01" {
		t.Errorf("expected 'CN1-01', got '%s'", result.Rows[0].CN1ID)
	}
}

func TestImportExcel_NamedSheet(t *testing.T) {
	path := createTestExcel(t, SheetStringCircuits, [][]interface{}{
		{"string_id", "length_pos_m", "length_neg_m"},
		{"ST-001", 40, 40},
	})

	result := ImportExcel(path, SheetStringCircuits)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Rows))
	}
}

func TestImportExcel_MissingSheet(t *testing.T) {
	path := createTestExcel(t, "", [][]interface{}{
		{"string_id", "length_pos_m", "length_neg_m"},
		{"ST-001", 40, 40},
	})

	result := ImportExcel(path, "no_such_sheet")

	if len(result.Errors) == 0 {
		t.Error("expected error for missing sheet")
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/file.xlsx", "")

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportExcel_InvalidData(t *testing.T) {
	path := createTestExcel(t, "", [][]interface{}{
		{"string_id", "length_pos_m", "length_neg_m"},
		{"ST-001", "abc", 40},
	})

	result := ImportExcel(path, "")

	if len(result.Errors) == 0 {
		t.Error("expected error for invalid length")
	}
}

// ─── Edge Cases ────────────────────────────────────────────

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 0 {
		t.Errorf("expected 0 rows for header-only file, got %d", len(result.Rows))
	}
}

func TestImportCSVFromReader_WhitespaceInValues(t *testing.T) {
	data := "string_id , length_pos_m , length_neg_m\n ST-001 , 40 , 40 \n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
	if result.Rows[0].LengthPosM != 40 {
		t.Errorf("expected positive length 40, got %f", result.Rows[0].LengthPosM)
	}
}

func TestImportCSVFromReader_DecimalValues(t *testing.T) {
	data := "string_id,length_pos_m,length_neg_m\nST-001,40.5,39.25\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d (errors: %v)", len(result.Rows), result.Errors)
	}
	if result.Rows[0].LengthPosM != 40.5 {
		t.Errorf("expected positive length 40.5, got %f", result.Rows[0].LengthPosM)
	}
	if result.Rows[0].LengthNegM != 39.25 {
		t.Errorf("expected negative length 39.25, got %f", result.Rows[0].LengthNegM)
	}
}
