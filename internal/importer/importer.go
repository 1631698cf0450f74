// Package importer provides CSV and Excel import functionality for
// circuit tables. It supports automatic delimiter detection, flexible
// column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CableSizer/internal/model"
)

// Worksheet names used by the project workbook layout.
const (
	SheetStringCircuits = "dc_string_circuits"
	SheetCN1Circuits    = "dc_cn1_circuits"
	SheetACCircuits     = "ac_circuits"
	SheetMVCircuits     = "mv_circuits"
)

// ImportResult holds the results of an import operation. Row-level
// problems land in Errors/Warnings; they never abort the import.
type ImportResult struct {
	Rows     []model.CircuitRow
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID        int
	LengthPos int
	LengthNeg int
	CN1       int
	Inverter  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"id":         {"id", "string_id", "circuit_id", "string", "circuit", "name"},
	"length_pos": {"length_pos_m", "length_pos", "l_pos", "length positive", "positive length", "pos_m"},
	"length_neg": {"length_neg_m", "length_neg", "l_neg", "length negative", "negative length", "neg_m"},
	"cn1":        {"cn1_id", "cn1", "combiner", "combiner_id", "combiner box", "box_id"},
	"inverter":   {"inverter_id", "inverter", "inv", "inv_id"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the first row
		// Only consider delimiters that produce more than 1 column
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column role.
// Returns the mapping and true if a header was detected, or a default positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		ID:        -1,
		LengthPos: -1,
		LengthNeg: -1,
		CN1:       -1,
		Inverter:  -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "id":
						if mapping.ID == -1 {
							mapping.ID = i
						}
					case "length_pos":
						if mapping.LengthPos == -1 {
							mapping.LengthPos = i
						}
					case "length_neg":
						if mapping.LengthNeg == -1 {
							mapping.LengthNeg = i
						}
					case "cn1":
						if mapping.CN1 == -1 {
							mapping.CN1 = i
						}
					case "inverter":
						if mapping.Inverter == -1 {
							mapping.Inverter = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: ID, LengthPos, LengthNeg, CN1, Inverter
		return ColumnMapping{
			ID:        0,
			LengthPos: 1,
			LengthNeg: 2,
			CN1:       3,
			Inverter:  4,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a CircuitRow from a row using the given column mapping.
// Returns the row, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.CircuitRow, string, string) {
	var warning string

	id := getCell(row, mapping.ID)
	if id == "" {
		id = uuid.New().String()[:8]
		warning = fmt.Sprintf("%s: Missing circuit id, generated '%s'", rowLabel, id)
	}

	posStr := getCell(row, mapping.LengthPos)
	if posStr == "" {
		return model.CircuitRow{}, fmt.Sprintf("%s: Missing positive length value", rowLabel), ""
	}
	lengthPos, err := strconv.ParseFloat(posStr, 64)
	if err != nil {
		return model.CircuitRow{}, fmt.Sprintf("%s: Invalid positive length '%s'", rowLabel, posStr), ""
	}

	negStr := getCell(row, mapping.LengthNeg)
	if negStr == "" {
		return model.CircuitRow{}, fmt.Sprintf("%s: Missing negative length value", rowLabel), ""
	}
	lengthNeg, err := strconv.ParseFloat(negStr, 64)
	if err != nil {
		return model.CircuitRow{}, fmt.Sprintf("%s: Invalid negative length '%s'", rowLabel, negStr), ""
	}

	if lengthPos <= 0 || lengthNeg <= 0 {
		return model.CircuitRow{}, fmt.Sprintf("%s: Lengths must be positive", rowLabel), ""
	}

	return model.CircuitRow{
		ID:         id,
		LengthPosM: lengthPos,
		LengthNegM: lengthNeg,
		CN1ID:      getCell(row, mapping.CN1),
		InverterID: getCell(row, mapping.Inverter),
	}, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports circuit rows from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	result = importFromRows(records, "Line", result.Warnings)
	return result
}

// ImportCSVFromReader imports circuit rows from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports circuit rows from an Excel (.xlsx) workbook sheet.
// An empty sheet name selects the first sheet of the workbook.
func ImportExcel(path, sheet string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	if sheet == "" {
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read sheet '%s': %v", sheet, err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Sheet '%s' is empty", sheet))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into circuit rows.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		// Validate that required columns were found
		missing := []string{}
		if mapping.LengthPos == -1 {
			missing = append(missing, "length_pos_m")
		}
		if mapping.LengthNeg == -1 {
			missing = append(missing, "length_neg_m")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else {
		// No header: check if first row is numeric (positional mapping)
		if len(rows[0]) >= 3 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
				// First column after the id is not numeric - might be an unrecognized
				// header. Skip it as a header but use positional mapping.
				startRow = 1
				result.Warnings = append(result.Warnings, "Detected header row, skipping")
			}
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		circuit, errMsg, warning := parseRow(row, mapping, rowLabel)

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Rows = append(result.Rows, circuit)
	}

	return result
}
