// Package export provides functionality for exporting conductor sizing
// results to various file formats.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CableSizer/internal/model"
)

// statusColor represents an RGB color for a voltage-drop status.
type statusColor struct {
	R, G, B int
}

// statusColors maps each result status to its report color.
var statusColors = map[model.VoltageStatus]statusColor{
	model.StatusOK:        {R: 76, G: 175, B: 80},  // green
	model.StatusWarning:   {R: 255, G: 152, B: 0},  // orange
	model.StatusCritical:  {R: 244, G: 67, B: 54},  // red
	model.StatusNoSection: {R: 156, G: 39, B: 176}, // purple
	model.StatusError:     {R: 121, G: 85, B: 72},  // brown
	model.StatusFatal:     {R: 60, G: 60, B: 60},   // dark gray
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	tableRowH    = 6.0
	tableTop     = marginTop + headerHeight + 10.0
)

// ExportPDF generates a PDF report for a batch sizing run. The first page
// carries the run summary and configuration; the result table follows,
// paginating as needed.
func ExportPDF(path string, batch model.BatchResult, cfg model.CalculationConfig, class model.CircuitClass) error {
	if len(batch.Results) == 0 {
		return fmt.Errorf("no results to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	y := renderReportHeader(pdf, batch, cfg, class)
	renderResultTable(pdf, batch.Results, y)

	return pdf.OutputFileAndClose(path)
}

// renderReportHeader draws the title, run summary, and configuration block.
// Returns the y position where the result table should start.
func renderReportHeader(pdf *fpdf.Fpdf, batch model.BatchResult, cfg model.CalculationConfig, class model.CircuitClass) float64 {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Conductor Sizing Report - %s (%s)", class, cfg.Metadata.Normative)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+headerHeight, pageWidth-marginRight, marginTop+headerHeight)

	y := marginTop + headerHeight + 4

	summaryItems := []struct {
		label string
		value string
	}{
		{"Circuits", fmt.Sprintf("%d", batch.Total())},
		{"Sized", fmt.Sprintf("%d", batch.SuccessCount)},
		{"Failed", fmt.Sprintf("%d", batch.ErrorCount)},
		{"Panel", fmt.Sprintf("%s (Isc %.2f A)", cfg.Panel.Model, cfg.Panel.IscA)},
		{"Material", cfg.Cable.Material},
		{"Ambient", fmt.Sprintf("%.1f \xb0C", cfg.EffectiveAmbientC())},
		{"Max drop", fmt.Sprintf("%.2f%% of %.0f V", cfg.VoltageDrop.MaxPercent, cfg.VoltageDrop.ReferenceVoltageV)},
		{"Installation", fmt.Sprintf("%s / %s", cfg.Installation.Method, cfg.Installation.Layout)},
	}

	pdf.SetFont("Helvetica", "", 9)
	xPos := marginLeft
	for _, item := range summaryItems {
		text := fmt.Sprintf("%s: %s", item.label, item.value)
		textW := pdf.GetStringWidth(text) + 8
		if xPos+textW > pageWidth-marginRight {
			y += 5
			xPos = marginLeft
		}
		pdf.SetXY(xPos, y)
		pdf.CellFormat(textW, 5, text, "", 0, "L", false, 0, "")
		xPos += textW
	}
	y += 7

	if cfg.Metadata.OverridesApplied {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.SetXY(marginLeft, y)
		note := fmt.Sprintf("Project overrides applied: %s (project %s, stage %s)",
			joinSections(cfg.Metadata.OverriddenSections), cfg.Metadata.ProjectID, cfg.Metadata.Stage)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, note, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		y += 6
	}

	return y + 2
}

// renderResultTable draws the per-circuit table starting at y, adding pages
// as rows overflow.
func renderResultTable(pdf *fpdf.Fpdf, results []model.CircuitResult, y float64) {
	colWidths := []float64{38, 22, 22, 24, 26, 26, 24, 24, 24, 28}
	headers := []string{"Circuit", "Length m", "I nom A", "I corr A", "S theor mm²", "S comm mm²", "Drop V", "Drop %", "Losses W", "Status"}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		pdf.SetTextColor(0, 0, 0)
		xPos := marginLeft
		for i, header := range headers {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[i], tableRowH, header, "1", 0, "C", true, 0, "")
			xPos += colWidths[i]
		}
		y += tableRowH
	}

	drawHeader()
	pdf.SetFont("Helvetica", "", 8)

	for i, r := range results {
		if y+tableRowH > pageHeight-marginBottom {
			pdf.AddPage()
			y = marginTop
			drawHeader()
			pdf.SetFont("Helvetica", "", 8)
		}

		rowData := []string{
			r.ID,
			fmt.Sprintf("%.2f", r.TotalLengthM),
			fmt.Sprintf("%.2f", r.NominalCurrentA),
			fmt.Sprintf("%.2f", r.CorrectedCurrentA),
			fmt.Sprintf("%.3f", r.TheoreticalSectionMm2),
			formatOptional(r.CommercialSectionMm2, "%.1f"),
			formatOptional(r.VoltageDropV, "%.3f"),
			formatOptional(r.VoltageDropPct, "%.3f"),
			formatOptional(r.JouleLossesW, "%.2f"),
			string(r.VoltageStatus),
		}
		if r.VoltageStatus.IsFailure() {
			rowData = []string{r.ID, "-", "-", "-", "-", "-", "-", "-", "-", string(r.VoltageStatus)}
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos := marginLeft
		for j, cell := range rowData {
			align := "C"
			if j == 0 {
				align = "L"
			}
			if j == len(rowData)-1 {
				col := statusColors[r.VoltageStatus]
				pdf.SetTextColor(col.R, col.G, col.B)
				pdf.SetFont("Helvetica", "B", 8)
			}
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], tableRowH, cell, "1", 0, align, true, 0, "")
			xPos += colWidths[j]
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
		y += tableRowH
	}

	renderFailureNotes(pdf, results, y+4)
}

// renderFailureNotes lists the error text of failed rows below the table.
func renderFailureNotes(pdf *fpdf.Fpdf, results []model.CircuitResult, y float64) {
	var failed []model.CircuitResult
	for _, r := range results {
		if r.VoltageStatus.IsFailure() {
			failed = append(failed, r)
		}
	}
	if len(failed) == 0 {
		return
	}

	if y+8+float64(len(failed))*5 > pageHeight-marginBottom {
		pdf.AddPage()
		y = marginTop
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 6, "Failed circuits", "", 0, "L", false, 0, "")
	y += 7

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range failed {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight-5, 4, fmt.Sprintf("- %s: %s", r.ID, r.Error), "", 0, "L", false, 0, "")
		y += 5
	}
}

// formatOptional renders a pointer value or a dash when absent.
func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// joinSections renders a section list for the overrides note.
func joinSections(sections []string) string {
	if len(sections) == 0 {
		return "(none)"
	}
	out := ""
	for i, s := range sections {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
