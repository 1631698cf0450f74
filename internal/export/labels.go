// Package export provides functionality for exporting conductor sizing
// results to various file formats including QR-coded circuit labels.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/CableSizer/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each circuit label's QR code.
type LabelInfo struct {
	CircuitID  string  `json:"circuit_id"`
	Class      string  `json:"class"`
	Normative  string  `json:"normative"`
	SectionMm2 float64 `json:"section_mm2"`
	LengthM    float64 `json:"length_m"`
	DropPct    float64 `json:"drop_pct"`
	Status     string  `json:"status"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels for all successfully
// sized circuits. Each label carries the circuit id, selected section, and
// a QR code encoding the sizing metadata as JSON. Labels are laid out on a
// standard label sheet format (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, batch model.BatchResult, class model.CircuitClass) error {
	labels := CollectLabelInfos(batch, class)
	if len(labels) == 0 {
		return fmt.Errorf("no sized circuits to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		// Add new page when needed
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.CircuitID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, idx int, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	// Generate QR code PNG bytes
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Register QR image with a unique name
	imgName := fmt.Sprintf("qr_%d_%s", idx, info.CircuitID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Circuit id (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	// Truncate id if too long
	circuitID := info.CircuitID
	if pdf.GetStringWidth(circuitID) > textW {
		for len(circuitID) > 0 && pdf.GetStringWidth(circuitID+"...") > textW {
			circuitID = circuitID[:len(circuitID)-1]
		}
		circuitID += "..."
	}
	pdf.CellFormat(textW, 4.5, circuitID, "", 1, "L", false, 0, "")

	// Section and length
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.1f mm² / %.1f m", info.SectionMm2, info.LengthM)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	// Normative and drop info
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	runInfo := fmt.Sprintf("%s | drop %.2f%%", info.Normative, info.DropPct)
	pdf.CellFormat(textW, 3, runInfo, "", 1, "L", false, 0, "")

	// Status indicator for non-OK circuits
	if info.Status != string(model.StatusOK) {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "B", 6)
		col := statusColors[model.VoltageStatus(info.Status)]
		pdf.SetTextColor(col.R, col.G, col.B)
		pdf.CellFormat(textW, 3, info.Status, "", 0, "L", false, 0, "")
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label information from a batch result,
// skipping rows that could not be sized to a commercial section.
func CollectLabelInfos(batch model.BatchResult, class model.CircuitClass) []LabelInfo {
	var labels []LabelInfo
	for _, r := range batch.Results {
		if r.VoltageStatus.IsFailure() || r.CommercialSectionMm2 == nil {
			continue
		}
		dropPct := 0.0
		if r.VoltageDropPct != nil {
			dropPct = *r.VoltageDropPct
		}
		labels = append(labels, LabelInfo{
			CircuitID:  r.ID,
			Class:      string(class),
			Normative:  r.Normative,
			SectionMm2: *r.CommercialSectionMm2,
			LengthM:    r.TotalLengthM,
			DropPct:    dropPct,
			Status:     string(r.VoltageStatus),
		})
	}
	return labels
}
