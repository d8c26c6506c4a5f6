package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"example.com/mavgate/internal/rules"
)

// SaveLinkReportPDF renders the link report into a PDF document. When digest
// is non-empty a QR code of the capture digest is embedded so the printed
// report can be matched back to its capture file.
func SaveLinkReportPDF(rep rules.LinkReport, digest string, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Link Quality Report", false)
	pdf.SetAuthor("mavctl", false)
	pdf.SetCreator("mavctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Link Quality Report")
	addSummarySection(pdf, rep)
	addStatsSection(pdf, rep.Stats)
	addFindingsSection(pdf, rep.Findings)
	if digest != "" {
		addDigestSection(pdf, CaptureRef{
			Digest:   digest,
			Messages: rep.Stats.Messages,
			Pass:     rep.Summary.Pass,
		})
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, rep rules.LinkReport) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Total Findings", value: strconv.Itoa(rep.Summary.Total)},
		{label: "Errors", value: strconv.Itoa(rep.Summary.Errors)},
		{label: "Warnings", value: strconv.Itoa(rep.Summary.Warnings)},
		{label: "Overall", value: passLabel(rep.Summary.Pass)},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addStatsSection(pdf *gofpdf.Fpdf, stats rules.StreamStats) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Stream Statistics")
	pdf.Ln(9)

	headers := []string{"Messages", "CRC Failures", "Unknown Ids", "Sequence Gaps"}
	widths := []float64{45, 45, 45, 45}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	values := []string{
		strconv.Itoa(stats.Messages),
		strconv.Itoa(stats.CRCFailures),
		strconv.Itoa(stats.UnknownIDs),
		strconv.Itoa(stats.SequenceGaps),
	}
	for i, v := range values {
		pdf.CellFormat(widths[i], 7, v, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, findings []rules.Diagnostic) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No findings recorded.", "", "L", false)
		return
	}

	for i, d := range findings {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s (%s)", i+1, d.RuleId, severityLabel(d.Severity))
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(d.Message); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}

		meta := findingMetadata(d)
		if meta != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, meta, "", "L", false)
		}

		if len(d.Refs) > 0 {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 4, "Refs: "+strings.Join(d.Refs, ", "), "", "L", false)
		}

		pdf.Ln(2)
	}
}

func addDigestSection(pdf *gofpdf.Fpdf, ref CaptureRef) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Capture Digest")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 4, ref.Digest, "", "L", false)

	png, err := ref.EncodeQR(256)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("capture-ref-qr", opts, strings.NewReader(string(png)))
	pdf.ImageOptions("capture-ref-qr", pdf.GetX(), pdf.GetY()+2, 35, 35, false, opts, 0, "")
	pdf.Ln(40)
}

func passLabel(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func severityLabel(sev rules.Severity) string {
	if s := strings.TrimSpace(string(sev)); s != "" {
		return s
	}
	return "UNKNOWN"
}

func findingMetadata(d rules.Diagnostic) string {
	parts := make([]string, 0, 5)
	if !d.Ts.IsZero() {
		parts = append(parts, d.Ts.Format(time.RFC3339))
	}
	if d.File != "" {
		parts = append(parts, d.File)
	}
	if d.SystemId != 0 || d.ComponentId != 0 {
		parts = append(parts, fmt.Sprintf("System %d Component %d", d.SystemId, d.ComponentId))
	}
	if d.MessageName != "" {
		parts = append(parts, d.MessageName)
	}
	if d.MessageIndex != 0 {
		parts = append(parts, fmt.Sprintf("Message %d", d.MessageIndex))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " / ")
}
