package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// PDFGenerator renders plain-text clinical documents as PDF
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// Document is a text report plus the metadata printed above it. Body lines written in
// capitals become section headers.
type Document struct {
	Title       string
	UserID      string
	Period      string
	GeneratedAt time.Time
	Body        string
}

// Generate creates a PDF from the document
func (g *PDFGenerator) Generate(doc *Document) ([]byte, error) {
	g.logger.Info("generating PDF report",
		zap.String("user_id", doc.UserID),
		zap.String("period", doc.Period),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	g.addTitle(pdf, tr, doc)

	lines := strings.Split(doc.Body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case isRuler(trimmed):
			continue
		case i == 0 && strings.EqualFold(trimmed, doc.Title):
			continue
		case trimmed == "":
			pdf.Ln(3)
		case isHeading(trimmed):
			g.addSectionHeader(pdf, tr(trimmed))
		default:
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("PDF report generated successfully",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, tr func(string) string, doc *Document) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	pdf.SetFont("Arial", "", 12)
	if doc.UserID != "" {
		pdf.CellFormat(0, 8, fmt.Sprintf("Patient: %s", doc.UserID), "", 1, "L", false, 0, "")
	}
	if doc.Period != "" {
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("Period: %s", doc.Period)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

func isRuler(line string) bool {
	return line != "" && strings.Trim(line, "=-") == ""
}

// isHeading matches short capitalized lines; a trailing parenthetical may be lowercase
func isHeading(line string) bool {
	if len(line) > 60 || strings.HasSuffix(line, ".") || strings.Contains(line, ":") {
		return false
	}
	if i := strings.Index(line, "("); i > 0 {
		line = line[:i]
	}
	hasLetter := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
