// README: PDF rendering for raw itinerary text and structured itineraries.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"itinerary/internal/modules/itinerary"
)

const (
	fontFamily = "Helvetica"
	lineHeight = 6.0
)

// Renderer produces A4 PDFs. It holds no state between calls.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// TextPDF renders previously generated plain text under title.
func (r *Renderer) TextPDF(text, title string) ([]byte, string, error) {
	if strings.TrimSpace(title) == "" {
		title = "Itinerary"
	}
	pdf, tr := r.newDocument(title)

	pdf.SetFont(fontFamily, "", 11)
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(para) == "" {
			pdf.Ln(lineHeight / 2)
			continue
		}
		if looksLikeHeading(para) {
			pdf.SetFont(fontFamily, "B", 12)
			pdf.MultiCell(0, lineHeight+1, tr(strings.TrimSpace(para)), "", "", false)
			pdf.SetFont(fontFamily, "", 11)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(para), "", "", false)
	}
	return output(pdf, title)
}

// ItineraryPDF renders a structured itinerary day by day.
func (r *Renderer) ItineraryPDF(it itinerary.Itinerary) ([]byte, string, error) {
	title := it.Destination
	if strings.TrimSpace(title) == "" {
		title = "Itinerary"
	}
	pdf, tr := r.newDocument(title)
	currency := it.UserPreferences.Currency()

	pdf.SetFont(fontFamily, "", 11)
	if it.StartDate != "" {
		dates := it.StartDate
		if it.EndDate != "" && it.EndDate != it.StartDate {
			dates += " to " + it.EndDate
		}
		pdf.CellFormat(0, lineHeight, tr("Dates: "+dates), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Estimated cost: %s", money(it.EstimatedCost, currency))), "", 1, "", false, 0, "")
	if it.TotalBudget > 0 {
		pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("Budget: %s", money(it.TotalBudget, currency))), "", 1, "", false, 0, "")
	}

	for _, day := range it.Days {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 14)
		heading := fmt.Sprintf("Day %d", day.DayNumber)
		if day.Date != "" {
			heading += " - " + day.Date
		}
		pdf.CellFormat(0, 8, tr(heading), "B", 1, "", false, 0, "")
		if day.Notes != "" {
			pdf.SetFont(fontFamily, "I", 10)
			pdf.MultiCell(0, lineHeight, tr(day.Notes), "", "", false)
		}

		for _, a := range day.Activities {
			pdf.SetFont(fontFamily, "B", 11)
			pdf.MultiCell(0, lineHeight, tr(fmt.Sprintf("%s-%s  %s (%s)", a.StartTime, a.EndTime, a.Name, a.Type)), "", "", false)
			pdf.SetFont(fontFamily, "", 10)
			pdf.MultiCell(0, lineHeight-1, tr(fmt.Sprintf("%s, %s", a.Location.Name, a.Location.Address)), "", "", false)
			meta := fmt.Sprintf("%d min, %s", a.Duration, money(a.Cost, currency))
			if a.Rating != nil {
				meta += fmt.Sprintf(", rated %.1f/5", *a.Rating)
			}
			pdf.MultiCell(0, lineHeight-1, tr(meta), "", "", false)
			if a.Description != "" {
				pdf.MultiCell(0, lineHeight-1, tr(a.Description), "", "", false)
			}
			if a.Notes != "" {
				pdf.SetFont(fontFamily, "I", 10)
				pdf.MultiCell(0, lineHeight-1, tr("Note: "+a.Notes), "", "", false)
			}
			pdf.Ln(2)
		}

		pdf.SetFont(fontFamily, "", 10)
		summary := fmt.Sprintf("Day total: %s", money(day.TotalCost, currency))
		if day.TotalTravelTime > 0 {
			summary += fmt.Sprintf(", travel time %d min", day.TotalTravelTime)
		}
		pdf.CellFormat(0, lineHeight, tr(summary), "", 1, "R", false, 0, "")
	}
	return output(pdf, title)
}

func (r *Renderer) newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreator("itinerary", false)
	pdf.SetCreationDate(r.now())
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(0, 10, tr(title), "", "", false)
	pdf.Ln(2)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf, title string) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), Filename(title), nil
}

func looksLikeHeading(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "day ") && len(l) < 60
}

func money(v float64, currency string) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%s %d", currency, int64(v))
	}
	return fmt.Sprintf("%s %.2f", currency, v)
}
