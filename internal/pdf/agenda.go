package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"
)

// AgendaRow is one appointment line of the printed day agenda.
type AgendaRow struct {
	Start        string // HH:MM
	End          string // HH:MM
	Client       string
	Professional string
	Status       string
	Notes        string
}

// Agenda is the printable agenda of one day.
type Agenda struct {
	Organization string
	Date         string // dd/mm/yyyy
	// Hours is the opening window line ("08:00-20:00", "closed: Festivo").
	Hours string
	Rows  []AgendaRow
	// LinkURL, when set, is printed as a QR code so the agenda can be opened on a phone.
	LinkURL string
}

var columnWidths = []float64{18, 18, 58, 46, 40}

// BuildAgendaPDF renders the agenda as an A4 portrait table.
func BuildAgendaPDF(a Agenda) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Agenda %s", a.Date), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(a.Organization), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Agenda "+a.Date), "", 1, "L", false, 0, "")
	if a.Hours != "" {
		pdf.CellFormat(0, 6, tr(a.Hours), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := []string{"Start", "End", "Client", "Professional", "Status"}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(columnWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(a.Rows) == 0 {
		pdf.CellFormat(sum(columnWidths), 7, "No appointments", "1", 1, "C", false, 0, "")
	}
	for _, r := range a.Rows {
		cells := []string{r.Start, r.End, r.Client, r.Professional, r.Status}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], 7, tr(fit(pdf, c, columnWidths[i]-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		if strings.TrimSpace(r.Notes) != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(sum(columnWidths), 5, tr(r.Notes), "LRB", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
	}

	if a.LinkURL != "" {
		png, err := qrcode.Encode(a.LinkURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("agenda qr: %w", err)
		}
		pdf.Ln(6)
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("agenda-qr", opt, bytes.NewReader(png))
		pdf.ImageOptions("agenda-qr", 15, pdf.GetY(), 28, 28, false, opt, 0, "")
		pdf.SetY(pdf.GetY() + 30)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, a.LinkURL, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit truncates s with "..." so it fits in width mm at the current font.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}
