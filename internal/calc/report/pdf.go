package report

import (
	"fmt"
	"io"
	"strings"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"

	"github.com/ansel1/merry"
	"github.com/phpdave11/gofpdf"
)

const footerText = "Confidential - internal use"

// sanitize replaces characters the core PDF fonts cannot encode.
var sanitize = strings.NewReplacer(
	"—", "-", "–", "-", "‘", "'", "’", "'", "“", `"`, "”", `"`,
	"√", "sqrt", "Σ", "Sum", "≈", "~", "≤", "<=", "≥", ">=", "ρ", "rho",
	"ᵢ", "i", "₀", "0", "₁", "1", "₂", "2", "₃", "3", "₄", "4",
	"₅", "5", "₆", "6", "₇", "7", "₈", "8", "₉", "9",
)

type column struct {
	title string
	width float64
	align string
}

var lineColumns = []column{
	{"Parameter", 62, "L"},
	{"Value", 26, "R"},
	{"Unit", 24, "C"},
	{"Range", 40, "C"},
	{"Verdict", 38, "C"},
}

var energyColumns = []column{
	{"Parameter", 62, "L"},
	{"Value", 26, "R"},
	{"Unit", 24, "C"},
	{"Formula", 78, "L"},
}

// Render writes lab as an A4 PDF.
func Render(w io.Writer, lab *Lab) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(sanitize.Replace(s)) }

	title := lab.Title
	if title == "" {
		title = lab.Module
	}
	pdf.SetTitle("LTS Laboratory - "+title, true)
	pdf.SetAuthor(lab.Operator, true)
	pdf.SetCreationDate(lab.Time)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 15)
		pdf.CellFormat(0, 9, text("LTS Laboratory - "+title), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(95, 5, text("Date: "+lab.Time.Format("2006-01-02 15:04")), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 5, text("Operator: "+lab.Operator), "", 1, "R", false, 0, "")
		pdf.CellFormat(95, 5, text("Module: "+lab.Module), "B", 0, "L", false, 0, "")
		pdf.CellFormat(95, 5, "Report: "+lab.ID, "B", 1, "R", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(95, 10, footerText, "T", 0, "L", false, 0, "")
		pdf.CellFormat(95, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "T", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	if len(lab.Lines) > 0 {
		section(pdf, "Results")
		tableHeader(pdf, lineColumns)
		for _, l := range lab.Lines {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(0, 0, 0)
			cells := []string{l.Name, formatValue(l.Value), l.Unit, formatRange(l.Min, l.Max)}
			for i, s := range cells {
				pdf.CellFormat(lineColumns[i].width, 7, text(s), "1", 0, lineColumns[i].align, false, 0, "")
			}
			r, g, b := verdictColor(l.Verdict)
			pdf.SetTextColor(r, g, b)
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(lineColumns[4].width, 7, l.Verdict.Label(), "1", 1, "C", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
		s := check.Summarize(lab.Lines)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Ln(2)
		pdf.CellFormat(0, 5, fmt.Sprintf("Compliant: %d   Non-compliant: %d   N/A: %d",
			s.Compliant, s.NonCompliant, s.NotApplicable), "", 1, "L", false, 0, "")
		pdf.Ln(4)
	}

	if lab.Gas != nil {
		renderGas(pdf, text, lab.Gas)
	}

	section(pdf, "Observations")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, text(lab.observations()), "", "L", false)

	if pdf.Err() {
		return merry.Prepend(pdf.Error(), "render report")
	}
	return merry.Wrap(pdf.Output(w))
}

func renderGas(pdf *gofpdf.Fpdf, text func(string) string, rep *gas.Report) {
	section(pdf, "Composition")
	pdf.SetFont("Helvetica", "", 10)
	for _, sym := range rep.Composition.SortedSymbols() {
		pdf.CellFormat(40, 6, text(sym), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.4f %%", rep.Composition.Fractions[sym]*100), "1", 1, "R", false, 0, "")
	}
	pdf.CellFormat(40, 6, "Total recognized", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, fmt.Sprintf("%.2f %%", rep.Composition.TotalPercent), "1", 1, "R", false, 0, "")
	for _, warning := range rep.Warnings {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, text(warning), "", "L", false)
	}
	pdf.Ln(4)

	section(pdf, "Energy parameters")
	tableHeader(pdf, energyColumns)
	pdf.SetFont("Helvetica", "", 10)
	for _, f := range rep.Fields {
		cells := []string{f.Label, fmt.Sprintf("%.*f", f.Decimals, f.Value), f.Unit, f.Formula}
		for i, s := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			pdf.CellFormat(energyColumns[i].width, 7, text(s), "1", ln, energyColumns[i].align, false, 0, "")
		}
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range rep.Fields {
		pdf.MultiCell(0, 4.5, text(f.Label+": "+f.Explanation), "", "L", false)
	}
	if rep.Notes != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(0, 4.5, text(rep.Notes), "", "L", false)
	}
	pdf.Ln(4)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func tableHeader(pdf *gofpdf.Fpdf, cols []column) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(225, 230, 238)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 7, c.title, "1", ln, "C", true, 0, "")
	}
}

func verdictColor(v check.Verdict) (int, int, int) {
	switch v {
	case check.Compliant:
		return 0, 128, 0
	case check.NonCompliant:
		return 200, 0, 0
	default:
		return 120, 120, 120
	}
}
