package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/warp/deposit-engine/generic"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// pdfReport draws a run with the core fonts. Text goes through a cp1252
// translator so currency symbols such as the euro sign survive.
type pdfReport struct {
	pdf     *fpdf.Fpdf
	tr      func(string) string
	run     generic.Run
	entries []generic.Entry
}

// PDF renders the run, its per-instrument totals, its advisories and the
// full ledger as an A4 document.
func PDF(run generic.Run, entries []generic.Entry) ([]byte, error) {
	r := &pdfReport{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		run:     run,
		entries: entries,
	}
	r.tr = r.pdf.UnicodeTranslatorFromDescriptor("")
	r.pdf.SetMargins(marginLeft, marginTop, marginRight)
	r.pdf.SetAutoPageBreak(true, marginBottom)
	r.pdf.AliasNbPages("")
	r.pdf.SetFooterFunc(func() {
		r.pdf.SetY(-15)
		r.pdf.SetFont("Arial", "I", 8)
		r.pdf.SetTextColor(120, 120, 120)
		r.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", r.pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	r.addSummaryPage()
	r.addInstrumentsPage()
	r.addLedgerPages()

	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfReport) heading(text string) {
	r.pdf.SetFont("Arial", "B", 14)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *pdfReport) row(label, value string, fill bool) {
	r.pdf.SetFont("Arial", "", 11)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.SetFillColor(245, 247, 250)
	r.pdf.CellFormat(contentWidth*0.6, 7, r.tr(label), "1", 0, "L", fill, 0, "")
	r.pdf.CellFormat(contentWidth*0.4, 7, r.tr(value), "1", 1, "R", fill, 0, "")
}

func (r *pdfReport) addSummaryPage() {
	r.pdf.AddPage()
	s := r.run.Summary

	title := r.run.Scenario
	if title == "" {
		title = r.run.ID
	}
	r.pdf.SetFont("Arial", "B", 22)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 14, r.tr("Deposit projection: "+title), "", 1, "C", false, 0, "")
	if r.run.Description != "" {
		r.pdf.SetFont("Arial", "I", 11)
		r.pdf.SetTextColor(80, 80, 80)
		r.pdf.MultiCell(contentWidth, 5, r.tr(r.run.Description), "", "C", false)
	}
	r.pdf.Ln(8)

	r.heading(fmt.Sprintf("Wallet from %s to %s", s.StartDate, s.CurrentDate))
	r.row("Total gain", Money(s.TotalGain), false)
	r.row("Total paid", Money(s.TotalPaid.Neg()), true)
	r.row("Net gain", Money(s.NetGain()), false)
	r.row("Injected", Money(s.Injected), true)
	r.row("Balance", Money(s.Balance), false)
	r.row("Return on injected", Pct(generic.Percent(s.NetGain(), s.Injected)), true)
	r.row("Days simulated", fmt.Sprintf("%d", s.Ticks), false)
	r.row("Locked sums", fmt.Sprintf("%d", s.Instruments), true)

	if len(r.run.Advisories) > 0 {
		r.pdf.Ln(8)
		r.heading("Advisories")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(150, 60, 0)
		for _, a := range r.run.Advisories {
			r.pdf.MultiCell(contentWidth, 5, r.tr("- "+a.String()), "", "L", false)
		}
	}
}

func (r *pdfReport) addInstrumentsPage() {
	totals := InstrumentTotals(r.entries)
	if len(totals) == 0 {
		return
	}
	r.pdf.AddPage()
	r.heading("Instruments")

	widths := []float64{40, 30, 28, 28, 28, 26}
	headers := []string{"Instrument", "Injected", "Gain", "Paid", "Net", "Periods"}
	r.tableHeader(widths, headers)

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(50, 50, 50)
	for i, t := range totals {
		cells := []string{t.Name, Money(t.Injected), Money(t.Gain), Money(t.Paid.Neg()), Money(t.Net()), fmt.Sprintf("%d", t.Periods)}
		r.tableRow(widths, cells, "LRRRRR", i%2 == 1)
	}
}

func (r *pdfReport) addLedgerPages() {
	r.pdf.AddPage()
	r.heading(fmt.Sprintf("Ledger (%d entries)", len(r.entries)))

	widths := []float64{12, 24, 44, 24, 38, 38}
	headers := []string{"#", "Date", "Source", "Kind", "Amount", "Balance"}
	r.tableHeader(widths, headers)

	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetTextColor(50, 50, 50)
	for i, e := range r.entries {
		if r.pdf.GetY() > 297-marginBottom-10 {
			r.pdf.AddPage()
			r.tableHeader(widths, headers)
			r.pdf.SetFont("Arial", "", 8)
			r.pdf.SetTextColor(50, 50, 50)
		}
		cells := []string{fmt.Sprintf("%d", e.ID), e.Date.String(), e.Source, string(e.Kind), Signed(e.Amount), Money(e.Balance)}
		r.tableRow(widths, cells, "RLLLRR", i%2 == 1)
	}
}

func (r *pdfReport) tableHeader(widths []float64, headers []string) {
	r.pdf.SetFont("Arial", "B", 9)
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		r.pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)
}

// tableRow draws one row; aligns holds one fpdf alignment letter per cell.
func (r *pdfReport) tableRow(widths []float64, cells []string, aligns string, fill bool) {
	r.pdf.SetFillColor(245, 247, 250)
	for i, c := range cells {
		r.pdf.CellFormat(widths[i], 6, r.tr(c), "1", 0, aligns[i:i+1], fill, 0, "")
	}
	r.pdf.Ln(-1)
}
