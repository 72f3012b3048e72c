package bankgo

import (
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// writeStatementPDF renders an account's journal view as a one-or-more
// page PDF statement, oldest entry first.
func writeStatementPDF(w io.Writer, summary AccountSummary, entries []Entry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Account: "+summary.ID.String()+" ("+string(summary.Type)+")")
	pdf.Ln(6)
	pdf.Cell(0, 6, "Balance: "+summary.Balance.String())
	pdf.Ln(10)

	colWidths := []float64{14, 34, 26, 50, 26, 40}
	headers := []string{"Seq", "Time", "Kind", "Counterparty", "Amount", "Memo"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, e := range entries {
		counterparty := ""
		if e.Counterparty != 0 {
			counterparty = e.Counterparty.String()
		}
		cells := []string{
			strconv.FormatUint(e.Seq, 10),
			e.Time.Format("2006-01-02 15:04"),
			string(e.Kind),
			counterparty,
			e.Amount.String(),
			e.Memo,
		}
		for i, c := range cells {
			pdf.CellFormat(colWidths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
