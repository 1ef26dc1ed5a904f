// Package report renders player account statements as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/phpdave11/gofpdf"

	"skytycoon/internal/models"
)

// Statement is the data printed on one account statement.
type Statement struct {
	Player       models.Player
	Transactions []models.Transaction
	Generated    time.Time
}

// Totals sums the ledger by transaction type.
func (s Statement) Totals() map[models.TransactionType]models.Money {
	out := map[models.TransactionType]models.Money{
		models.TransactionPurchase: models.MoneyFromInt(0),
		models.TransactionRevenue:  models.MoneyFromInt(0),
		models.TransactionExpense:  models.MoneyFromInt(0),
	}
	for _, tx := range s.Transactions {
		out[tx.Type] = out[tx.Type].Plus(tx.Amount)
	}
	return out
}

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Date", 28, "L"},
	{"Type", 26, "L"},
	{"Description", 86, "L"},
	{"Amount", 40, "R"},
}

// Render writes the statement as a PDF and returns the document bytes and a
// suggested file name.
func Render(s Statement) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Account statement", false)
	pdf.SetAuthor("SkyTycoon", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ACCOUNT STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Airline     : " + tr(s.Player.Username),
		"Hub         : " + s.Player.Hub,
		"Game date   : " + s.Player.CurrentDate.String(),
		"Balance     : " + FormatMoney(s.Player.Money),
		"Generated   : " + s.Generated.Format("2006-01-02 15:04"),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	totals := s.Totals()
	for _, t := range []models.TransactionType{models.TransactionRevenue, models.TransactionExpense, models.TransactionPurchase} {
		pdf.CellFormat(54, 6, strings.ToUpper(string(t[:1]))+string(t[1:]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, FormatMoney(totals[t]), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(s.Transactions) == 0 {
		pdf.CellFormat(180, 7, "No transactions yet.", "1", 1, "C", false, 0, "")
	}
	for _, tx := range s.Transactions {
		desc := tr(tx.Description)
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		pdf.CellFormat(columns[0].width, 6, tx.Date.String(), "1", 0, columns[0].align, false, 0, "")
		pdf.CellFormat(columns[1].width, 6, string(tx.Type), "1", 0, columns[1].align, false, 0, "")
		pdf.CellFormat(columns[2].width, 6, desc, "1", 0, columns[2].align, false, 0, "")
		pdf.CellFormat(columns[3].width, 6, FormatMoney(tx.Amount), "1", 1, columns[3].align, false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render statement: %w", err)
	}
	name := fmt.Sprintf("statement_%s_%s.pdf", safeFilenamePart(s.Player.Username), s.Player.CurrentDate)
	return buf.Bytes(), name, nil
}

// FormatMoney renders m as "$1,234,567.89", with a leading minus for debits.
func FormatMoney(m models.Money) string {
	whole, frac, _ := strings.Cut(m.Abs().StringFixed(2), ".")
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = humanize.Comma(n)
	}
	out := "$" + whole + "." + frac
	if m.IsNegative() {
		return "-" + out
	}
	return out
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "player"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
