/*
Package report renders session snapshots as PDF documents.

PURPOSE:
  Produces the downloadable one-page summary: the monthly payroll
  breakdown, the annual bonus list, the headline totals, and the trust
  projection end state. Layout is a plain two-column label/amount grid;
  no templates, no assets.

SEE ALSO:
  - api/handlers.go: the export endpoint serving these bytes
*/
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/engine"
	"github.com/warp/salary-engine/session"
)

const (
	labelWidth  = 110.0
	amountWidth = 60.0
	lineHeight  = 7.0
)

// SummaryPDF renders the snapshot as a single-page A4 document.
func SummaryPDF(state session.State) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Salary Estimate Summary", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Salary Estimate Summary", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, "Monthly Income")
	line(pdf, "Base salary", cellAmount(state.Income.Base))
	line(pdf, "Grade allowance", cellAmount(state.Income.Level))
	line(pdf, "Meal allowance", cellAmount(state.Income.Meal))
	line(pdf, "Transport allowance", cellAmount(state.Income.Transport))
	line(pdf, "Attendance bonus", cellAmount(state.Income.Attendance))
	line(pdf, "Stock bonus grant", cellAmount(state.Income.StockBonus))
	line(pdf, "Retention stock grant", cellAmount(state.Income.RetentionBonus))
	totalLine(pdf, "Monthly gross", state.Results.MonthlyGross)

	section(pdf, "Monthly Deductions")
	line(pdf, "Union fee", cellAmount(state.Deduction.UnionFee))
	line(pdf, "Union mutual aid", cellAmount(state.Deduction.UnionMutual))
	line(pdf, "Labor insurance", cellAmount(state.Deduction.Labor))
	line(pdf, "Welfare fund", cellAmount(state.Deduction.Welfare))
	line(pdf, "Health insurance", cellAmount(state.Deduction.Health))
	line(pdf, "Stock trust contribution", cellAmount(state.Deduction.StockTrust))
	line(pdf, "Stock bonus (withheld)", cellAmount(state.Deduction.StockBonus))
	line(pdf, "Retention stock (withheld)", cellAmount(state.Deduction.RetentionBonus))
	totalLine(pdf, "Monthly deduction", state.Results.MonthlyDeduction)
	totalLine(pdf, "Monthly net", state.Results.MonthlyNet)

	section(pdf, "Annual Bonuses")
	for _, rule := range state.Bonuses {
		line(pdf, rule.Name, bonusAmount(rule))
	}
	totalLine(pdf, "Total bonus", state.Results.TotalBonus)
	totalLine(pdf, "Annual net", state.Results.AnnualNet)

	section(pdf, "Stock Trust at Retirement")
	summary := state.Projection.Summary
	totalLine(pdf, "Total assets", summary.TotalAssets)
	line(pdf, "Total shares", summary.TotalShares.String())
	totalLine(pdf, "Self-paid principal", summary.TotalPrincipal)
	totalLine(pdf, "Est. annual dividend", summary.AnnualDividend)
	totalLine(pdf, "Est. monthly dividend", summary.MonthlyDividend)

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5,
		"Estimates only. Actual figures depend on employer policy and statutory rates in force.",
		"", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render summary pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
}

func line(pdf *gofpdf.Fpdf, label, amount string) {
	pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, amount, "", 1, "R", false, 0, "")
}

func totalLine(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(labelWidth, lineHeight, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, lineHeight, engine.Currency(amount), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 10)
}

// cellAmount renders a record field, "-" when blank.
func cellAmount(c engine.Cell) string {
	if c.IsBlank() {
		return "-"
	}
	return engine.Currency(c.Decimal())
}

// bonusAmount renders a rule as months of base or a fixed amount.
func bonusAmount(rule engine.BonusRule) string {
	if rule.Type == engine.BonusMonth {
		return fmt.Sprintf("%s months", rule.Value.String())
	}
	return cellAmount(rule.Value)
}
