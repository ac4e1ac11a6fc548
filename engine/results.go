/*
results.go - Totals composer

PURPOSE:
  Folds the derived record pair and the bonus rules into the headline
  figures: monthly gross/cash-gross/deduction/net and their annual
  counterparts. Pure function of the three inputs, recomputed wholesale
  after every mutation.

  Which deduction fields count toward the monthly total is an explicit
  named list (NonAdditiveDeductionFields), not an inference: dependents
  and the voluntary-pension rate are parameters rather than amounts,
  and the voluntary pension amount is tracked outside the total.
*/
package engine

import "github.com/shopspring/decimal"

// ComputedResults holds every derived headline figure. Never persisted,
// never user-mutated.
type ComputedResults struct {
	MonthlyGross     decimal.Decimal `json:"monthlyGross"`
	MonthlyCashGross decimal.Decimal `json:"monthlyCashGross"`
	MonthlyDeduction decimal.Decimal `json:"monthlyDeduction"`
	MonthlyNet       decimal.Decimal `json:"monthlyNet"`
	BonusBase        decimal.Decimal `json:"bonusBase"`
	TotalBonus       decimal.Decimal `json:"totalBonus"`
	AnnualGross      decimal.Decimal `json:"annualGross"`
	AnnualCashGross  decimal.Decimal `json:"annualCashGross"`
	AnnualNet        decimal.Decimal `json:"annualNet"`
}

// NonAdditiveDeductionFields names the deduction fields excluded from
// the monthly deduction total.
var NonAdditiveDeductionFields = []string{"dependents", "voluntaryPensionRate", "voluntaryPension"}

// incomeFields enumerates every income component for summation.
func incomeFields(in IncomeRecord) []Cell {
	return []Cell{in.Base, in.Level, in.Meal, in.Transport, in.Attendance, in.StockBonus, in.RetentionBonus}
}

// additiveDeductionFields enumerates the deduction components that
// count toward the total, honoring NonAdditiveDeductionFields.
func additiveDeductionFields(ded DeductionRecord) []Cell {
	all := []struct {
		name string
		cell Cell
	}{
		{"unionFee", ded.UnionFee},
		{"unionMutual", ded.UnionMutual},
		{"labor", ded.Labor},
		{"welfare", ded.Welfare},
		{"health", ded.Health},
		{"stockTrust", ded.StockTrust},
		{"stockBonus", ded.StockBonus},
		{"retentionBonus", ded.RetentionBonus},
		{"dependents", ded.Dependents},
		{"voluntaryPensionRate", ded.VoluntaryPensionRate},
		{"voluntaryPension", ded.VoluntaryPension},
	}
	excluded := make(map[string]bool, len(NonAdditiveDeductionFields))
	for _, name := range NonAdditiveDeductionFields {
		excluded[name] = true
	}
	cells := make([]Cell, 0, len(all))
	for _, f := range all {
		if !excluded[f.name] {
			cells = append(cells, f.cell)
		}
	}
	return cells
}

func sumCells(cells []Cell) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cells {
		total = total.Add(c.Decimal())
	}
	return total
}

// ComposeResults computes the full results structure.
func ComposeResults(in IncomeRecord, ded DeductionRecord, rules []BonusRule) ComputedResults {
	monthlyGross := sumCells(incomeFields(in))
	stockItems := in.StockBonus.Decimal().Add(in.RetentionBonus.Decimal())
	monthlyCashGross := monthlyGross.Sub(stockItems)
	monthlyDeduction := sumCells(additiveDeductionFields(ded))
	monthlyNet := monthlyGross.Sub(monthlyDeduction)

	bonusBase := BonusBase(in)
	totalBonus := TotalBonus(rules, bonusBase)

	return ComputedResults{
		MonthlyGross:     monthlyGross,
		MonthlyCashGross: monthlyCashGross,
		MonthlyDeduction: monthlyDeduction,
		MonthlyNet:       monthlyNet,
		BonusBase:        bonusBase,
		TotalBonus:       totalBonus,
		AnnualGross:      monthlyGross.Mul(twelve).Add(totalBonus),
		AnnualCashGross:  monthlyCashGross.Mul(twelve).Add(totalBonus),
		AnnualNet:        monthlyNet.Mul(twelve).Add(totalBonus),
	}
}
