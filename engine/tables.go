/*
tables.go - Static reference tables

PURPOSE:
  The fixed lookup data every derivation depends on: the salary-grade
  allowance ladder, the health-insurance contribution grades, the
  historical dividend series, and the default record contents used
  when no persisted state exists.

  All tables are package-level values, never mutated at runtime.

SEE ALSO:
  - payroll.go: consumes the grade ladder and health grades
  - trust.go: consumes the dividend history
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// SALARY GRADE LADDER
// =============================================================================

// GradeOption maps a grade code to its fixed monthly allowance.
type GradeOption struct {
	Code  string          `json:"code"`
	Value decimal.Decimal `json:"value"`
}

// GradeCustom is the selection marker for an allowance amount that
// matches no grade in the ladder.
const GradeCustom = "custom"

// GradeOptions is the grade ladder, highest grade first.
var GradeOptions = []GradeOption{
	{Code: "19", Value: decimal.NewFromInt(51795)},
	{Code: "18", Value: decimal.NewFromInt(44735)},
	{Code: "17", Value: decimal.NewFromInt(39435)},
	{Code: "16", Value: decimal.NewFromInt(35905)},
	{Code: "15", Value: decimal.NewFromInt(32370)},
	{Code: "14", Value: decimal.NewFromInt(28840)},
	{Code: "13", Value: decimal.NewFromInt(25310)},
	{Code: "12", Value: decimal.NewFromInt(21780)},
	{Code: "11", Value: decimal.NewFromInt(19135)},
	{Code: "10", Value: decimal.NewFromInt(16480)},
	{Code: "09", Value: decimal.NewFromInt(13835)},
	{Code: "08", Value: decimal.NewFromInt(11190)},
	{Code: "07", Value: decimal.NewFromInt(9420)},
	{Code: "06", Value: decimal.NewFromInt(8245)},
	{Code: "05", Value: decimal.NewFromInt(7070)},
	{Code: "04", Value: decimal.NewFromInt(5890)},
	{Code: "03", Value: decimal.NewFromInt(4715)},
	{Code: "02", Value: decimal.NewFromInt(3535)},
	{Code: "01", Value: decimal.NewFromInt(2360)},
	{Code: "00", Value: decimal.Zero},
}

// GradeByCode looks up a grade by its code.
func GradeByCode(code string) (GradeOption, bool) {
	for _, opt := range GradeOptions {
		if opt.Code == code {
			return opt, true
		}
	}
	return GradeOption{}, false
}

// GradeByValue looks up a grade by its exact allowance amount.
func GradeByValue(v decimal.Decimal) (GradeOption, bool) {
	for _, opt := range GradeOptions {
		if opt.Value.Equal(v) {
			return opt, true
		}
	}
	return GradeOption{}, false
}

// =============================================================================
// HEALTH INSURANCE GRADES
// =============================================================================

// HealthInsuranceGrades is the contribution salary-grade ladder,
// strictly ascending. A wage base is matched to the smallest grade
// that is >= the base; bases outside [first, last] have no grade.
var HealthInsuranceGrades = func() []decimal.Decimal {
	raw := []int64{
		40100, 42000, 43900, 45800, 48200, 50600, 53000, 55400, 57800, 60800,
		63800, 66800, 69800, 72800, 76500, 80200, 83900, 87600, 92100, 96600,
		101100, 105600, 110100, 115500, 120900, 126300, 131700, 137100, 142500, 147900,
		150000, 156400, 162800, 169200, 175600, 182000, 189500, 197000, 204500,
	}
	grades := make([]decimal.Decimal, len(raw))
	for i, g := range raw {
		grades[i] = decimal.NewFromInt(g)
	}
	return grades
}()

// matchHealthGrade returns the smallest grade >= wageBase, or false
// when wageBase falls outside the table's range.
func matchHealthGrade(wageBase decimal.Decimal) (decimal.Decimal, bool) {
	min := HealthInsuranceGrades[0]
	max := HealthInsuranceGrades[len(HealthInsuranceGrades)-1]
	if wageBase.LessThan(min) || wageBase.GreaterThan(max) {
		return decimal.Zero, false
	}
	for _, grade := range HealthInsuranceGrades {
		if grade.GreaterThanOrEqual(wageBase) {
			return grade, true
		}
	}
	return decimal.Zero, false
}

// =============================================================================
// HISTORICAL DIVIDENDS
// =============================================================================

// DividendRecord is one year of the historical dividend-per-share series.
type DividendRecord struct {
	Year     int             `json:"year"`
	Dividend decimal.Decimal `json:"dividend"`
}

// DividendHistory is the fixed 15-year dividend series the percentile
// scenarios are derived from, most recent year first.
var DividendHistory = []DividendRecord{
	{Year: 2025, Dividend: decimal.NewFromFloat(5.00)},
	{Year: 2024, Dividend: decimal.NewFromFloat(4.76)},
	{Year: 2023, Dividend: decimal.NewFromFloat(4.70)},
	{Year: 2022, Dividend: decimal.NewFromFloat(4.61)},
	{Year: 2021, Dividend: decimal.NewFromFloat(4.31)},
	{Year: 2020, Dividend: decimal.NewFromFloat(4.23)},
	{Year: 2019, Dividend: decimal.NewFromFloat(4.48)},
	{Year: 2018, Dividend: decimal.NewFromFloat(4.80)},
	{Year: 2017, Dividend: decimal.NewFromFloat(4.94)},
	{Year: 2016, Dividend: decimal.NewFromFloat(5.49)},
	{Year: 2015, Dividend: decimal.NewFromFloat(4.86)},
	{Year: 2014, Dividend: decimal.NewFromFloat(4.53)},
	{Year: 2013, Dividend: decimal.NewFromFloat(5.35)},
	{Year: 2012, Dividend: decimal.NewFromFloat(5.46)},
	{Year: 2011, Dividend: decimal.NewFromFloat(5.52)},
}

// =============================================================================
// RECORD DEFAULTS
// =============================================================================

// DefaultIncome returns the income record used when no persisted state
// exists or after a reset.
func DefaultIncome() IncomeRecord {
	return IncomeRecord{
		Base:      CellFromInt(50020),
		Meal:      CellFromInt(3000),
		Transport: CellFromInt(2500),
	}
}

// DefaultDeduction returns the deduction record counterpart. All
// derived fields start blank; manual fields start blank too.
func DefaultDeduction() DeductionRecord {
	return DeductionRecord{}
}

// DefaultBonusRules returns the seeded annual bonus rules.
func DefaultBonusRules() []BonusRule {
	return []BonusRule{
		{ID: 1, Name: "Lunar New Year bonus", Type: BonusMonth, Value: CellFromFloat(1.0)},
		{ID: 2, Name: "Dragon Boat Festival bonus", Type: BonusMonth, Value: CellFromFloat(0.3)},
		{ID: 3, Name: "Mid-Autumn Festival bonus", Type: BonusMonth, Value: CellFromFloat(0.3)},
		{ID: 5, Name: "Performance bonus", Type: BonusMonth, Value: CellFromFloat(2.6)},
		{ID: 6, Name: "Corporatization special bonus", Type: BonusFixed, Value: CellFromInt(155000)},
		{ID: 7, Name: "Employee profit sharing", Type: BonusFixed, Value: CellFromInt(95000)},
	}
}
