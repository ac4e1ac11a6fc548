/*
payroll.go - Monthly payroll derivation

PURPOSE:
  Derives every computed field of the income/deduction record pair from
  the manual fields, in one ordered pass:

    1. attendance bonus        round((base+level)/30)
    2. stock incentives        factor-based grant + retention grant
    3. union / welfare fees    round((base+level) * 0.5%)
    4. stock-trust withholding factor * 100
    5. labor insurance         step function above the wage ceiling
    6. health insurance        grade-table lookup on the full wage base
    7. voluntary pension       rate-based, excluded from the total
    8. mirroring               trust grants withheld on the deduction side

  The pass is a pure function: it takes both records by value and
  returns the derived pair. Running it twice with unchanged inputs
  yields the identical pair (no drift, no oscillation).

BLANK SEMANTICS:
  A derived field is stored blank when the computed amount is zero AND
  the underlying base total is zero - "not applicable" rather than
  "computed to zero". See Cell in cell.go.

SEE ALSO:
  - tables.go: health grade ladder
  - results.go: totals over the derived pair
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RECORDS
// =============================================================================

// IncomeRecord holds the monthly income components. Attendance and the
// two stock grants are derived; the rest are manual.
type IncomeRecord struct {
	Base           Cell `json:"base"`
	Level          Cell `json:"level"`
	Meal           Cell `json:"meal"`
	Transport      Cell `json:"transport"`
	Attendance     Cell `json:"attendance"`
	StockBonus     Cell `json:"stockBonus"`
	RetentionBonus Cell `json:"retentionBonus"`
}

// DeductionRecord holds the monthly deduction components. UnionMutual,
// Labor (below the step threshold), Dependents and VoluntaryPensionRate
// are manual; everything else is derived or mirrored.
type DeductionRecord struct {
	UnionFee             Cell `json:"unionFee"`
	UnionMutual          Cell `json:"unionMutual"`
	Labor                Cell `json:"labor"`
	Welfare              Cell `json:"welfare"`
	Health               Cell `json:"health"`
	StockTrust           Cell `json:"stockTrust"`
	StockBonus           Cell `json:"stockBonus"`
	RetentionBonus       Cell `json:"retentionBonus"`
	Dependents           Cell `json:"dependents"`
	VoluntaryPensionRate Cell `json:"voluntaryPensionRate"`
	VoluntaryPension     Cell `json:"voluntaryPension"`
}

// =============================================================================
// CONSTANTS
// =============================================================================

var (
	daysPerMonth      = decimal.NewFromInt(30)
	selfContribFactor = decimal.NewFromFloat(13.6) // fixed self-contribution factor
	contribUnit       = decimal.NewFromInt(100)
	stockGrantRate    = decimal.NewFromFloat(0.3)
	retentionRate     = decimal.NewFromFloat(0.375)
	unionRate         = decimal.NewFromFloat(0.005)
	laborCeiling      = decimal.NewFromInt(45800)
	laborCapped       = decimal.NewFromInt(1145)
	healthPremiumRate = decimal.NewFromFloat(0.0517)
	healthSelfShare   = decimal.NewFromFloat(0.3)
	maxDependents     = decimal.NewFromInt(3)
	maxVoluntaryRate  = decimal.NewFromInt(6)

	twelve   = decimal.NewFromInt(12)
	thousand = decimal.NewFromInt(1000)
	hundred  = decimal.NewFromInt(100)
	one      = decimal.NewFromInt(1)
)

// stockTrustFactor is the shared factor behind the trust withholding
// and both stock grants: floor(baseTotal * 13.6 / 12 / 1000).
func stockTrustFactor(baseTotal decimal.Decimal) decimal.Decimal {
	return baseTotal.Mul(selfContribFactor).Div(twelve).Div(thousand).Floor()
}

// =============================================================================
// DERIVATION
// =============================================================================

// DerivePayroll applies the full derivation pass and returns the
// updated record pair. Pure and idempotent.
func DerivePayroll(in IncomeRecord, ded DeductionRecord) (IncomeRecord, DeductionRecord) {
	base := in.Base.Decimal()
	level := in.Level.Decimal()
	baseTotal := base.Add(level)
	factor := stockTrustFactor(baseTotal)

	// Rule 1: attendance bonus.
	if baseTotal.IsZero() {
		in.Attendance = Blank()
	} else {
		in.Attendance = NewCell(round(baseTotal.Div(daysPerMonth)))
	}

	// Rule 2: stock incentive grants.
	in.StockBonus = blankWhenNA(round(factor.Mul(contribUnit).Mul(stockGrantRate)), baseTotal)
	in.RetentionBonus = blankWhenNA(round(factor.Mul(contribUnit).Mul(retentionRate)), baseTotal)

	// Rule 3: union fee and welfare fee.
	fee := round(baseTotal.Mul(unionRate))
	ded.UnionFee = blankWhenNA(fee, baseTotal)
	ded.Welfare = blankWhenNA(fee, baseTotal)

	// Rule 4: stock-trust withholding.
	ded.StockTrust = blankWhenNA(factor.Mul(contribUnit), baseTotal)

	// Rule 5: labor insurance step. Below the ceiling the manual value
	// stands untouched.
	if baseTotal.GreaterThan(laborCeiling) {
		ded.Labor = NewCell(laborCapped)
	}

	// Rule 6: health insurance via grade lookup.
	wageBase := baseTotal.Add(in.Meal.Decimal()).Add(in.Transport.Decimal()).Add(in.Attendance.Decimal())
	dependents := ded.Dependents.Decimal()
	if dependents.GreaterThan(maxDependents) {
		dependents = maxDependents
	}
	if dependents.IsNegative() {
		dependents = decimal.Zero
	}
	multiplier := one.Add(dependents)
	if grade, ok := matchHealthGrade(wageBase); ok {
		ded.Health = NewCell(round(grade.Mul(healthPremiumRate).Mul(healthSelfShare).Mul(multiplier)))
	} else {
		ded.Health = Blank()
	}

	// Rule 7: voluntary pension, rate clamped to [0, 6]%.
	if !ded.VoluntaryPensionRate.IsBlank() && wageBase.IsPositive() {
		rate := ded.VoluntaryPensionRate.Decimal()
		if rate.IsNegative() {
			rate = decimal.Zero
		}
		if rate.GreaterThan(maxVoluntaryRate) {
			rate = maxVoluntaryRate
		}
		ded.VoluntaryPension = NewCell(round(wageBase.Mul(rate).Div(hundred)))
	} else {
		ded.VoluntaryPension = Blank()
	}

	// Rule 8: withholding mirrors the grants.
	ded.StockBonus = in.StockBonus
	ded.RetentionBonus = in.RetentionBonus

	return in, ded
}
