package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/salary-engine/engine"
)

func TestComposeResults_NetIdentity(t *testing.T) {
	in, ded := engine.DerivePayroll(engine.DefaultIncome(), engine.DefaultDeduction())
	res := engine.ComposeResults(in, ded, engine.DefaultBonusRules())

	assert.True(t, res.MonthlyNet.Equal(res.MonthlyGross.Sub(res.MonthlyDeduction)))
	assert.True(t, res.AnnualGross.Equal(res.MonthlyGross.Mul(d(12)).Add(res.TotalBonus)))
	assert.True(t, res.AnnualNet.Equal(res.MonthlyNet.Mul(d(12)).Add(res.TotalBonus)))
}

func TestComposeResults_DefaultRecordFigures(t *testing.T) {
	in, ded := engine.DerivePayroll(engine.DefaultIncome(), engine.DefaultDeduction())
	res := engine.ComposeResults(in, ded, nil)

	// income: 50020 + 3000 + 2500 + 1667 + 1680 + 2100 = 60967
	assert.True(t, res.MonthlyGross.Equal(d(60967)), "got %s", res.MonthlyGross)
	// cash gross excludes the two stock grants (3780)
	assert.True(t, res.MonthlyCashGross.Equal(d(57187)), "got %s", res.MonthlyCashGross)
	// deductions: union 250 + labor 1145 + welfare 250 + health 896 +
	// trust 5600 + mirrored grants 1680 + 2100 = 11921
	assert.True(t, res.MonthlyDeduction.Equal(d(11921)), "got %s", res.MonthlyDeduction)
	assert.True(t, res.MonthlyNet.Equal(d(49046)), "got %s", res.MonthlyNet)
	assert.True(t, res.BonusBase.Equal(d(50020)))
}

func TestComposeResults_NonAdditiveFieldsExcluded(t *testing.T) {
	in, ded := engine.DerivePayroll(engine.DefaultIncome(), engine.DefaultDeduction())
	before := engine.ComposeResults(in, ded, nil)

	// Setting dependents changes health (additive) but the dependents
	// count and voluntary-pension parameters themselves never sum.
	ded.Dependents = engine.CellFromInt(1)
	ded.VoluntaryPensionRate = engine.CellFromInt(6)
	in, ded = engine.DerivePayroll(in, ded)
	after := engine.ComposeResults(in, ded, nil)

	// health doubled: 896 -> 1793 (round(896.478 * 2) = 1793)
	assert.Equal(t, "1793", ded.Health.String())
	// voluntary pension amount derived but excluded from the total
	assert.Equal(t, "3431", ded.VoluntaryPension.String())

	delta := after.MonthlyDeduction.Sub(before.MonthlyDeduction)
	assert.True(t, delta.Equal(d(897)), "only the health delta should count, got %s", delta)
}

func TestComposeResults_BlankRecordsAreZero(t *testing.T) {
	res := engine.ComposeResults(engine.IncomeRecord{}, engine.DeductionRecord{}, nil)

	assert.True(t, res.MonthlyGross.IsZero())
	assert.True(t, res.MonthlyDeduction.IsZero())
	assert.True(t, res.MonthlyNet.IsZero())
	assert.True(t, res.TotalBonus.IsZero())
}
