package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/engine"
)

// =============================================================================
// HELPERS
// =============================================================================

// flatParams is a fully deterministic one-transition setup: no raises,
// fixed purchase price, zero price growth.
func flatParams() engine.TrustParams {
	return engine.TrustParams{
		CurrentAge:           engine.CellFromInt(27),
		RetireAge:            engine.CellFromInt(28),
		StartSalary:          engine.CellFromInt(36000),
		ProbationRaiseMode:   engine.ProbationAmount,
		ProbationRaiseAmount: engine.CellFromInt(0),
		AnnualRaise:          engine.CellFromInt(0),
		StructuralPolicy:     engine.RaiseFixed,
		StructuralAmount:     engine.CellFromInt(0),
		CompanyRate:          engine.CellFromInt(30),
		RetentionRate:        engine.CellFromFloat(37.5),
		YearZeroMonths:       engine.CellFromInt(9),
		InitialStockPrice:    engine.CellFromInt(100),
		StockGrowthRate:      engine.CellFromInt(0),
		DividendPerShare:     engine.CellFromInt(5),
		FixedCalcPrice:       engine.CellFromInt(100),
	}
}

// =============================================================================
// PERCENTILES
// =============================================================================

func TestDividendStats(t *testing.T) {
	stats := engine.DividendStats()

	// Sorted series has 15 points; rank indexes 3.5 / 7 / 10.5.
	assert.Equal(t, "4.57", stats.P25.String())
	assert.Equal(t, "4.8", stats.P50.String())
	assert.Equal(t, "5.18", stats.P75.String())
}

// =============================================================================
// CONTRIBUTION RULES
// =============================================================================

func TestContribution(t *testing.T) {
	t.Run("floor and ceil rules", func(t *testing.T) {
		c := engine.Contribution(d(36000), d(30), decimal.NewFromFloat(37.5))
		// self = floor(36000*13.6/12/1000)*100 = floor(40.8)*100 = 4000
		assert.True(t, c.Self.Equal(d(4000)))
		assert.True(t, c.Company.Equal(d(1200)))
		assert.True(t, c.Retention.Equal(d(1500)))
		assert.True(t, c.Total.Equal(d(6700)))
	})

	t.Run("ceil rounds partial amounts up", func(t *testing.T) {
		c := engine.Contribution(d(40020), d(30), decimal.NewFromFloat(37.5))
		// self = floor(45.356)*100 = 4500; retention = ceil(1687.5) = 1688
		assert.True(t, c.Self.Equal(d(4500)))
		assert.True(t, c.Company.Equal(d(1350)))
		assert.True(t, c.Retention.Equal(d(1688)))
	})

	t.Run("zero salary contributes nothing", func(t *testing.T) {
		c := engine.Contribution(decimal.Zero, d(30), decimal.NewFromFloat(37.5))
		assert.True(t, c.Total.IsZero())
	})
}

// =============================================================================
// PRICE QUANTIZATION
// =============================================================================

func TestQuantizeHalfUnit(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"100", "100.5"},    // frac 0 < 0.5 -> +0.5
		{"134.33", "134.5"}, // frac 0.33 -> +0.5
		{"100.495", "100.5"},
		{"101.5", "102"}, // tie rounds up
		{"101.8", "102"},
		{"0.2", "0.5"},
	}
	for _, tc := range cases {
		got := engine.QuantizeHalfUnit(decimal.RequireFromString(tc.in))
		assert.Equal(t, tc.want, got.String(), "quantize(%s)", tc.in)
	}
}

func TestProjectTrust_PricePath(t *testing.T) {
	params := flatParams()
	params.RetireAge = engine.CellFromInt(30)
	params.InitialStockPrice = engine.CellFromInt(133)
	params.StockGrowthRate = engine.CellFromFloat(1.0)

	proj := engine.ProjectTrust(params)
	require.Len(t, proj.Rows, 4)

	assert.Equal(t, "133", proj.Rows[0].StockPrice.String())
	// 133 * 1.01 = 134.33, frac 0.33 < 0.5 -> 134.5
	assert.Equal(t, "134.5", proj.Rows[1].StockPrice.String())
	// 134.5 * 1.01 = 135.845, frac 0.845 >= 0.5 -> 136
	assert.Equal(t, "136", proj.Rows[2].StockPrice.String())
	// 136 * 1.01 = 137.36, frac 0.36 < 0.5 -> 137.5
	assert.Equal(t, "137.5", proj.Rows[3].StockPrice.String())
}

// =============================================================================
// TWO-ROW REFERENCE SCENARIO
// =============================================================================

func TestProjectTrust_TwoRowScenario(t *testing.T) {
	// GIVEN: one simulated transition (age 27 -> 28), no raises,
	// fixed purchase price 100, dividend 5/share, 9 months in year 0.
	proj := engine.ProjectTrust(flatParams())
	require.Len(t, proj.Rows, 2)

	y0, y1 := proj.Rows[0], proj.Rows[1]

	// Year 0: 6700 * 9 months + retention catch-up 1500 * min(3, 6).
	assert.True(t, y0.AnnualTotal.Equal(d(64800)), "got %s", y0.AnnualTotal)
	assert.True(t, y0.RetentionCatchupMonths.Equal(d(3)))
	assert.True(t, y0.SharesBought.Equal(d(648)))
	assert.True(t, y0.SharesFromDividend.IsZero(), "no dividend step in year 0")
	assert.True(t, y0.TotalShares.Equal(d(648)))
	assert.True(t, y0.TotalValue.Equal(d(64800)))
	assert.True(t, y0.TotalPrincipal.Equal(d(36000))) // 4000 * 9

	// Year 1: full year, 6700 * 12 = 80400 -> 804 shares.
	assert.True(t, y1.AnnualTotal.Equal(d(80400)))
	assert.True(t, y1.SharesBought.Equal(d(804)))

	// Dividend: base = 648 + 804/2 = 1050, income 5250, 52 new shares.
	assert.True(t, y1.DividendBaseShares.Equal(d(1050)))
	assert.True(t, y1.DividendIncome.Equal(d(5250)))
	assert.True(t, y1.SharesFromDividend.Equal(d(52)))
	assert.True(t, y1.TotalShares.Equal(d(1504))) // 648 + 804 + 52

	// Market value uses the floating price (100 -> 100.5), not the
	// fixed purchase price.
	assert.Equal(t, "100.5", y1.StockPrice.String())
	assert.True(t, y1.TotalValue.Equal(d(151152))) // round(1504 * 100.5)
	assert.True(t, y1.TotalPrincipal.Equal(d(84000)))

	// Summary mirrors the last row.
	sum := proj.Summary
	assert.True(t, sum.TotalShares.Equal(d(1504)))
	assert.True(t, sum.TotalAssets.Equal(d(151152)))
	assert.True(t, sum.AnnualDividend.Equal(d(7520)))
	assert.True(t, sum.MonthlyDividend.Equal(d(627))) // round(626.67)

	// Percentile scenarios run independently on their own share count.
	assert.True(t, sum.P25.Shares.Equal(d(1499))) // floor(1050*4.57/100)=47
	assert.True(t, sum.P50.Shares.Equal(d(1502))) // floor(1050*4.80/100)=50
	assert.True(t, sum.P75.Shares.Equal(d(1506))) // floor(1050*5.18/100)=54
	assert.True(t, sum.P25.Assets.Equal(d(150650)))
	assert.True(t, sum.P25.AnnualDividend.Equal(d(6850))) // round(1499*4.57)
	assert.True(t, sum.P25.MonthlyDividend.Equal(d(571)))
}

func TestProjectTrust_SummaryMonthlyDividendRoundsOnce(t *testing.T) {
	// Single full year, 20 shares at 5.08 per share: the annual figure
	// rounds 101.6 up to 102, but the monthly one rounds the raw
	// 101.6/12 = 8.47 in one step, to 8 (never round(102/12) = 9).
	p := flatParams()
	p.CurrentAge = engine.CellFromInt(30)
	p.RetireAge = engine.CellFromInt(30)
	p.YearZeroMonths = engine.CellFromInt(12)
	p.DividendPerShare = engine.CellFromFloat(5.08)
	p.FixedCalcPrice = engine.CellFromInt(4020)

	proj := engine.ProjectTrust(p)
	require.Len(t, proj.Rows, 1)

	// annualTotal = 6700 * 12 = 80400; floor(80400/4020) = 20 shares.
	assert.True(t, proj.Summary.TotalShares.Equal(d(20)))
	assert.True(t, proj.Summary.AnnualDividend.Equal(d(102)))
	assert.True(t, proj.Summary.MonthlyDividend.Equal(d(8)))
}

// =============================================================================
// RAISE POLICIES
// =============================================================================

func raiseParams(policy engine.RaisePolicy) engine.TrustParams {
	p := flatParams()
	p.RetireAge = engine.CellFromInt(31) // years 0..4
	p.StructuralPolicy = policy
	p.StructuralAmount = engine.CellFromInt(1000)
	p.CycleActiveYears = engine.CellFromInt(2)
	p.CyclePauseYears = engine.CellFromInt(1)
	p.IntervalYears = engine.CellFromInt(2)
	return p
}

func structRaises(proj engine.TrustProjection) []string {
	out := make([]string, len(proj.Rows))
	for i, row := range proj.Rows {
		out[i] = row.StructuralRaise.String()
	}
	return out
}

func TestProjectTrust_StructuralRaisePolicies(t *testing.T) {
	t.Run("fixed applies every year after year 0", func(t *testing.T) {
		proj := engine.ProjectTrust(raiseParams(engine.RaiseFixed))
		assert.Equal(t, []string{"0", "1000", "1000", "1000", "1000"}, structRaises(proj))
	})

	t.Run("cycle: 2 active then 1 pause, 1-indexed from year 1", func(t *testing.T) {
		proj := engine.ProjectTrust(raiseParams(engine.RaiseCycle))
		assert.Equal(t, []string{"0", "1000", "1000", "0", "1000"}, structRaises(proj))
	})

	t.Run("interval: every 2nd year", func(t *testing.T) {
		proj := engine.ProjectTrust(raiseParams(engine.RaiseInterval))
		assert.Equal(t, []string{"0", "0", "1000", "0", "1000"}, structRaises(proj))
	})

	t.Run("manual override wins over the policy", func(t *testing.T) {
		p := raiseParams(engine.RaiseFixed)
		p.ManualStructuralRaises = map[int]decimal.Decimal{2: d(777), 0: d(55)}
		proj := engine.ProjectTrust(p)
		assert.Equal(t, []string{"55", "1000", "777", "1000", "1000"}, structRaises(proj))
	})
}

func TestProjectTrust_ProbationPercentRaise(t *testing.T) {
	p := flatParams()
	p.StartSalary = engine.CellFromInt(50020)
	p.ProbationRaiseMode = engine.ProbationPercent
	p.ProbationRaisePercent = engine.CellFromInt(1)

	proj := engine.ProjectTrust(p)
	// round(50020 * 1%) = round(500.2) = 500
	assert.True(t, proj.Rows[0].PerfRaise.Equal(d(500)))
	assert.True(t, proj.Rows[0].MonthlySalary.Equal(d(50520)))
}

// =============================================================================
// SALARY PROGRESSION AND SPLIT YEARS
// =============================================================================

func TestProjectTrust_RaisesLandAfterFourMonths(t *testing.T) {
	p := flatParams()
	p.RetireAge = engine.CellFromInt(29)
	p.AnnualRaise = engine.CellFromInt(12000) // lifts self tier by a step

	proj := engine.ProjectTrust(p)
	y1 := proj.Rows[1]

	// pre at 36000: total 6700; post at 48000:
	// self = floor(54.4)*100 = 5400, company 1620, retention 2025 -> 9045
	assert.True(t, y1.Pre.Total.Equal(d(6700)))
	assert.True(t, y1.Post.Total.Equal(d(9045)))
	assert.True(t, y1.AnnualTotal.Equal(d(6700*4+9045*8)))
	assert.True(t, proj.Rows[2].StartSalary.Equal(d(48000)), "raise carries into the next year")
}

// =============================================================================
// INPUT HYGIENE
// =============================================================================

func TestProjectTrust_BlankInputsFallBackToDefaults(t *testing.T) {
	proj := engine.ProjectTrust(engine.TrustParams{})

	// ages default 27 -> 65: 39 rows; price defaults to 10, not zero.
	require.Len(t, proj.Rows, 39)
	assert.Equal(t, 27, proj.Rows[0].Age)
	assert.Equal(t, 65, proj.Rows[38].Age)
	assert.Equal(t, "10", proj.Rows[0].StockPrice.String())
}

func TestProjectTrust_RetirementBeforeCurrentAge(t *testing.T) {
	p := flatParams()
	p.CurrentAge = engine.CellFromInt(50)
	p.RetireAge = engine.CellFromInt(40)

	proj := engine.ProjectTrust(p)
	require.Len(t, proj.Rows, 1, "degenerate range still produces year 0")
}

func TestProjectTrust_NegativeInputsClampToZero(t *testing.T) {
	p := flatParams()
	p.AnnualRaise = engine.CellFromInt(-500)
	p.StockGrowthRate = engine.CellFromFloat(-3)

	proj := engine.ProjectTrust(p)
	assert.True(t, proj.Rows[1].PerfRaise.IsZero())
	assert.Equal(t, "100.5", proj.Rows[1].StockPrice.String(), "growth clamps to 0%%")
}

func TestProjectTrust_YearZeroMonthsClampedToTwelve(t *testing.T) {
	p := flatParams()
	p.YearZeroMonths = engine.CellFromInt(20)

	proj := engine.ProjectTrust(p)
	y0 := proj.Rows[0]
	assert.True(t, y0.Months.Equal(d(12)))
	assert.True(t, y0.RetentionCatchupMonths.IsZero())
	assert.True(t, y0.AnnualTotal.Equal(d(6700*12)))
}

func TestProjectTrust_FloatingPriceUsedWithoutOverride(t *testing.T) {
	p := flatParams()
	p.FixedCalcPrice = engine.Blank()

	proj := engine.ProjectTrust(p)
	// year 1 purchases at the floating price 100.5
	y1 := proj.Rows[1]
	assert.Equal(t, "100.5", y1.PurchasePrice.String())
	// floor(80400 / 100.5) = 800
	assert.True(t, y1.SharesBought.Equal(d(800)))
}
