/*
trust.go - Multi-year stock-trust projection

PURPOSE:
  Simulates the employee stock trust from the current age to the
  retirement age, one row per year:

    salary growth   probation raise (year 0), annual raise, structural
                    raise under one of three policies, per-year manual
                    overrides
    contributions   self (floor rule), company and retention (ceil
                    rules), computed at the pre-raise and post-raise
                    salary; raises land after month 4, year 0 is a
                    partial year with a retention catch-up
    share purchase  floor(annual total / effective price)
    dividends       reinvested at the effective price; run for the
                    user's assumption and three historical percentile
                    assumptions (P25/P50/P75) independently
    price path      grows by a fixed percentage, quantized to the
                    nearest half unit (ties round up)

  The whole series is regenerated wholesale on every parameter change;
  rows are never mutated incrementally.

INPUT HYGIENE:
  Blank parameters fall back to named defaults rather than zero (zero
  would degenerate the geometric parts); all scalar parameters are
  clamped to non-negative values, and the year-0 month count to [0, 12]
  so the retention catch-up min(12-months, 6) cannot go negative.

SEE ALSO:
  - tables.go: DividendHistory behind the percentile scenarios
  - payroll.go: the same 13.6 self-contribution factor
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PARAMETERS
// =============================================================================

// RaisePolicy schedules the structural raise.
type RaisePolicy string

const (
	// RaiseFixed applies the amount every year after year 0.
	RaiseFixed RaisePolicy = "fixed"
	// RaiseCycle applies for N active years, pauses for M, repeating.
	RaiseCycle RaisePolicy = "cycle"
	// RaiseInterval applies only when year % N == 0.
	RaiseInterval RaisePolicy = "interval"
)

// ProbationRaiseMode selects how the year-0 raise is expressed.
type ProbationRaiseMode string

const (
	ProbationAmount  ProbationRaiseMode = "amount"
	ProbationPercent ProbationRaiseMode = "percent"
)

// TrustParams are the projection inputs as entered, blanks and all.
type TrustParams struct {
	CurrentAge Cell `json:"currentAge"`
	RetireAge  Cell `json:"retireAge"`

	StartSalary           Cell               `json:"startSalary"`
	ProbationRaiseMode    ProbationRaiseMode `json:"probationRaiseMode"`
	ProbationRaiseAmount  Cell               `json:"probationRaiseAmount"`
	ProbationRaisePercent Cell               `json:"probationRaisePercent"`
	AnnualRaise           Cell               `json:"annualRaise"`

	StructuralPolicy RaisePolicy `json:"structuralPolicy"`
	StructuralAmount Cell        `json:"structuralAmount"`
	CycleActiveYears Cell        `json:"cycleActiveYears"`
	CyclePauseYears  Cell        `json:"cyclePauseYears"`
	IntervalYears    Cell        `json:"intervalYears"`

	// ManualStructuralRaises overrides the policy for specific years.
	ManualStructuralRaises map[int]decimal.Decimal `json:"manualStructuralRaises,omitempty"`

	CompanyRate    Cell `json:"companyRate"`
	RetentionRate  Cell `json:"retentionRate"`
	YearZeroMonths Cell `json:"yearZeroMonths"`

	InitialStockPrice Cell `json:"initialStockPrice"`
	StockGrowthRate   Cell `json:"stockGrowthRate"`
	DividendPerShare  Cell `json:"dividendPerShare"`
	// FixedCalcPrice, when positive, replaces the floating price for
	// share purchases and dividend reinvestment.
	FixedCalcPrice Cell `json:"fixedCalcPrice"`
}

// DefaultTrustParams mirrors the initial form values.
func DefaultTrustParams() TrustParams {
	return TrustParams{
		CurrentAge:            CellFromInt(27),
		RetireAge:             CellFromInt(65),
		StartSalary:           CellFromInt(50020),
		ProbationRaiseMode:    ProbationAmount,
		ProbationRaiseAmount:  CellFromInt(505),
		ProbationRaisePercent: CellFromInt(1),
		AnnualRaise:           CellFromInt(700),
		StructuralPolicy:      RaiseFixed,
		StructuralAmount:      CellFromInt(0),
		CycleActiveYears:      CellFromInt(3),
		CyclePauseYears:       CellFromInt(2),
		IntervalYears:         CellFromInt(3),
		CompanyRate:           CellFromInt(30),
		RetentionRate:         CellFromFloat(37.5),
		YearZeroMonths:        CellFromInt(9),
		InitialStockPrice:     CellFromInt(133),
		StockGrowthRate:       CellFromFloat(1.0),
		DividendPerShare:      CellFromFloat(5.0),
	}
}

// Fallbacks for blank parameters. Zero is wrong for these: a blank age
// or price should not collapse the simulation.
var (
	fallbackCurrentAge  = decimal.NewFromInt(27)
	fallbackRetireAge   = decimal.NewFromInt(65)
	fallbackCycleActive = decimal.NewFromInt(3)
	fallbackCyclePause  = decimal.NewFromInt(2)
	fallbackInterval    = decimal.NewFromInt(3)
	fallbackStockPrice  = decimal.NewFromInt(10)
)

// sanitized holds the post-coercion scalar parameters.
type sanitized struct {
	currentAge, retireAge                int
	startSalary                          decimal.Decimal
	probationAmount, probationPercent    decimal.Decimal
	annualRaise, structAmount            decimal.Decimal
	cycleActive, cyclePause, intervalYrs int
	companyRate, retentionContribRate    decimal.Decimal
	y0Months                             decimal.Decimal
	initialPrice, growthRate, dividend   decimal.Decimal
	fixedPrice                           decimal.Decimal
}

func coerce(c Cell, fallback decimal.Decimal) decimal.Decimal {
	v := fallback
	if !c.IsBlank() {
		v = c.Decimal()
	}
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

func (p TrustParams) sanitize() sanitized {
	s := sanitized{
		currentAge:           int(coerce(p.CurrentAge, fallbackCurrentAge).IntPart()),
		retireAge:            int(coerce(p.RetireAge, fallbackRetireAge).IntPart()),
		startSalary:          coerce(p.StartSalary, decimal.Zero),
		probationAmount:      coerce(p.ProbationRaiseAmount, decimal.Zero),
		probationPercent:     coerce(p.ProbationRaisePercent, decimal.Zero),
		annualRaise:          coerce(p.AnnualRaise, decimal.Zero),
		structAmount:         coerce(p.StructuralAmount, decimal.Zero),
		cycleActive:          int(coerce(p.CycleActiveYears, fallbackCycleActive).IntPart()),
		cyclePause:           int(coerce(p.CyclePauseYears, fallbackCyclePause).IntPart()),
		intervalYrs:          int(coerce(p.IntervalYears, fallbackInterval).IntPart()),
		companyRate:          coerce(p.CompanyRate, decimal.Zero),
		retentionContribRate: coerce(p.RetentionRate, decimal.Zero),
		y0Months:             coerce(p.YearZeroMonths, decimal.Zero),
		initialPrice:         coerce(p.InitialStockPrice, fallbackStockPrice),
		growthRate:           coerce(p.StockGrowthRate, decimal.Zero),
		dividend:             coerce(p.DividendPerShare, decimal.Zero),
		fixedPrice:           coerce(p.FixedCalcPrice, decimal.Zero),
	}
	if s.y0Months.GreaterThan(twelve) {
		s.y0Months = twelve
	}
	return s
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// ContributionTriple is the monthly contribution at a given salary:
// self uses the floor rule, company and retention the ceil rules.
type ContributionTriple struct {
	Self      decimal.Decimal `json:"self"`
	Company   decimal.Decimal `json:"company"`
	Retention decimal.Decimal `json:"retention"`
	Total     decimal.Decimal `json:"total"`
}

// TrustProjectionRow is one simulated year.
type TrustProjectionRow struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	StartSalary     decimal.Decimal `json:"startSalary"`
	PerfRaise       decimal.Decimal `json:"perfRaise"`
	StructuralRaise decimal.Decimal `json:"structuralRaise"`
	MonthlySalary   decimal.Decimal `json:"monthlySalary"`

	Pre  ContributionTriple `json:"pre"`
	Post ContributionTriple `json:"post"`

	Months                 decimal.Decimal `json:"months"`
	RetentionCatchupMonths decimal.Decimal `json:"retentionCatchupMonths"`
	AnnualTotal            decimal.Decimal `json:"annualTotal"`

	StockPrice    decimal.Decimal `json:"stockPrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SharesBought  decimal.Decimal `json:"sharesBought"`

	DividendBaseShares decimal.Decimal `json:"dividendBaseShares"`
	DividendIncome     decimal.Decimal `json:"dividendIncome"`
	SharesFromDividend decimal.Decimal `json:"sharesFromDividend"`

	TotalShares   decimal.Decimal `json:"totalShares"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalValueP25 decimal.Decimal `json:"totalValueP25"`
	TotalValueP50 decimal.Decimal `json:"totalValueP50"`
	TotalValueP75 decimal.Decimal `json:"totalValueP75"`

	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
}

// ScenarioTotals is the end state of one dividend scenario.
type ScenarioTotals struct {
	Shares          decimal.Decimal `json:"shares"`
	Assets          decimal.Decimal `json:"assets"`
	AnnualDividend  decimal.Decimal `json:"annualDividend"`
	MonthlyDividend decimal.Decimal `json:"monthlyDividend"`
}

// TrustSummary is the last row's state plus dividend estimates at the
// final share counts.
type TrustSummary struct {
	TotalAssets     decimal.Decimal `json:"totalAssets"`
	TotalShares     decimal.Decimal `json:"totalShares"`
	TotalPrincipal  decimal.Decimal `json:"totalPrincipal"`
	AnnualDividend  decimal.Decimal `json:"annualDividend"`
	MonthlyDividend decimal.Decimal `json:"monthlyDividend"`
	P25             ScenarioTotals  `json:"p25"`
	P50             ScenarioTotals  `json:"p50"`
	P75             ScenarioTotals  `json:"p75"`
}

// DividendPercentiles are the three fixed historical yield assumptions.
type DividendPercentiles struct {
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
}

// TrustProjection is the full simulation output.
type TrustProjection struct {
	Rows        []TrustProjectionRow `json:"rows"`
	Summary     TrustSummary         `json:"summary"`
	Percentiles DividendPercentiles  `json:"percentiles"`
}

// =============================================================================
// PERCENTILES
// =============================================================================

// DividendStats derives P25/P50/P75 from DividendHistory by linear
// interpolation on the sorted series, rounded to 2 decimals.
func DividendStats() DividendPercentiles {
	divs := make([]decimal.Decimal, len(DividendHistory))
	for i, rec := range DividendHistory {
		divs[i] = rec.Dividend
	}
	sort.Slice(divs, func(i, j int) bool { return divs[i].LessThan(divs[j]) })

	percentile := func(p decimal.Decimal) decimal.Decimal {
		idx := decimal.NewFromInt(int64(len(divs) - 1)).Mul(p)
		lower := idx.Floor()
		upper := idx.Ceil()
		if lower.Equal(upper) {
			return divs[lower.IntPart()]
		}
		weight := idx.Sub(lower)
		lo := divs[lower.IntPart()].Mul(one.Sub(weight))
		hi := divs[upper.IntPart()].Mul(weight)
		return lo.Add(hi).Round(2)
	}

	return DividendPercentiles{
		P25: percentile(decimal.NewFromFloat(0.25)),
		P50: percentile(decimal.NewFromFloat(0.50)),
		P75: percentile(decimal.NewFromFloat(0.75)),
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

var (
	half  = decimal.NewFromFloat(0.5)
	two   = decimal.NewFromInt(2)
	four  = decimal.NewFromInt(4)
	six   = decimal.NewFromInt(6)
	eight = decimal.NewFromInt(8)
)

// Contribution computes the monthly triple at a salary.
func Contribution(salary, companyRate, retentionRate decimal.Decimal) ContributionTriple {
	self := salary.Mul(selfContribFactor).Div(twelve).Div(thousand).Floor().Mul(hundred)
	company := self.Mul(companyRate).Div(hundred).Ceil()
	retention := self.Mul(retentionRate).Div(hundred).Ceil()
	return ContributionTriple{
		Self:      self,
		Company:   company,
		Retention: retention,
		Total:     self.Add(company).Add(retention),
	}
}

// QuantizeHalfUnit snaps a price to the half-unit grid: keep the whole
// part, add 1 if the fraction is >= 0.5, otherwise add 0.5.
func QuantizeHalfUnit(price decimal.Decimal) decimal.Decimal {
	floor := price.Floor()
	if price.Sub(floor).GreaterThanOrEqual(half) {
		return floor.Add(one)
	}
	return floor.Add(half)
}

// scenarioStep advances one dividend scenario by a year.
func scenarioStep(year int, prevShares, sharesBought, rate, price decimal.Decimal) (fromDiv, newTotal decimal.Decimal) {
	if year == 0 {
		return decimal.Zero, prevShares.Add(sharesBought)
	}
	base := prevShares.Add(sharesBought.Div(two))
	income := base.Mul(rate)
	fromDiv = income.Div(price).Floor()
	return fromDiv, prevShares.Add(sharesBought).Add(fromDiv)
}

// ProjectTrust runs the full simulation. Total over its coerced input
// domain; never returns an error.
func ProjectTrust(params TrustParams) TrustProjection {
	s := params.sanitize()
	stats := DividendStats()

	years := s.retireAge - s.currentAge
	if years < 0 {
		years = 0
	}

	rows := make([]TrustProjectionRow, 0, years+1)
	var userShares, p25Shares, p50Shares, p75Shares decimal.Decimal
	price := s.initialPrice
	salary := s.startSalary
	totalPrincipal := decimal.Zero

	for i := 0; i <= years; i++ {
		// Performance raise: probation terms in year 0, flat after.
		var perfRaise decimal.Decimal
		if i == 0 {
			if params.ProbationRaiseMode == ProbationPercent {
				perfRaise = round(s.startSalary.Mul(s.probationPercent).Div(hundred))
			} else {
				perfRaise = s.probationAmount
			}
		} else {
			perfRaise = s.annualRaise
		}

		// Structural raise: manual override wins, then the policy.
		structRaise := decimal.Zero
		if manual, ok := params.ManualStructuralRaises[i]; ok {
			structRaise = manual
			if structRaise.IsNegative() {
				structRaise = decimal.Zero
			}
		} else if i > 0 {
			switch params.StructuralPolicy {
			case RaiseCycle:
				cycleLen := s.cycleActive + s.cyclePause
				if cycleLen > 0 && (i-1)%cycleLen < s.cycleActive {
					structRaise = s.structAmount
				}
			case RaiseInterval:
				if s.intervalYrs > 0 && i%s.intervalYrs == 0 {
					structRaise = s.structAmount
				}
			default:
				structRaise = s.structAmount
			}
		}

		monthlySalary := salary.Add(perfRaise).Add(structRaise)

		pre := Contribution(salary, s.companyRate, s.retentionContribRate)
		post := Contribution(monthlySalary, s.companyRate, s.retentionContribRate)

		// Year 0 is a partial year with a retention catch-up, capped
		// at 6 months. Later years split 4 months pre-raise, 8 post.
		var months, catchup, annualTotal, selfPrincipal decimal.Decimal
		if i == 0 {
			months = s.y0Months
			catchup = twelve.Sub(months)
			if catchup.GreaterThan(six) {
				catchup = six
			}
			annualTotal = post.Total.Mul(months).Add(pre.Retention.Mul(catchup))
			selfPrincipal = post.Self.Mul(months)
		} else {
			months = twelve
			annualTotal = pre.Total.Mul(four).Add(post.Total.Mul(eight))
			selfPrincipal = pre.Self.Mul(four).Add(post.Self.Mul(eight))
		}
		totalPrincipal = totalPrincipal.Add(selfPrincipal)

		// Effective purchase price: fixed override, else the floating
		// price, else 1 as a last resort.
		purchasePrice := s.fixedPrice
		if !purchasePrice.IsPositive() {
			purchasePrice = price
			if !purchasePrice.IsPositive() {
				purchasePrice = one
			}
		}
		sharesBought := annualTotal.Div(purchasePrice).Floor()

		// Dividend base for the row (user scenario).
		dividendBase := decimal.Zero
		dividendIncome := decimal.Zero
		if i > 0 {
			dividendBase = userShares.Add(sharesBought.Div(two))
			dividendIncome = round(dividendBase.Mul(s.dividend))
		}

		var fromDiv decimal.Decimal
		fromDiv, userShares = scenarioStep(i, userShares, sharesBought, s.dividend, purchasePrice)
		_, p25Shares = scenarioStep(i, p25Shares, sharesBought, stats.P25, purchasePrice)
		_, p50Shares = scenarioStep(i, p50Shares, sharesBought, stats.P50, purchasePrice)
		_, p75Shares = scenarioStep(i, p75Shares, sharesBought, stats.P75, purchasePrice)

		rows = append(rows, TrustProjectionRow{
			Year:                   i,
			Age:                    s.currentAge + i,
			StartSalary:            salary,
			PerfRaise:              perfRaise,
			StructuralRaise:        structRaise,
			MonthlySalary:          monthlySalary,
			Pre:                    pre,
			Post:                   post,
			Months:                 months,
			RetentionCatchupMonths: catchup,
			AnnualTotal:            annualTotal,
			StockPrice:             price,
			PurchasePrice:          purchasePrice,
			SharesBought:           sharesBought,
			DividendBaseShares:     dividendBase,
			DividendIncome:         dividendIncome,
			SharesFromDividend:     fromDiv,
			TotalShares:            userShares,
			TotalValue:             round(userShares.Mul(price)),
			TotalValueP25:          round(p25Shares.Mul(price)),
			TotalValueP50:          round(p50Shares.Mul(price)),
			TotalValueP75:          round(p75Shares.Mul(price)),
			TotalPrincipal:         totalPrincipal,
		})

		salary = monthlySalary
		price = QuantizeHalfUnit(price.Mul(one.Add(s.growthRate.Div(hundred))))
	}

	last := rows[len(rows)-1]
	scenario := func(shares, rate, rowValue decimal.Decimal) ScenarioTotals {
		annual := round(shares.Mul(rate))
		return ScenarioTotals{
			Shares:          shares,
			Assets:          rowValue,
			AnnualDividend:  annual,
			MonthlyDividend: round(annual.Div(twelve)),
		}
	}
	// The user scenario's monthly figure rounds the raw product once;
	// the percentile scenarios divide their already-rounded annual.
	dividendIncome := last.TotalShares.Mul(s.dividend)

	return TrustProjection{
		Rows: rows,
		Summary: TrustSummary{
			TotalAssets:     last.TotalValue,
			TotalShares:     last.TotalShares,
			TotalPrincipal:  last.TotalPrincipal,
			AnnualDividend:  round(dividendIncome),
			MonthlyDividend: round(dividendIncome.Div(twelve)),
			P25:             scenario(p25Shares, stats.P25, last.TotalValueP25),
			P50:             scenario(p50Shares, stats.P50, last.TotalValueP50),
			P75:             scenario(p75Shares, stats.P75, last.TotalValueP75),
		},
		Percentiles: stats,
	}
}
