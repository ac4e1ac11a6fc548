/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Record fields keep
  their Cell encoding (blank renders as ""), while computed figures are
  converted to plain JSON numbers so clients never see quoted decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the session, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - session/session.go: the State these views are built from
*/
package api

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/salary-engine/engine"
	"github.com/warp/salary-engine/session"
)

// num converts a decimal figure to a plain JSON number.
func num(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SetFieldRequest carries one field edit. The value may arrive as a
// number, a numeric string, or "" to blank the field.
type SetFieldRequest struct {
	Value engine.Cell `json:"value"`
}

// SelectGradeRequest picks a grade code from the ladder.
type SelectGradeRequest struct {
	Code string `json:"code"`
}

// UpdateBonusRequest carries optional edits for one bonus rule.
// A present-but-empty value blanks the field; an absent one leaves it.
type UpdateBonusRequest struct {
	Name  *string      `json:"name,omitempty"`
	Type  *string      `json:"type,omitempty"`
	Value *engine.Cell `json:"value,omitempty"`
}

// SetOverrideRequest pins a structural raise for one projection year.
type SetOverrideRequest struct {
	Amount float64 `json:"amount"`
}

// PreferencesRequest updates the UI flags; omitted fields are untouched.
type PreferencesRequest struct {
	DarkMode       *bool `json:"darkMode,omitempty"`
	DisclaimerSeen *bool `json:"disclaimerSeen,omitempty"`
}

// ResetRequest gates the destructive reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ResultsDTO is ComputedResults with plain-number figures.
type ResultsDTO struct {
	MonthlyGross     float64 `json:"monthlyGross"`
	MonthlyCashGross float64 `json:"monthlyCashGross"`
	MonthlyDeduction float64 `json:"monthlyDeduction"`
	MonthlyNet       float64 `json:"monthlyNet"`
	BonusBase        float64 `json:"bonusBase"`
	TotalBonus       float64 `json:"totalBonus"`
	AnnualGross      float64 `json:"annualGross"`
	AnnualCashGross  float64 `json:"annualCashGross"`
	AnnualNet        float64 `json:"annualNet"`
}

func toResultsDTO(r engine.ComputedResults) ResultsDTO {
	return ResultsDTO{
		MonthlyGross:     num(r.MonthlyGross),
		MonthlyCashGross: num(r.MonthlyCashGross),
		MonthlyDeduction: num(r.MonthlyDeduction),
		MonthlyNet:       num(r.MonthlyNet),
		BonusBase:        num(r.BonusBase),
		TotalBonus:       num(r.TotalBonus),
		AnnualGross:      num(r.AnnualGross),
		AnnualCashGross:  num(r.AnnualCashGross),
		AnnualNet:        num(r.AnnualNet),
	}
}

// TripleDTO is one monthly contribution triple.
type TripleDTO struct {
	Self      float64 `json:"self"`
	Company   float64 `json:"company"`
	Retention float64 `json:"retention"`
	Total     float64 `json:"total"`
}

func toTripleDTO(t engine.ContributionTriple) TripleDTO {
	return TripleDTO{Self: num(t.Self), Company: num(t.Company), Retention: num(t.Retention), Total: num(t.Total)}
}

// ProjectionRowDTO is one simulated year.
type ProjectionRowDTO struct {
	Year int `json:"year"`
	Age  int `json:"age"`

	StartSalary     float64 `json:"startSalary"`
	PerfRaise       float64 `json:"perfRaise"`
	StructuralRaise float64 `json:"structuralRaise"`
	MonthlySalary   float64 `json:"monthlySalary"`

	Pre  TripleDTO `json:"pre"`
	Post TripleDTO `json:"post"`

	Months                 float64 `json:"months"`
	RetentionCatchupMonths float64 `json:"retentionCatchupMonths"`
	AnnualTotal            float64 `json:"annualTotal"`

	StockPrice    float64 `json:"stockPrice"`
	PurchasePrice float64 `json:"purchasePrice"`
	SharesBought  float64 `json:"sharesBought"`

	DividendBaseShares float64 `json:"dividendBaseShares"`
	DividendIncome     float64 `json:"dividendIncome"`
	SharesFromDividend float64 `json:"sharesFromDividend"`

	TotalShares   float64 `json:"totalShares"`
	TotalValue    float64 `json:"totalValue"`
	TotalValueP25 float64 `json:"totalValueP25"`
	TotalValueP50 float64 `json:"totalValueP50"`
	TotalValueP75 float64 `json:"totalValueP75"`

	TotalPrincipal float64 `json:"totalPrincipal"`
}

// ScenarioDTO is the end state of one dividend scenario.
type ScenarioDTO struct {
	Shares          float64 `json:"shares"`
	Assets          float64 `json:"assets"`
	AnnualDividend  float64 `json:"annualDividend"`
	MonthlyDividend float64 `json:"monthlyDividend"`
}

func toScenarioDTO(s engine.ScenarioTotals) ScenarioDTO {
	return ScenarioDTO{Shares: num(s.Shares), Assets: num(s.Assets), AnnualDividend: num(s.AnnualDividend), MonthlyDividend: num(s.MonthlyDividend)}
}

// ProjectionSummaryDTO is the projection's headline end state.
type ProjectionSummaryDTO struct {
	TotalAssets     float64     `json:"totalAssets"`
	TotalShares     float64     `json:"totalShares"`
	TotalPrincipal  float64     `json:"totalPrincipal"`
	AnnualDividend  float64     `json:"annualDividend"`
	MonthlyDividend float64     `json:"monthlyDividend"`
	P25             ScenarioDTO `json:"p25"`
	P50             ScenarioDTO `json:"p50"`
	P75             ScenarioDTO `json:"p75"`
}

// PercentilesDTO holds the three historical dividend assumptions.
type PercentilesDTO struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
}

// ProjectionDTO is the full simulation output.
type ProjectionDTO struct {
	Rows        []ProjectionRowDTO   `json:"rows"`
	Summary     ProjectionSummaryDTO `json:"summary"`
	Percentiles PercentilesDTO       `json:"percentiles"`
}

func toProjectionDTO(p engine.TrustProjection) ProjectionDTO {
	rows := make([]ProjectionRowDTO, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = ProjectionRowDTO{
			Year:                   r.Year,
			Age:                    r.Age,
			StartSalary:            num(r.StartSalary),
			PerfRaise:              num(r.PerfRaise),
			StructuralRaise:        num(r.StructuralRaise),
			MonthlySalary:          num(r.MonthlySalary),
			Pre:                    toTripleDTO(r.Pre),
			Post:                   toTripleDTO(r.Post),
			Months:                 num(r.Months),
			RetentionCatchupMonths: num(r.RetentionCatchupMonths),
			AnnualTotal:            num(r.AnnualTotal),
			StockPrice:             num(r.StockPrice),
			PurchasePrice:          num(r.PurchasePrice),
			SharesBought:           num(r.SharesBought),
			DividendBaseShares:     num(r.DividendBaseShares),
			DividendIncome:         num(r.DividendIncome),
			SharesFromDividend:     num(r.SharesFromDividend),
			TotalShares:            num(r.TotalShares),
			TotalValue:             num(r.TotalValue),
			TotalValueP25:          num(r.TotalValueP25),
			TotalValueP50:          num(r.TotalValueP50),
			TotalValueP75:          num(r.TotalValueP75),
			TotalPrincipal:         num(r.TotalPrincipal),
		}
	}
	return ProjectionDTO{
		Rows: rows,
		Summary: ProjectionSummaryDTO{
			TotalAssets:     num(p.Summary.TotalAssets),
			TotalShares:     num(p.Summary.TotalShares),
			TotalPrincipal:  num(p.Summary.TotalPrincipal),
			AnnualDividend:  num(p.Summary.AnnualDividend),
			MonthlyDividend: num(p.Summary.MonthlyDividend),
			P25:             toScenarioDTO(p.Summary.P25),
			P50:             toScenarioDTO(p.Summary.P50),
			P75:             toScenarioDTO(p.Summary.P75),
		},
		Percentiles: PercentilesDTO{
			P25: num(p.Percentiles.P25),
			P50: num(p.Percentiles.P50),
			P75: num(p.Percentiles.P75),
		},
	}
}

// TrustParamsDTO echoes the projection inputs. Cells keep their
// number-or-blank encoding; manual overrides become plain numbers.
type TrustParamsDTO struct {
	CurrentAge engine.Cell `json:"currentAge"`
	RetireAge  engine.Cell `json:"retireAge"`

	StartSalary           engine.Cell `json:"startSalary"`
	ProbationRaiseMode    string      `json:"probationRaiseMode"`
	ProbationRaiseAmount  engine.Cell `json:"probationRaiseAmount"`
	ProbationRaisePercent engine.Cell `json:"probationRaisePercent"`
	AnnualRaise           engine.Cell `json:"annualRaise"`

	StructuralPolicy string      `json:"structuralPolicy"`
	StructuralAmount engine.Cell `json:"structuralAmount"`
	CycleActiveYears engine.Cell `json:"cycleActiveYears"`
	CyclePauseYears  engine.Cell `json:"cyclePauseYears"`
	IntervalYears    engine.Cell `json:"intervalYears"`

	ManualStructuralRaises map[string]float64 `json:"manualStructuralRaises"`

	CompanyRate    engine.Cell `json:"companyRate"`
	RetentionRate  engine.Cell `json:"retentionRate"`
	YearZeroMonths engine.Cell `json:"yearZeroMonths"`

	InitialStockPrice engine.Cell `json:"initialStockPrice"`
	StockGrowthRate   engine.Cell `json:"stockGrowthRate"`
	DividendPerShare  engine.Cell `json:"dividendPerShare"`
	FixedCalcPrice    engine.Cell `json:"fixedCalcPrice"`
}

func toTrustParamsDTO(p engine.TrustParams) TrustParamsDTO {
	overrides := make(map[string]float64, len(p.ManualStructuralRaises))
	for year, amount := range p.ManualStructuralRaises {
		overrides[strconv.Itoa(year)] = num(amount)
	}
	return TrustParamsDTO{
		CurrentAge:             p.CurrentAge,
		RetireAge:              p.RetireAge,
		StartSalary:            p.StartSalary,
		ProbationRaiseMode:     string(p.ProbationRaiseMode),
		ProbationRaiseAmount:   p.ProbationRaiseAmount,
		ProbationRaisePercent:  p.ProbationRaisePercent,
		AnnualRaise:            p.AnnualRaise,
		StructuralPolicy:       string(p.StructuralPolicy),
		StructuralAmount:       p.StructuralAmount,
		CycleActiveYears:       p.CycleActiveYears,
		CyclePauseYears:        p.CyclePauseYears,
		IntervalYears:          p.IntervalYears,
		ManualStructuralRaises: overrides,
		CompanyRate:            p.CompanyRate,
		RetentionRate:          p.RetentionRate,
		YearZeroMonths:         p.YearZeroMonths,
		InitialStockPrice:      p.InitialStockPrice,
		StockGrowthRate:        p.StockGrowthRate,
		DividendPerShare:       p.DividendPerShare,
		FixedCalcPrice:         p.FixedCalcPrice,
	}
}

// StateDTO is the full session snapshot returned by every mutation.
type StateDTO struct {
	Income         engine.IncomeRecord    `json:"income"`
	Deduction      engine.DeductionRecord `json:"deduction"`
	Bonuses        []engine.BonusRule     `json:"bonuses"`
	GradeCode      string                 `json:"gradeCode"`
	DarkMode       bool                   `json:"darkMode"`
	DisclaimerSeen bool                   `json:"disclaimerSeen"`
	TrustParams    TrustParamsDTO         `json:"trustParams"`
	Results        ResultsDTO             `json:"results"`
	Projection     ProjectionDTO          `json:"projection"`
}

func toStateDTO(s session.State) StateDTO {
	return StateDTO{
		Income:         s.Income,
		Deduction:      s.Deduction,
		Bonuses:        s.Bonuses,
		GradeCode:      s.GradeCode,
		DarkMode:       s.DarkMode,
		DisclaimerSeen: s.DisclaimerSeen,
		TrustParams:    toTrustParamsDTO(s.TrustParams),
		Results:        toResultsDTO(s.Results),
		Projection:     toProjectionDTO(s.Projection),
	}
}

// GradeOptionDTO is one grade ladder entry.
type GradeOptionDTO struct {
	Code  string  `json:"code"`
	Value float64 `json:"value"`
}

// DividendRecordDTO is one year of the historical dividend series.
type DividendRecordDTO struct {
	Year     int     `json:"year"`
	Dividend float64 `json:"dividend"`
}

// PayoutItemDTO is one bonus inside a payout slot.
type PayoutItemDTO struct {
	Name   string  `json:"name"`
	Months float64 `json:"months"`
}

// PayoutSlotDTO is one payout calendar slot priced at the current
// bonus base.
type PayoutSlotDTO struct {
	ID     int             `json:"id"`
	Month  string          `json:"month"`
	Items  []PayoutItemDTO `json:"items"`
	Amount float64         `json:"amount"`
}
