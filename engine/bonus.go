/*
bonus.go - Annual bonus rules and the payout calendar

PURPOSE:
  A bonus rule is either a fixed amount or "N months of the bonus
  base" (base salary + grade allowance). The aggregator sums the rule
  list into the annual bonus total; order never matters and no
  intermediate rounding happens.

  The payout calendar is the fixed schedule of when those bonuses are
  actually paid through the year, used for the month-by-month view.

SEE ALSO:
  - results.go: combines the total with monthly figures
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// BONUS RULES
// =============================================================================

// BonusType selects how a rule's value is interpreted.
type BonusType string

const (
	// BonusFixed contributes the value directly.
	BonusFixed BonusType = "fixed"
	// BonusMonth contributes value * bonusBase.
	BonusMonth BonusType = "month"
)

// BonusRule is one annual bonus line item.
type BonusRule struct {
	ID    int       `json:"id"`
	Name  string    `json:"name"`
	Type  BonusType `json:"type"`
	Value Cell      `json:"value"`
}

// NextBonusID assigns ids as max(existing, 0) + 1.
func NextBonusID(rules []BonusRule) int {
	max := 0
	for _, r := range rules {
		if r.ID > max {
			max = r.ID
		}
	}
	return max + 1
}

// BonusBase is the multiplier base for month-type rules.
func BonusBase(in IncomeRecord) decimal.Decimal {
	return in.Base.Decimal().Add(in.Level.Decimal())
}

// TotalBonus sums the rule list against the bonus base. Commutative;
// unparseable values have already coerced to zero at the Cell layer.
func TotalBonus(rules []BonusRule, bonusBase decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rules {
		v := r.Value.Decimal()
		if r.Type == BonusMonth {
			total = total.Add(v.Mul(bonusBase))
		} else {
			total = total.Add(v)
		}
	}
	return total
}

// =============================================================================
// PAYOUT CALENDAR
// =============================================================================

// PayoutItem is one bonus paid within a calendar slot, expressed in
// months of the bonus base.
type PayoutItem struct {
	Name   string          `json:"name"`
	Months decimal.Decimal `json:"months"`
}

// PayoutSlot groups the items paid in the same stretch of the year.
type PayoutSlot struct {
	ID    int          `json:"id"`
	Month string       `json:"month"`
	Items []PayoutItem `json:"items"`
}

// PayoutCalendar is the fixed bonus payout schedule.
var PayoutCalendar = []PayoutSlot{
	{ID: 1, Month: "Jan-Feb (before Lunar New Year)", Items: []PayoutItem{
		{Name: "Performance bonus (advance)", Months: decimal.NewFromFloat(2.0)},
		{Name: "Corporatization bonus (advance)", Months: decimal.NewFromFloat(0.5)},
		{Name: "Lunar New Year bonus", Months: decimal.NewFromFloat(1.0)},
	}},
	{ID: 2, Month: "April", Items: []PayoutItem{
		{Name: "Performance bonus (balance)", Months: decimal.NewFromFloat(0.6)},
	}},
	{ID: 3, Month: "May", Items: []PayoutItem{
		{Name: "Corporatization bonus (balance)", Months: decimal.NewFromFloat(1.5)},
	}},
	{ID: 4, Month: "June", Items: []PayoutItem{
		{Name: "Dragon Boat Festival bonus", Months: decimal.NewFromFloat(0.3)},
	}},
	{ID: 5, Month: "July", Items: []PayoutItem{
		{Name: "Employee profit sharing", Months: decimal.NewFromFloat(1.0)},
	}},
	{ID: 6, Month: "September", Items: []PayoutItem{
		{Name: "Mid-Autumn Festival bonus", Months: decimal.NewFromFloat(0.3)},
	}},
}

// SlotAmount is the rounded payout of a slot at the given bonus base.
func SlotAmount(slot PayoutSlot, bonusBase decimal.Decimal) decimal.Decimal {
	months := decimal.Zero
	for _, item := range slot.Items {
		months = months.Add(item.Months)
	}
	return round(bonusBase.Mul(months))
}
