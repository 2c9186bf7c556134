// Package aggregate computes the dashboard KPIs and the historical summaries.
//
// All functions are pure over a slice of expenses. Category ordering among
// equal sums follows the order in which categories first appear in the slice.
package aggregate

import (
	"slices"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// KPIs summarises one month.
type KPIs struct {
	Month               core.YearMonth       `json:"month"`
	Total               core.Money           `json:"total"`
	Count               int                  `json:"count"`
	ActiveDays          int                  `json:"activeDays"`
	AveragePerActiveDay core.Money           `json:"averagePerActiveDay"`
	TopCategory         *core.CategoryAmount `json:"topCategory"`
}

// InMonth returns the expenses dated in month, in ledger order.
func InMonth(expenses []core.Expense, month core.YearMonth) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Date.YearMonth() == month {
			out = append(out, e)
		}
	}
	return out
}

func MonthlyTotal(expenses []core.Expense, month core.YearMonth) core.Money {
	return sum(InMonth(expenses, month))
}

// ActiveDays counts the distinct dates with at least one expense in month.
func ActiveDays(expenses []core.Expense, month core.YearMonth) int {
	days := make(map[string]struct{})
	for _, e := range InMonth(expenses, month) {
		days[e.Date.String()] = struct{}{}
	}
	return len(days)
}

// AveragePerActiveDay is the monthly total divided by the active days,
// rounded half-up to a cent. It is zero for a month without expenses.
func AveragePerActiveDay(expenses []core.Expense, month core.YearMonth) core.Money {
	return average(MonthlyTotal(expenses, month), ActiveDays(expenses, month))
}

// TopCategory returns the category with the highest sum in month.
func TopCategory(expenses []core.Expense, month core.YearMonth) (core.CategoryAmount, bool) {
	cats := ByCategory(expenses, month)
	if len(cats) == 0 {
		return core.CategoryAmount{}, false
	}
	return cats[0], true
}

// ByCategory sums month's expenses per category, largest first.
func ByCategory(expenses []core.Expense, month core.YearMonth) []core.CategoryAmount {
	return groupByCategory(InMonth(expenses, month))
}

// ByMonth sums all expenses per month, most recent month first.
func ByMonth(expenses []core.Expense) []core.MonthTotal {
	totals := make(map[core.YearMonth]core.Money)
	for _, e := range expenses {
		ym := e.Date.YearMonth()
		totals[ym] = totals[ym].Add(e.Amount)
	}
	out := make([]core.MonthTotal, 0, len(totals))
	for ym, total := range totals {
		out = append(out, core.MonthTotal{Month: ym, Total: total})
	}
	slices.SortFunc(out, func(a, b core.MonthTotal) int {
		switch {
		case b.Month.Before(a.Month):
			return -1
		case a.Month.Before(b.Month):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Compute gathers the KPIs of month in a single pass over its expenses.
func Compute(expenses []core.Expense, month core.YearMonth) KPIs {
	monthly := InMonth(expenses, month)
	days := make(map[string]struct{})
	for _, e := range monthly {
		days[e.Date.String()] = struct{}{}
	}
	total := sum(monthly)
	k := KPIs{
		Month:               month,
		Total:               total,
		Count:               len(monthly),
		ActiveDays:          len(days),
		AveragePerActiveDay: average(total, len(days)),
	}
	if cats := groupByCategory(monthly); len(cats) > 0 {
		top := cats[0]
		k.TopCategory = &top
	}
	return k
}

// Overview is the month total together with its category split.
func Overview(expenses []core.Expense, month core.YearMonth) core.MonthOverview {
	monthly := InMonth(expenses, month)
	return core.MonthOverview{
		Month:      month,
		Total:      sum(monthly),
		ByCategory: groupByCategory(monthly),
	}
}

func groupByCategory(expenses []core.Expense) []core.CategoryAmount {
	index := make(map[string]int)
	out := make([]core.CategoryAmount, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	// Stable keeps first-seen order among equal sums.
	slices.SortStableFunc(out, func(a, b core.CategoryAmount) int {
		switch {
		case a.Amount.Cents > b.Amount.Cents:
			return -1
		case a.Amount.Cents < b.Amount.Cents:
			return 1
		default:
			return 0
		}
	})
	return out
}

func sum(expenses []core.Expense) core.Money {
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

func average(total core.Money, days int) core.Money {
	if days == 0 {
		return core.Money{}
	}
	avg := decimal.NewFromInt(total.Cents).Div(decimal.NewFromInt(int64(days))).Round(0)
	return core.Money{Cents: avg.IntPart()}
}
