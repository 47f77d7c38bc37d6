package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TopExpenseCount is how many expenses the ranked list keeps.
const TopExpenseCount = 5

// NoDescription is the placeholder for ranked expenses without a note.
const NoDescription = "No description"

// RankedExpense is one entry of the top-spend list.
type RankedExpense struct {
	Amount   decimal.Decimal `json:"amount"`
	Category MainCategory    `json:"category"`
	Note     string          `json:"note"`
}

// MonthSummary is the derived view over one month of ledger data. It is a
// pure computation: building it never touches storage.
type MonthSummary struct {
	Month          MonthKey                         `json:"month"`
	Income         decimal.Decimal                  `json:"income"`
	TotalSpent     decimal.Decimal                  `json:"totalSpent"`
	Balance        decimal.Decimal                  `json:"balance"`
	CategoryTotals map[MainCategory]decimal.Decimal `json:"categoryTotals"`
	TopExpenses    []RankedExpense                  `json:"topExpenses"`
	Count          int                              `json:"count"`
}

// Summarize folds a month's expenses and its income into a MonthSummary.
func Summarize(month MonthKey, expenses []Expense, income decimal.Decimal) MonthSummary {
	total := TotalSpent(expenses)
	return MonthSummary{
		Month:          month,
		Income:         income,
		TotalSpent:     total,
		Balance:        income.Sub(total),
		CategoryTotals: CategoryTotals(expenses),
		TopExpenses:    TopExpenses(expenses, TopExpenseCount),
		Count:          len(expenses),
	}
}

// TotalSpent sums all expense amounts. An empty set yields zero.
func TotalSpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// Balance is income minus total spent. Negative means over budget.
func Balance(expenses []Expense, income decimal.Decimal) decimal.Decimal {
	return income.Sub(TotalSpent(expenses))
}

// CategoryTotals maps each main category to its summed amount. Categories
// with no expenses are omitted rather than zero-filled.
func CategoryTotals(expenses []Expense) map[MainCategory]decimal.Decimal {
	totals := make(map[MainCategory]decimal.Decimal)
	for _, e := range expenses {
		totals[e.MainCategory] = totals[e.MainCategory].Add(e.Amount)
	}
	return totals
}

// TopExpenses returns the n largest expenses by amount, descending. The
// sort is stable so equal amounts keep their original relative order.
func TopExpenses(expenses []Expense, n int) []RankedExpense {
	sorted := make([]Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make([]RankedExpense, 0, len(sorted))
	for _, e := range sorted {
		note := e.Note
		if note == "" {
			note = NoDescription
		}
		top = append(top, RankedExpense{Amount: e.Amount, Category: e.MainCategory, Note: note})
	}
	return top
}

// DaysIn returns the number of days in the given calendar month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DailySeries buckets a month's expenses by day of month. The result always
// has one slot per day (1-indexed, slot 0 is day 1); expenses outside the
// target month are ignored.
func DailySeries(expenses []Expense, year, month int) []decimal.Decimal {
	days := DaysIn(year, month)
	series := make([]decimal.Decimal, days)
	for i := range series {
		series[i] = decimal.Zero
	}
	for _, e := range expenses {
		if e.Date.Year() != year || int(e.Date.Time.Month()) != month {
			continue
		}
		day := e.Date.Day()
		if day < 1 || day > days {
			continue
		}
		series[day-1] = series[day-1].Add(e.Amount)
	}
	return series
}

// BiggestCategory returns the category with the largest total. Ties resolve
// to the category first seen in the expense slice. ok is false when there
// are no expenses.
func BiggestCategory(expenses []Expense) (cat MainCategory, total decimal.Decimal, ok bool) {
	totals := make(map[MainCategory]decimal.Decimal)
	var firstSeen []MainCategory
	for _, e := range expenses {
		if _, seen := totals[e.MainCategory]; !seen {
			firstSeen = append(firstSeen, e.MainCategory)
		}
		totals[e.MainCategory] = totals[e.MainCategory].Add(e.Amount)
	}
	for _, c := range firstSeen {
		if !ok || totals[c].GreaterThan(total) {
			cat, total, ok = c, totals[c], true
		}
	}
	return cat, total, ok
}

// AverageDailySpend divides total spent by elapsed days: the current
// day-of-month when the summarized month is the current one, the full day
// count otherwise. The divisor is always at least 1.
func AverageDailySpend(totalSpent decimal.Decimal, month MonthKey, now time.Time) decimal.Decimal {
	days := DaysIn(month.Year(), month.Month())
	if month == MonthKeyFor(now) {
		days = now.Day()
	}
	if days < 1 {
		days = 1
	}
	return totalSpent.Div(decimal.NewFromInt(int64(days))).Round(2)
}

// SpendingPercent is total spent as a percentage of income, one decimal
// place. Zero income yields zero rather than dividing by it.
func SpendingPercent(totalSpent, income decimal.Decimal) decimal.Decimal {
	if income.IsZero() {
		return decimal.Zero
	}
	return totalSpent.Div(income).Mul(decimal.NewFromInt(100)).Round(1)
}
