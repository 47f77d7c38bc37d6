package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func exp(amount string, cat MainCategory, day int, note string) Expense {
	e := Expense{
		Amount:       dec(amount),
		MainCategory: cat,
		Date:         NewDate(2025, 6, day),
		Note:         note,
	}
	e.SetPeriod()
	return e
}

func TestTotalSpent(t *testing.T) {
	assert.True(t, TotalSpent(nil).IsZero())

	expenses := []Expense{
		exp("10.50", CategoryFood, 1, ""),
		exp("0.01", CategoryBills, 2, ""),
		exp("89.49", CategoryTravel, 3, ""),
	}
	assert.True(t, TotalSpent(expenses).Equal(dec("100.00")))
}

func TestCategoryTotalsSumMatchesTotalSpent(t *testing.T) {
	expenses := []Expense{
		exp("12.34", CategoryFood, 1, ""),
		exp("5.66", CategoryFood, 2, ""),
		exp("40", CategoryShopping, 3, ""),
		exp("0.99", CategoryOther, 28, ""),
	}

	totals := CategoryTotals(expenses)
	require.Len(t, totals, 3)
	assert.True(t, totals[CategoryFood].Equal(dec("18.00")))

	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(v)
	}
	assert.True(t, sum.Equal(TotalSpent(expenses)))
}

func TestCategoryTotalsOmitsAbsentCategories(t *testing.T) {
	totals := CategoryTotals([]Expense{exp("1", CategoryFood, 1, "")})
	_, present := totals[CategoryTravel]
	assert.False(t, present)
}

func TestBalanceCanBeNegative(t *testing.T) {
	expenses := []Expense{exp("1500", CategoryBills, 5, "")}
	assert.True(t, Balance(expenses, dec("1000")).Equal(dec("-500")))
	assert.True(t, Balance(nil, dec("1000")).Equal(dec("1000")))
}

func TestTopExpenses(t *testing.T) {
	amounts := []string{"10", "50", "30", "90", "20", "5", "60"}
	var expenses []Expense
	for i, a := range amounts {
		expenses = append(expenses, exp(a, CategoryFood, i+1, ""))
	}

	top := TopExpenses(expenses, 5)
	require.Len(t, top, 5)
	want := []string{"90", "60", "50", "30", "20"}
	for i, w := range want {
		assert.True(t, top[i].Amount.Equal(dec(w)), "rank %d", i+1)
	}
}

func TestTopExpensesStableOnTies(t *testing.T) {
	expenses := []Expense{
		exp("25", CategoryFood, 1, "first"),
		exp("25", CategoryBills, 2, "second"),
	}
	top := TopExpenses(expenses, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "first", top[0].Note)
	assert.Equal(t, "second", top[1].Note)
}

func TestTopExpensesPlaceholderNote(t *testing.T) {
	top := TopExpenses([]Expense{exp("9", CategoryHealth, 1, "")}, 5)
	require.Len(t, top, 1)
	assert.Equal(t, NoDescription, top[0].Note)
}

func TestDailySeries(t *testing.T) {
	// June has 30 days; one expense of 250 on day 15.
	series := DailySeries([]Expense{exp("250", CategoryTravel, 15, "")}, 2025, 6)
	require.Len(t, series, 30)
	for i, v := range series {
		if i == 14 {
			assert.True(t, v.Equal(dec("250")))
		} else {
			assert.True(t, v.IsZero(), "day %d", i+1)
		}
	}
}

func TestDailySeriesExcludesOtherMonths(t *testing.T) {
	outside := Expense{Amount: dec("99"), MainCategory: CategoryFood, Date: NewDate(2025, 5, 10)}
	outside.SetPeriod()
	series := DailySeries([]Expense{outside}, 2025, 6)
	for _, v := range series {
		assert.True(t, v.IsZero())
	}
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2025, 1))
	assert.Equal(t, 28, DaysIn(2025, 2))
	assert.Equal(t, 29, DaysIn(2024, 2))
	assert.Equal(t, 30, DaysIn(2025, 6))
}

func TestBiggestCategory(t *testing.T) {
	expenses := []Expense{
		exp("10", CategoryFood, 1, ""),
		exp("60", CategoryTravel, 2, ""),
		exp("40", CategoryFood, 3, ""),
	}
	cat, total, ok := BiggestCategory(expenses)
	require.True(t, ok)
	assert.Equal(t, CategoryTravel, cat)
	assert.True(t, total.Equal(dec("60")))

	_, _, ok = BiggestCategory(nil)
	assert.False(t, ok)
}

func TestBiggestCategoryTieFirstSeenWins(t *testing.T) {
	expenses := []Expense{
		exp("50", CategoryShopping, 1, ""),
		exp("50", CategoryBills, 2, ""),
	}
	cat, _, ok := BiggestCategory(expenses)
	require.True(t, ok)
	assert.Equal(t, CategoryShopping, cat)
}

func TestAverageDailySpend(t *testing.T) {
	now := time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

	// Current month: divide by elapsed days.
	avg := AverageDailySpend(dec("100"), MonthKey("2025-07"), now)
	assert.True(t, avg.Equal(dec("10")))

	// Past month: divide by the full day count.
	avg = AverageDailySpend(dec("300"), MonthKey("2025-06"), now)
	assert.True(t, avg.Equal(dec("10")))
}

func TestSpendingPercent(t *testing.T) {
	assert.True(t, SpendingPercent(dec("250"), dec("1000")).Equal(dec("25")))
	assert.True(t, SpendingPercent(dec("1"), dec("3")).Equal(dec("33.3")))
	assert.True(t, SpendingPercent(dec("500"), decimal.Zero).IsZero())
}

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		exp("40", CategoryFood, 1, "groceries"),
		exp("60", CategoryBills, 2, ""),
	}
	s := Summarize(MonthKey("2025-06"), expenses, dec("1000"))

	assert.Equal(t, MonthKey("2025-06"), s.Month)
	assert.True(t, s.TotalSpent.Equal(dec("100")))
	assert.True(t, s.Balance.Equal(dec("900")))
	assert.Equal(t, 2, s.Count)
	require.Len(t, s.TopExpenses, 2)
	assert.Equal(t, CategoryBills, s.TopExpenses[0].Category)
	assert.Equal(t, NoDescription, s.TopExpenses[0].Note)
	assert.Len(t, s.CategoryTotals, 2)
}
