package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMainCategory(t *testing.T) {
	cases := []struct {
		in   string
		want MainCategory
		ok   bool
	}{
		{"food", CategoryFood, true},
		{" Transportation ", CategoryTransport, true},
		{"SUBSCRIPTIONS", CategorySubscriptions, true},
		{"groceries", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMainCategory(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrInvalidCategory, tc.in)
		}
	}
}

func TestParseSource(t *testing.T) {
	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceManual, src)

	src, err = ParseSource("csv")
	require.NoError(t, err)
	assert.Equal(t, SourceCSV, src)

	_, err = ParseSource("email")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("12.34")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("12.34")))

	for _, bad := range []string{"", "abc", "0", "-5"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestParseMonthKey(t *testing.T) {
	key, err := ParseMonthKey("2025-06")
	require.NoError(t, err)
	assert.Equal(t, 2025, key.Year())
	assert.Equal(t, 6, key.Month())
	assert.Equal(t, "June 2025", key.Name())

	for _, bad := range []string{"2025-13", "2025-0", "25-06", "2025/06", "2025-6"} {
		_, err := ParseMonthKey(bad)
		assert.ErrorIs(t, err, ErrInvalidMonthKey, bad)
	}
}

func TestMonthKeyFor(t *testing.T) {
	key := MonthKeyFor(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, MonthKey("2025-06"), key)
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 6, 15)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-15"`, string(b))

	var parsed Date
	require.NoError(t, json.Unmarshal(b, &parsed))
	assert.True(t, parsed.Equal(d.Time))
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Amount:       dec("10"),
		MainCategory: CategoryFood,
		Source:       SourceManual,
		Date:         NewDate(2025, 6, 1),
	}
	good.SetPeriod()
	require.NoError(t, good.Validate())

	periodDrift := good
	periodDrift.Month = 5
	assert.Error(t, periodDrift.Validate())

	noDate := good
	noDate.Date = Date{}
	assert.Error(t, noDate.Validate())

	badCat := good
	badCat.MainCategory = "snacks"
	assert.ErrorIs(t, badCat.Validate(), ErrInvalidCategory)
}

func TestIncomeValidate(t *testing.T) {
	good := Income{Amount: dec("1000"), Month: "2025-06"}
	require.NoError(t, good.Validate())

	assert.ErrorIs(t, Income{Amount: dec("0"), Month: "2025-06"}.Validate(), ErrInvalidAmount)
	assert.ErrorIs(t, Income{Amount: dec("1"), Month: "June"}.Validate(), ErrInvalidMonthKey)
}
