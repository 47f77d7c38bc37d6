package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBudgetNoIncome(t *testing.T) {
	err := CheckBudget(dec("10"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrNoIncomeSet)
}

func TestCheckBudgetExceeded(t *testing.T) {
	err := CheckBudget(dec("150"), dec("900"), dec("1000"))
	require.Error(t, err)

	var exceeded *BudgetExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.True(t, exceeded.Remaining.Equal(dec("100")))
}

func TestCheckBudgetBoundary(t *testing.T) {
	// Spending exactly up to the income is allowed.
	assert.NoError(t, CheckBudget(dec("100"), dec("900"), dec("1000")))
	// One cent over is not.
	assert.Error(t, CheckBudget(dec("100.01"), dec("900"), dec("1000")))
}

func TestCheckBudgetApproves(t *testing.T) {
	assert.NoError(t, CheckBudget(dec("50"), dec("100"), dec("1000")))
}
