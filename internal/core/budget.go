package core

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoIncomeSet rejects expenses for months with no declared income.
var ErrNoIncomeSet = errors.New("no income set for this month")

// BudgetExceededError rejects an expense that would push total spending
// past the declared income. Remaining is the headroom still available.
type BudgetExceededError struct {
	Remaining decimal.Decimal
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("expense exceeds your budget: %s remaining", e.Remaining.StringFixed(2))
}

// CheckBudget decides whether a proposed expense may be recorded given the
// month's current total and declared income. Spending exactly up to the
// income is allowed; exceeding it is not.
func CheckBudget(proposed, totalSpent, income decimal.Decimal) error {
	if income.IsZero() {
		return ErrNoIncomeSet
	}
	if totalSpent.Add(proposed).GreaterThan(income) {
		return &BudgetExceededError{Remaining: income.Sub(totalSpent)}
	}
	return nil
}
