// Package insight turns a month summary into a natural-language analysis by
// prompting an external text-generation service.
package insight

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const promptTemplate = `You are a friendly financial advisor AI. Analyze this user's financial data for %s and provide helpful insights.

FINANCIAL DATA:
- Monthly Income: ₹%s
- Total Spent: ₹%s (%s%% of income)
- Remaining Balance: ₹%s
- Number of Transactions: %d

SPENDING BY CATEGORY:
%s

TOP 5 EXPENSES:
%s

Please provide:
1. A brief 2-3 sentence summary of their spending
2. Any concerning patterns or warnings (if spending is high in any category)
3. 2-3 practical saving tips based on their spending patterns
4. A list of expenses that are above average
5. A list of expenses that are below average
6. A financial goal based on their spending patterns
7. A finance tip based on their spending patterns
8. An encouraging note about their finances


Keep your response concise, friendly, and actionable. Use emojis sparingly. Format with clear sections.`

// BuildPrompt renders the fixed analysis prompt for a month summary. The
// output is deterministic: categories appear in their canonical order.
func BuildPrompt(s core.MonthSummary) string {
	var categoryLines []string
	for _, cat := range core.MainCategories {
		total, ok := s.CategoryTotals[cat]
		if !ok {
			continue
		}
		categoryLines = append(categoryLines, fmt.Sprintf("- %s: ₹%s", cat, FormatINR(total)))
	}
	breakdown := strings.Join(categoryLines, "\n")
	if breakdown == "" {
		breakdown = "- No spending recorded"
	}

	var topLines []string
	for i, e := range s.TopExpenses {
		topLines = append(topLines, fmt.Sprintf("%d. ₹%s on %s (%s)", i+1, FormatINR(e.Amount), e.Category, e.Note))
	}
	topList := strings.Join(topLines, "\n")
	if topList == "" {
		topList = "No expenses recorded"
	}

	pct := "0"
	if !s.Income.IsZero() {
		pct = core.SpendingPercent(s.TotalSpent, s.Income).StringFixed(1)
	}

	return fmt.Sprintf(promptTemplate,
		s.Month.Name(),
		FormatINR(s.Income),
		FormatINR(s.TotalSpent),
		pct,
		FormatINR(s.Balance),
		s.Count,
		breakdown,
		topList)
}

// FormatINR renders an amount with Indian digit grouping (12,34,567.89).
// Whole amounts drop the fraction.
func FormatINR(d decimal.Decimal) string {
	neg := d.IsNegative()
	abs := d.Abs()

	fixed := abs.StringFixed(2)
	parts := strings.SplitN(fixed, ".", 2)
	grouped := groupIndian(parts[0])
	if parts[1] != "00" {
		grouped += "." + parts[1]
	}
	if neg {
		return "-" + grouped
	}
	return grouped
}

// groupIndian inserts commas in the en-IN pattern: the last three digits
// form one group, everything before that groups in twos.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
