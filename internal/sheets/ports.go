package sheets

import (
	"context"

	"fintrack/internal/core"
)

// SummaryWriter is the outbound port for exporting month summaries.
type SummaryWriter interface {
	// AppendSummary writes one summary row for a user's month.
	AppendSummary(ctx context.Context, userID string, s core.MonthSummary) error
}
