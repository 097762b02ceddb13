package sheets

import (
	"context"
	"log/slog"

	"monotributo/internal/ledger"
)

// LogWriter is the SummaryWriter used when no reporting spreadsheet is
// configured: summaries only go to the log.
type LogWriter struct {
	logger *slog.Logger
}

func NewLogWriter(logger *slog.Logger) *LogWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogWriter{logger: logger}
}

func (w *LogWriter) AppendSummary(ctx context.Context, s ledger.Summary) (string, error) {
	w.logger.InfoContext(ctx, "Ledger summary",
		"client_id", s.ClientID,
		"client_name", s.ClientName,
		"category", s.Category,
		"sales_total", s.Totals.SalesTotal.StringFixed(2),
		"purchases_total", s.Totals.PurchasesTotal.StringFixed(2),
		"usage_percent", s.Usage.Percent,
		"over_limit", s.OverLimit)
	return "log", nil
}

var _ SummaryWriter = (*LogWriter)(nil)
