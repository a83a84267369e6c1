package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogBalanceUpdate(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, kind models.LedgerEventKind, delta, newBalance decimal.Decimal) {
	al.logger.InfoContext(ctx, "balance update",
		slog.String("event_type", "balance_update"),
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.String("operation", string(kind)),
		slog.String("delta", delta.StringFixed(2)),
		slog.String("new_balance", newBalance.StringFixed(2)),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogLedgerFailure(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, kind models.LedgerEventKind, err error) {
	al.logger.ErrorContext(ctx, "ledger write failed",
		slog.String("event_type", "ledger_failure"),
		slog.String("user_id", userID.String()),
		slog.String("transaction_id", transactionID.String()),
		slog.String("operation", string(kind)),
		slog.String("error", err.Error()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogFilterRejected(ctx context.Context, userID uuid.UUID, query string, err error) {
	al.logger.WarnContext(ctx, "filter rejected",
		slog.String("event_type", "filter_rejected"),
		slog.String("user_id", userID.String()),
		slog.String("query", query),
		slog.String("error", err.Error()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	for _, key := range []string{"correlation_id", "request_id", "trace_id"} {
		if id, ok := ctx.Value(key).(string); ok && id != "" {
			return id
		}
	}

	return ""
}
