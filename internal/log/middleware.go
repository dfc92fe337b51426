package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// Middleware stores the given logger in every request context so
// handlers can retrieve it with FromContext.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ctxKey{}, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the request logger, or a logger over the process
// default handler when the middleware is not installed.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return New(ComponentApp, nil)
}

// StructuredLogger emits the domain events the app records beyond plain
// request logs: entries saved, exports, failures with operation context.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogIncomeRecorded logs one saved service income.
func (sl *StructuredLogger) LogIncomeRecorded(ctx context.Context, platform string, amountCents int64, paymentMethod string) {
	sl.logger.InfoContext(ctx, "Income recorded",
		FieldOperation, OpAddIncome,
		FieldPlatform, platform,
		FieldAmountCents, amountCents,
		FieldPaymentMethod, paymentMethod)
}

// LogExpenseRecorded logs one saved expense.
func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, category string, amountCents int64) {
	sl.logger.InfoContext(ctx, "Expense recorded",
		FieldOperation, OpAddExpense,
		FieldCategory, category,
		FieldAmountCents, amountCents)
}

// LogError logs a failure with its operation context.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, args ...any) {
	attrs := append([]any{FieldOperation, operation}, args...)
	if err != nil {
		attrs = append(attrs, FieldError, err.Error())
	}
	sl.logger.Logger.Log(ctx, slog.LevelError, msg, attrs...)
}
