package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging with domain-specific helpers
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new JSON logger writing to stdout
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details
func (l *Logger) RequestLogger(method, path, ip string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// RunLogger logs the outcome of one analysis run
func (l *Logger) RunLogger(totalDeals, scored, skipped, driversTested int, duration time.Duration) {
	l.Info("Analysis Run Completed",
		"total_deals", totalDeals,
		"deals_scored", scored,
		"deals_skipped", skipped,
		"drivers_tested", driversTested,
		"duration_ms", duration.Milliseconds(),
	)
}

// StoreLogger logs results-store operations
func (l *Logger) StoreLogger(operation string, runID string, rows int, err error) {
	if err != nil {
		l.Error("Store Operation Failed",
			"operation", operation,
			"run_id", runID,
			"error", err.Error(),
		)
		return
	}
	l.Debug("Store Operation",
		"operation", operation,
		"run_id", runID,
		"rows", rows,
	)
}

// SystemLogger logs system-level events
func (l *Logger) SystemLogger(event, details string) {
	l.Info("System Event",
		"event", event,
		"details", details,
		"uptime", time.Since(startTime).String(),
	)
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level slog.Level) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	l.Logger = slog.New(handler)
}

var startTime = time.Now()
