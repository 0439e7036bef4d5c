package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production.
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("user_id", userID)),
	}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Reservation flow logging methods

// LogHoldCreated logs when seats are claimed under a new hold
func (l *Logger) LogHoldCreated(ctx context.Context, holdID, concertID, userID string, seats int, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Hold Created",
		slog.String("hold_id", holdID),
		slog.String("concert_id", concertID),
		slog.String("user_id", userID),
		slog.Int("seats", seats),
		slog.Time("expires_at", expiresAt),
	)
}

// LogHoldExpired logs when the sweep or a lazy read expires a hold
func (l *Logger) LogHoldExpired(ctx context.Context, holdID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Hold Expired",
		slog.String("hold_id", holdID),
		slog.Int("seats", seats),
	)
}

// LogBookingConfirmed logs when a hold converts into a booking
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, holdID, userID string, amountCents int64) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("booking_id", bookingID),
		slog.String("hold_id", holdID),
		slog.String("user_id", userID),
		slog.Int64("amount_cents", amountCents),
	)
}

// LogSeatsCancelled logs a seat-level cancellation with its refund outcome
func (l *Logger) LogSeatsCancelled(ctx context.Context, bookingID string, seats int, deductionPercent int, refundCents int64) {
	l.Logger.InfoContext(ctx,
		"Seats Cancelled",
		slog.String("booking_id", bookingID),
		slog.Int("seats", seats),
		slog.Int("deduction_percent", deductionPercent),
		slog.Int64("refund_cents", refundCents),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
