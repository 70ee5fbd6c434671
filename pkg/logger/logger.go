package logger

import (
	"context"
	"io"
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
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	return NewWithWriter(os.Stdout, level, gin.Mode() != gin.DebugMode)
}

// NewWithWriter creates a logger writing to w. JSON output is used for
// production, text output for development.
func NewWithWriter(w io.Writer, level slog.Level, jsonOutput bool) *Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// ParseLevel converts a LOG_LEVEL value to slog.Level, defaulting to info
func ParseLevel(levelStr string) slog.Level {
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

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
	}
}

// WithClientID adds client ID to logger context
func (l *Logger) WithClientID(clientID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("client_id", clientID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

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
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogEventPlanned logs when an event and its tickets are created
func (l *Logger) LogEventPlanned(ctx context.Context, eventID, hostID string, tickets int) {
	l.Logger.InfoContext(ctx,
		"Event Planned",
		slog.String("event_id", eventID),
		slog.String("host_id", hostID),
		slog.Int("tickets", tickets),
	)
}

// LogEventArchived logs when an event is moved to the ended state
func (l *Logger) LogEventArchived(ctx context.Context, eventID string, tickets int64) {
	l.Logger.InfoContext(ctx,
		"Event Archived",
		slog.String("event_id", eventID),
		slog.Int64("tickets_out_of_date", tickets),
	)
}

// LogSeatHeld logs a successful seat hold
func (l *Logger) LogSeatHeld(ctx context.Context, ticketID, clientID string, expiresAt time.Time) {
	l.Logger.InfoContext(ctx,
		"Seat Held",
		slog.String("ticket_id", ticketID),
		slog.String("client_id", clientID),
		slog.Time("expires_at", expiresAt),
	)
}

// LogTicketsPurchased logs a completed purchase
func (l *Logger) LogTicketsPurchased(ctx context.Context, clientID string, ticketIDs []string) {
	l.Logger.InfoContext(ctx,
		"Tickets Purchased",
		slog.String("client_id", clientID),
		slog.Any("ticket_ids", ticketIDs),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, clientID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("client_id", clientID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
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
