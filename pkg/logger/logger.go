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

// New creates a new logger instance writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the named level
func NewWithWriter(w io.Writer, levelName string) *Logger {
	level := getLogLevel(levelName)

	// Create handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Create handler based on environment
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		// Use text handler for development (more readable)
		handler = slog.NewTextHandler(w, opts)
	} else {
		// Use JSON handler for production (structured)
		handler = slog.NewJSONHandler(w, opts)
	}

	// Create logger
	logger := slog.New(handler)

	return &Logger{
		Logger: logger,
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

// HTTP logging methods

// Gin context keys read by the HTTP log methods. The auth middleware sets
// user_id; the request id middleware sets request_id.
const (
	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	attrs := []any{
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	}
	l.Logger.InfoContext(c.Request.Context(), "HTTP Request", append(attrs, requestAttrs(c)...)...)
}

// LogHTTPError logs a request that failed on the server side
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	attrs := []any{
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	}
	l.Logger.ErrorContext(c.Request.Context(), "HTTP Error", append(attrs, requestAttrs(c)...)...)
}

func requestAttrs(c *gin.Context) []any {
	var attrs []any
	if id := c.GetString(requestIDKey); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id := c.GetString(userIDKey); id != "" {
		attrs = append(attrs, slog.String("user_id", id))
	}
	return attrs
}

// Database logging methods

// LogDBQuery logs a database query
func (l *Logger) LogDBQuery(ctx context.Context, query string, duration time.Duration, err error) {
	if err != nil {
		l.Logger.ErrorContext(ctx,
			"Database Query Error",
			slog.String("query", query),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
	} else {
		l.Logger.DebugContext(ctx,
			"Database Query",
			slog.String("query", query),
			slog.Duration("duration", duration),
		)
	}
}

// Business logic logging methods

// LogEventCreated logs when an event is created
func (l *Logger) LogEventCreated(ctx context.Context, eventID, organizerID string) {
	l.Logger.InfoContext(ctx,
		"Event Created",
		slog.String("event_id", eventID),
		slog.String("organizer_id", organizerID),
	)
}

// LogEntrantJoined logs a successful waitlist join
func (l *Logger) LogEntrantJoined(ctx context.Context, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"Entrant Joined",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogEntrantLeft logs a voluntary leave
func (l *Logger) LogEntrantLeft(ctx context.Context, eventID, userID string) {
	l.Logger.InfoContext(ctx,
		"Entrant Left",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)
}

// LogStatusChanged logs a waitlist status transition
func (l *Logger) LogStatusChanged(ctx context.Context, eventID, userID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Entry Status Changed",
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

// LogDrawCompleted logs a committed lottery draw
func (l *Logger) LogDrawCompleted(ctx context.Context, eventID string, requested, poolSize int) {
	l.Logger.InfoContext(ctx,
		"Lottery Draw Completed",
		slog.String("event_id", eventID),
		slog.Int("requested", requested),
		slog.Int("pool_size", poolSize),
	)
}

// LogReplacement logs a backfilled vacancy
func (l *Logger) LogReplacement(ctx context.Context, eventID, vacatingUserID, promotedUserID string) {
	l.Logger.InfoContext(ctx,
		"Replacement Promoted",
		slog.String("event_id", eventID),
		slog.String("vacating_user_id", vacatingUserID),
		slog.String("promoted_user_id", promotedUserID),
	)
}

// LogNotification logs the outcome of a notification attempt
func (l *Logger) LogNotification(ctx context.Context, userID, eventID, outcome string) {
	l.Logger.DebugContext(ctx,
		"Notification",
		slog.String("user_id", userID),
		slog.String("event_id", eventID),
		slog.String("outcome", outcome),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
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

// Performance logging methods

// LogSlowQuery logs slow database queries
func (l *Logger) LogSlowQuery(ctx context.Context, query string, duration time.Duration) {
	l.Logger.WarnContext(ctx,
		"Slow Database Query",
		slog.String("query", query),
		slog.Duration("duration", duration),
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
