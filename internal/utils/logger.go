package utils

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the logging surface handlers depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// LogRequest logs one HTTP exchange at a level derived from the status.
	LogRequest(method, path string, statusCode int, latency time.Duration, args ...any)
	LogError(err error, msg string, args ...any)
}

type SlogLogger struct {
	*slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{Logger: logger}
}

// NewBaseLogger builds the process logger: JSON at info level in production,
// text at debug level otherwise.
func NewBaseLogger(w io.Writer, production bool) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if production {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) LogRequest(method, path string, statusCode int, latency time.Duration, args ...any) {
	attrs := append([]any{
		"method", method,
		"path", path,
		"status_code", statusCode,
		"latency", latency,
	}, args...)
	l.Log(context.Background(), statusLevel(statusCode), "HTTP Request", attrs...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err}, args...)...)
}

// LoggerMiddleware logs every request after the handler chain has run.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		logger.LogRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"request_id", c.Writer.Header().Get("X-Request-ID"),
		)
	}
}
