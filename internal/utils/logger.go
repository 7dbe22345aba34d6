package utils

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger is the logging interface the handlers depend on.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger

	// Slog exposes the underlying structured logger for packages that take
	// *slog.Logger directly.
	Slog() *slog.Logger
}

type slogWrapper struct {
	logger *slog.Logger
}

// NewLogger creates a JSON structured logger writing to stdout.
func NewLogger(level slog.Level) Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &slogWrapper{logger: slog.New(handler)}
}

// NewLoggerWith wraps an existing slog logger.
func NewLoggerWith(logger *slog.Logger) Logger {
	return &slogWrapper{logger: logger}
}

func (l *slogWrapper) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogWrapper) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogWrapper) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogWrapper) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogWrapper) With(args ...any) Logger {
	return &slogWrapper{logger: l.logger.With(args...)}
}

func (l *slogWrapper) Slog() *slog.Logger { return l.logger }

const contextLoggerKey = "logger"

// ContextLogger stores a request-scoped logger (carrying the request id) in
// the gin context.
func ContextLogger(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger
		if requestID := c.GetString("request_id"); requestID != "" {
			requestLogger = logger.With("request_id", requestID)
		}
		c.Set(contextLoggerKey, requestLogger)
		c.Next()
	}
}

// GetLogger returns the request-scoped logger, falling back to a default.
func GetLogger(c *gin.Context) Logger {
	if v, exists := c.Get(contextLoggerKey); exists {
		if l, ok := v.(Logger); ok {
			return l
		}
	}
	return NewLogger(slog.LevelInfo)
}

// LoggerMiddleware logs each request with method, path, status and latency.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}

		switch {
		case status >= 500:
			logger.Error("request completed", attrs...)
		case status >= 400:
			logger.Warn("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
	}
}
