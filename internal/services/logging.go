package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// ServiceLogger writes one structured record per service operation.
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
	}
}

type contextKey string

// Request-scoped values read by the service logger.
const (
	RequestIDKey contextKey = "request_id"
	ClientIPKey  contextKey = "client_ip"
	UserAgentKey contextKey = "user_agent"
)

// WithRequestContext attaches request metadata for operation and security logs.
func WithRequestContext(ctx context.Context, requestID, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, ClientIPKey, clientIP)
	return context.WithValue(ctx, UserAgentKey, userAgent)
}

func contextString(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// classify maps an operation error to a log level and a status label.
func classify(err error) (slog.Level, string) {
	switch {
	case err == nil:
		return slog.LevelInfo, "success"
	case IsValidation(err):
		return slog.LevelWarn, "validation_error"
	case IsBusinessRule(err):
		return slog.LevelWarn, "business_rule"
	case IsUnauthorized(err), IsForbidden(err):
		return slog.LevelWarn, "unauthorized"
	case IsConflict(err):
		return slog.LevelWarn, "conflict"
	case IsNotFound(err):
		return slog.LevelInfo, "not_found"
	default:
		return slog.LevelError, "error"
	}
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID, resourceID uint, resourceType string, duration time.Duration, err error) {
	level, status := classify(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}
	if resourceID != 0 {
		attrs = append(attrs, slog.Uint64("resource_id", uint64(resourceID)))
	}
	if resourceType != "" {
		attrs = append(attrs, slog.String("resource_type", resourceType))
	}
	if requestID := contextString(ctx, RequestIDKey); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErrs ValidationErrors
		var businessErr *BusinessRuleError
		var permErr *PermissionError
		switch {
		case errors.As(err, &validationErrs):
			fields := make([]string, 0, len(validationErrs))
			for _, ve := range validationErrs {
				fields = append(fields, ve.Field)
			}
			attrs = append(attrs, slog.String("invalid_fields", strings.Join(fields, ",")))
		case errors.As(err, &businessErr):
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		case errors.As(err, &permErr):
			attrs = append(attrs,
				slog.String("permission_resource", permErr.Resource),
				slog.String("permission_action", permErr.Action))
		}
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

type SecurityEventType string
type SecuritySeverity string

const (
	SecurityEventFailedLogin SecurityEventType = "failed_login"

	SecuritySeverityMedium SecuritySeverity = "medium"
	SecuritySeverityHigh   SecuritySeverity = "high"
)

// OperationLogger times one operation and logs its outcome.
type OperationLogger struct {
	logger    *ServiceLogger
	ctx       context.Context
	operation string
	userID    uint
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID uint) *OperationLogger {
	return &OperationLogger{
		logger:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
	}
}

func (ol *OperationLogger) LogResult(resourceID uint, resourceType string, err error) {
	ol.logger.LogOperation(ol.ctx, ol.operation, ol.userID, resourceID, resourceType, time.Since(ol.startTime), err)
}

func (ol *OperationLogger) LogSecurity(eventType SecurityEventType, severity SecuritySeverity, description string, metadata map[string]interface{}) {
	level := slog.LevelWarn
	if severity == SecuritySeverityHigh {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("security_event", string(eventType)),
		slog.String("severity", string(severity)),
		slog.String("operation", ol.operation),
		slog.Uint64("user_id", uint64(ol.userID)),
		slog.String("client_ip", contextString(ol.ctx, ClientIPKey)),
		slog.String("user_agent", contextString(ol.ctx, UserAgentKey)),
	}
	for k, v := range metadata {
		attrs = append(attrs, slog.Any(k, redact(k, v)))
	}

	ol.logger.logger.LogAttrs(ol.ctx, level, description, attrs...)
}

// redact hides values under credential-like keys.
func redact(key string, value interface{}) interface{} {
	k := strings.ToLower(key)
	for _, marker := range []string{"password", "token", "secret"} {
		if strings.Contains(k, marker) {
			return "[REDACTED]"
		}
	}
	return value
}
