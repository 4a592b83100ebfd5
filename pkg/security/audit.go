// Package security records authentication events and throttles repeated
// failed admin logins.
package security

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginFailed  EventType = "login_failed"
	EventLoginBlocked EventType = "login_blocked"
	EventLoginSuccess EventType = "login_success"
	EventBlockCreated EventType = "block_created"
)

// RequestMeta identifies the HTTP request an event came from.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// Event is one audit record. Subject is masked before it is written.
type Event struct {
	Type    EventType
	Email   string
	Meta    RequestMeta
	Details map[string]interface{}
}

// AuditLogger writes security events as structured zap entries, separate
// from the application log so they can be shipped and retained on their own.
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewAuditLogger writes to core; tests pass an observer core.
func NewAuditLogger(core zapcore.Core, serviceName, environment string) *AuditLogger {
	return &AuditLogger{
		zapLogger:   zap.New(core),
		serviceName: serviceName,
		environment: environment,
	}
}

// NewProductionAuditLogger logs JSON to stdout.
func NewProductionAuditLogger(serviceName string, production bool) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	env := "development"
	if production {
		env = "production"
	}
	return &AuditLogger{zapLogger: logger, serviceName: serviceName, environment: env}
}

func levelFor(t EventType) zapcore.Level {
	switch t {
	case EventLoginSuccess:
		return zapcore.InfoLevel
	case EventLoginBlocked, EventBlockCreated:
		return zapcore.ErrorLevel
	}
	return zapcore.WarnLevel
}

// Log is a no-op on a nil logger.
func (a *AuditLogger) Log(e Event) {
	if a == nil {
		return
	}

	fields := []zap.Field{
		zap.String("service", a.serviceName),
		zap.String("env", a.environment),
		zap.String("event", string(e.Type)),
		zap.Time("at", time.Now().UTC()),
	}
	if e.Email != "" {
		fields = append(fields, zap.String("subject_type", "email"), zap.String("subject_value", MaskEmail(e.Email)))
	}
	if e.Meta.IP != "" {
		fields = append(fields, zap.String("ip", e.Meta.IP))
	}
	if e.Meta.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", e.Meta.UserAgent))
	}
	if e.Meta.RequestID != "" {
		fields = append(fields, zap.String("request_id", e.Meta.RequestID))
	}
	if len(e.Details) > 0 {
		detailsJSON, _ := json.Marshal(e.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	a.zapLogger.Log(levelFor(e.Type), string(e.Type), fields...)
}

// Sync flushes any buffered log entries
func (a *AuditLogger) Sync() error {
	if a == nil {
		return nil
	}
	return a.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if len(email) < 3 || at < 0 {
		return "***"
	}
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue is a short SHA-256 digest used to keep emails out of Redis keys.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
