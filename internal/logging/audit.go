package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// AUDIT EVENTS - one JSON line per faucet request lifecycle event
// =============================================================================

// AuditEventType names an audit event.
type AuditEventType string

const (
	AuditSessionStart     AuditEventType = "session_start"
	AuditSessionEnd       AuditEventType = "session_end"
	AuditTokenChanged     AuditEventType = "token_changed"
	AuditAttemptRejected  AuditEventType = "attempt_rejected" // failed local validation
	AuditAttemptSubmitted AuditEventType = "attempt_submitted"
	AuditAttemptSucceeded AuditEventType = "attempt_succeeded"
	AuditAttemptFailed    AuditEventType = "attempt_failed"
)

// AuditEvent is a structured audit entry.
type AuditEvent struct {
	Type      AuditEventType
	AttemptID string
	Token     string
	Format    string
	Success   bool
	Duration  time.Duration
	Error     string
	Message   string
}

var (
	auditMu     sync.Mutex
	auditFile   *os.File
	auditLogger *zap.Logger
)

// AuditLogger writes audit events. The zero value discards them.
type AuditLogger struct {
	z *zap.Logger
}

// Audit returns the audit logger, opening the audit file on first use.
// Returns a no-op logger when debug mode is off.
func Audit() *AuditLogger {
	if !IsDebugMode() {
		return &AuditLogger{}
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditLogger != nil {
		return &AuditLogger{z: auditLogger}
	}

	configMu.RLock()
	dir := logsDir
	configMu.RUnlock()

	path := filepath.Join(dir, fmt.Sprintf("%s_audit.jsonl", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open audit log %s: %v\n", path, err)
		return &AuditLogger{}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.EpochMillisTimeEncoder
	encCfg.MessageKey = "event"
	encCfg.LevelKey = ""

	auditFile = f
	auditLogger = zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel))
	return &AuditLogger{z: auditLogger}
}

// Log writes one event.
func (a *AuditLogger) Log(e AuditEvent) {
	if a.z == nil {
		return
	}
	fields := []zap.Field{zap.Bool("success", e.Success)}
	if e.AttemptID != "" {
		fields = append(fields, zap.String("attempt", e.AttemptID))
	}
	if e.Token != "" {
		fields = append(fields, zap.String("token", e.Token))
	}
	if e.Format != "" {
		fields = append(fields, zap.String("format", e.Format))
	}
	if e.Duration > 0 {
		fields = append(fields, zap.Int64("dur_ms", e.Duration.Milliseconds()))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}
	if e.Message != "" {
		fields = append(fields, zap.String("msg", e.Message))
	}
	a.z.Info(string(e.Type), fields...)
}

// Attempt logs the terminal outcome of a transfer attempt.
func (a *AuditLogger) Attempt(attemptID, token string, d time.Duration, err error, message string) {
	e := AuditEvent{
		Type:      AuditAttemptSucceeded,
		AttemptID: attemptID,
		Token:     token,
		Success:   err == nil,
		Duration:  d,
		Message:   message,
	}
	if err != nil {
		e.Type = AuditAttemptFailed
		e.Error = err.Error()
	}
	a.Log(e)
}

func closeAuditLocked() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditLogger != nil {
		_ = auditLogger.Sync()
		auditLogger = nil
	}
	if auditFile != nil {
		_ = auditFile.Close()
		auditFile = nil
	}
}
