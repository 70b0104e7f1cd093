package testdoubles

import (
	"context"
	"sync"

	"github.com/mrcrpro/panaguas/eventstore"
)

// LoggerSpy captures log calls. It implements both eventstore.Logger and eventstore.ContextualLogger.
type LoggerSpy struct {
	records     []SpyLogRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpyLogRecord represents a recorded log call. Context is nil for the non-contextual methods.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// NewLoggerSpy creates a new LoggerSpy. Set recordCalls to true to capture calls.
func NewLoggerSpy(recordCalls bool) *LoggerSpy {
	return &LoggerSpy{recordCalls: recordCalls}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.record(nil, "debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.record(nil, "info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.record(nil, "warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.record(nil, "error", msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *LoggerSpy) record(ctx context.Context, level string, msg string, args []any) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// Records returns a copy of all records.
func (s *LoggerSpy) Records() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

func (s *LoggerSpy) HasDebugLog(message string) bool { return s.hasLog("debug", message) }
func (s *LoggerSpy) HasInfoLog(message string) bool  { return s.hasLog("info", message) }
func (s *LoggerSpy) HasWarnLog(message string) bool  { return s.hasLog("warn", message) }
func (s *LoggerSpy) HasErrorLog(message string) bool { return s.hasLog("error", message) }

func (s *LoggerSpy) hasLog(level string, message string) bool {
	for _, record := range s.Records() {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// CountLogs returns the number of records with the given level.
func (s *LoggerSpy) CountLogs(level string) int {
	count := 0

	for _, record := range s.Records() {
		if record.Level == level {
			count++
		}
	}

	return count
}

var (
	_ eventstore.Logger           = (*LoggerSpy)(nil)
	_ eventstore.ContextualLogger = (*LoggerSpy)(nil)
)
