package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-catalog-go/catalog"
)

var _ catalog.ContextualLogger = (*ContextualLoggerSpy)(nil)

// ContextualLogRecord is one captured call of a ContextualLoggerSpy.
type ContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// ContextualLoggerSpy captures context-aware log calls, so tests can check that the
// caller's context reaches the logger.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []ContextualLogRecord
}

// NewContextualLoggerSpy creates an empty ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

// Records returns a copy of all captured calls in call order.
func (s *ContextualLoggerSpy) Records() []ContextualLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ContextualLogRecord(nil), s.records...)
}

// FindRecord returns the last captured call with the given level and message.
func (s *ContextualLoggerSpy) FindRecord(level, msg string) (ContextualLogRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Level == level && s.records[i].Message == msg {
			return s.records[i], true
		}
	}

	return ContextualLogRecord{}, false
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, ContextualLogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}
