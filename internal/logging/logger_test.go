package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLoggerLevels(t *testing.T) {
	log, logs := newObservedLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	tests := []struct {
		level zapcore.Level
		msg   string
		key   string
	}{
		{zapcore.DebugLevel, "dbg", "a"},
		{zapcore.InfoLevel, "inf", "b"},
		{zapcore.WarnLevel, "wrn", "c"},
		{zapcore.ErrorLevel, "err", "d"},
	}
	for i, tc := range tests {
		e := entries[i]
		if e.Level != tc.level {
			t.Fatalf("entry %d: expected level %v, got %v", i, tc.level, e.Level)
		}
		if e.Message != tc.msg {
			t.Fatalf("entry %d: expected msg %q, got %q", i, tc.msg, e.Message)
		}
		if _, ok := e.ContextMap()[tc.key]; !ok {
			t.Fatalf("entry %d: expected field %q in %v", i, tc.key, e.ContextMap())
		}
	}
}

func TestZapLoggerWithAndRequestID(t *testing.T) {
	log, logs := newObservedLogger(t)

	ctx := WithRequestID(context.Background(), "req-1")
	log.With("component", "engine").Info(ctx, "hello")

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "engine" {
		t.Fatalf("expected component field, got %v", fields)
	}
	if fields["request_id"] != "req-1" {
		t.Fatalf("expected request_id field, got %v", fields)
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error(context.Background(), "nothing", "k", "v")
}
