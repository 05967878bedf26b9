package trace

import (
	"context"
	"log/slog"
	"strconv"
)

// LevelTrace is the slog level of per-cycle trace records. It sits just above
// Info so that a handler at the default level keeps them.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs msg at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// SlogLogger emits the trace as structured slog records: one "Cycle" record
// per cycle and one "FinalState" record at the end.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a logger writing through l. A nil l uses the default
// logger.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{logger: l}
}

// LogCycle implements Logger.
func (l *SlogLogger) LogCycle(r Record) {
	entries := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = e.String()
	}

	bubbles := make([]string, len(r.Bubbles))
	for i, b := range r.Bubbles {
		bubbles[i] = b.String()
	}

	l.logger.Log(context.Background(), LevelTrace, "Cycle",
		slog.Uint64("cycle", r.Cycle),
		slog.Any("entries", entries),
		slog.Any("bubbles", bubbles),
	)
}

// LogFinalState implements Logger.
func (l *SlogLogger) LogFinalState(s FinalState) {
	regs := make(map[string]int64, len(s.Registers))
	for _, r := range s.Registers {
		regs[r.Name] = r.Value
	}

	mem := make(map[string]int64, len(s.Memory))
	for _, m := range s.Memory {
		mem[strconv.FormatInt(m.Addr, 10)] = m.Value
	}

	l.logger.Log(context.Background(), LevelTrace, "FinalState",
		slog.Uint64("cycles", s.Cycles),
		slog.Any("registers", regs),
		slog.Any("memory", mem),
	)
}
