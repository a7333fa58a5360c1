package logging

import (
	"log/slog"

	"github.com/rs/zerolog"
)

// badKey names a value whose key was missing or not a string.
const badKey = "!BADKEY"

// DispatcherLogger writes dispatcher events to zerolog, tagged with the
// session attributes of an optional ContextProvider.
type DispatcherLogger struct {
	logger   zerolog.Logger
	provider ContextProvider
}

// NewDispatcherLogger wraps logger. provider may be nil.
func NewDispatcherLogger(logger zerolog.Logger, provider ContextProvider) *DispatcherLogger {
	return &DispatcherLogger{logger: logger, provider: provider}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.write(l.logger.Debug(), msg, keysAndValues)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.write(l.logger.Info(), msg, keysAndValues)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.write(l.logger.Error(), msg, keysAndValues)
}

func (l *DispatcherLogger) write(e *zerolog.Event, msg string, keysAndValues []any) {
	if e == nil {
		return
	}
	e.Fields(l.fields(keysAndValues)).Msg(msg)
}

// fields merges the provider's attributes with keysAndValues. Explicit
// pairs override session attributes of the same key.
func (l *DispatcherLogger) fields(keysAndValues []any) map[string]any {
	fields := make(map[string]any, len(keysAndValues)/2+3)
	if l.provider != nil {
		for _, a := range l.provider() {
			fields[a.Key] = attrValue(a.Value)
		}
	}
	for i := 0; i < len(keysAndValues); {
		key, ok := keysAndValues[i].(string)
		if !ok || i+1 == len(keysAndValues) {
			fields[badKey] = keysAndValues[i]
			i++
			continue
		}
		fields[key] = keysAndValues[i+1]
		i += 2
	}
	return fields
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	if v.Kind() == slog.KindGroup {
		group := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = attrValue(a.Value)
		}
		return group
	}
	return v.Any()
}
