package temporal

import (
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/log"
)

// TemporalAdapter routes Temporal SDK logs into zerolog.
type TemporalAdapter struct {
	logger zerolog.Logger
}

func NewTemporalAdapter(logger zerolog.Logger) log.Logger {
	return &TemporalAdapter{
		logger: logger.With().Str("component", "temporal-sdk").Logger(),
	}
}

func (a *TemporalAdapter) event(e *zerolog.Event, keyvals []interface{}) *zerolog.Event {
	if len(keyvals) == 0 {
		return e
	}
	return e.Fields(fieldsOf(keyvals))
}

func fieldsOf(keyvals []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "invalid_key"
		}
		if i+1 < len(keyvals) {
			fields[key] = keyvals[i+1]
		} else {
			fields[key] = "missing_value"
		}
	}
	return fields
}

func (a *TemporalAdapter) Debug(msg string, keyvals ...interface{}) {
	a.event(a.logger.Debug(), keyvals).Msg(msg)
}

func (a *TemporalAdapter) Info(msg string, keyvals ...interface{}) {
	a.event(a.logger.Info(), keyvals).Msg(msg)
}

func (a *TemporalAdapter) Warn(msg string, keyvals ...interface{}) {
	a.event(a.logger.Warn(), keyvals).Msg(msg)
}

func (a *TemporalAdapter) Error(msg string, keyvals ...interface{}) {
	a.event(a.logger.Error(), keyvals).Msg(msg)
}

// With implements log.WithLogger so workflow and activity loggers keep
// their tags.
func (a *TemporalAdapter) With(keyvals ...interface{}) log.Logger {
	if len(keyvals) == 0 {
		return a
	}
	return &TemporalAdapter{logger: a.logger.With().Fields(fieldsOf(keyvals)).Logger()}
}
