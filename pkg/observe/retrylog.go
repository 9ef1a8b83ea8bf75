package observe

import "fmt"

// LeveledLogger exposes the Logger through the keyvals interface used by
// hashicorp/go-retryablehttp.
type LeveledLogger struct {
	l *Logger
}

func NewLeveledLogger(l *Logger) *LeveledLogger {
	return &LeveledLogger{l: l}
}

func (r *LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	r.l.Error(fmt.Errorf("%s", msg), keyvalsToMap(keysAndValues))
}

func (r *LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	r.l.Info(msg, keyvalsToMap(keysAndValues))
}

func (r *LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.l.Debug(msg, keyvalsToMap(keysAndValues))
}

func (r *LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.l.Warning(msg, keyvalsToMap(keysAndValues))
}

func keyvalsToMap(keyvals []interface{}) map[string]any {
	fields := make(map[string]any, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		fields[key] = keyvals[i+1]
	}
	return fields
}
