package logging

import "github.com/sirupsen/logrus"

// LogrusLogger adapts a *logrus.Logger to the Logger interface, pairing each
// keysAndValues entry into logrus structured fields.
type LogrusLogger struct {
	entry *logrus.Logger
}

// NewLogrusLogger builds a LogrusLogger at the given level. Verbosity 0 maps
// to Info, 1 to Debug, 2+ to Trace, matching the CLI's -v/-vv convention.
func NewLogrusLogger(verbosity int) *LogrusLogger {
	l := logrus.New()
	switch {
	case verbosity >= 2:
		l.SetLevel(logrus.TraceLevel)
	case verbosity == 1:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: verbosity == 0,
		FullTimestamp:    true,
	})
	return &LogrusLogger{entry: l}
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		f[key] = keysAndValues[i+1]
	}
	return f
}

func (l *LogrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Info(msg)
}

func (l *LogrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Error(msg)
}
