package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logger used across the service.
// Fields are passed as alternating key/value pairs: log.Info("msg", "room_id", id).
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Fatal(msg string, keyvals ...interface{})
	With(keyvals ...interface{}) Logger
}

type zeroLogger struct {
	z zerolog.Logger
}

// New creates a JSON logger on stdout at the given level ("debug", "info", "warn", "error").
func New(level string) Logger {
	return newLogger(os.Stdout, level)
}

// NewConsole creates a human readable logger, used in development.
func NewConsole(level string) Logger {
	return newLogger(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, level)
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return &zeroLogger{z: zerolog.Nop()}
}

func newLogger(w io.Writer, level string) Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	z := zerolog.New(w).With().
		Timestamp().
		Str("service", "secondhand-market").
		Logger().
		Level(parseLevel(level))
	return &zeroLogger{z: z}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zeroLogger) Debug(msg string, keyvals ...interface{}) {
	withFields(l.z.Debug(), keyvals).Msg(msg)
}

func (l *zeroLogger) Info(msg string, keyvals ...interface{}) {
	withFields(l.z.Info(), keyvals).Msg(msg)
}

func (l *zeroLogger) Warn(msg string, keyvals ...interface{}) {
	withFields(l.z.Warn(), keyvals).Msg(msg)
}

func (l *zeroLogger) Error(msg string, keyvals ...interface{}) {
	withFields(l.z.Error(), keyvals).Msg(msg)
}

func (l *zeroLogger) Fatal(msg string, keyvals ...interface{}) {
	withFields(l.z.Fatal(), keyvals).Msg(msg)
}

func (l *zeroLogger) With(keyvals ...interface{}) Logger {
	ctx := l.z.With()
	for i := 0; i < len(keyvals); i += 2 {
		key := fieldKey(keyvals[i])
		if i+1 >= len(keyvals) {
			ctx = ctx.Interface(key, nil)
			break
		}
		if err, ok := keyvals[i+1].(error); ok {
			ctx = ctx.AnErr(key, err)
			continue
		}
		ctx = ctx.Interface(key, keyvals[i+1])
	}
	return &zeroLogger{z: ctx.Logger()}
}

func withFields(e *zerolog.Event, keyvals []interface{}) *zerolog.Event {
	for i := 0; i < len(keyvals); i += 2 {
		key := fieldKey(keyvals[i])
		if i+1 >= len(keyvals) {
			e = e.Interface(key, nil)
			break
		}
		switch v := keyvals[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case fmt.Stringer:
			e = e.Stringer(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func fieldKey(k interface{}) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
