package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu        sync.RWMutex
	baseLevel = zerolog.InfoLevel
	console   bool
)

// Configure sets the process-wide log level and output format applied by New.
// Unknown levels fall back to info; format "console" selects the human
// readable writer, anything else emits JSON lines.
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	baseLevel = lvl
	console = strings.EqualFold(format, "console")
	mu.Unlock()
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger for the component. The APP_ENV=dev
// environment variable forces console output regardless of Configure.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	lvl := baseLevel
	human := console
	mu.RUnlock()
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		human = true
	}
	var z zerolog.Logger
	if human {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		z = zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	} else {
		z = zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
	}
	return &ZerologLogger{log: z.Level(lvl)}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
