package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface. Every entry is
// tagged with the component name it was created for.
type ZerologLogger struct {
	log zerolog.Logger
}

var _ Logger = (*ZerologLogger)(nil)

// NewZerolog builds a Logger writing to w (stderr when nil) at the supplied
// level. Unknown levels fall back to info.
func NewZerolog(w io.Writer, component, level string) *ZerologLogger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if name := strings.TrimSpace(component); name != "" {
		logger = logger.With().Str("component", name).Logger()
	}
	return &ZerologLogger{log: logger}
}

// Named returns a child logger for another component sharing the same sink.
func (z *ZerologLogger) Named(component string) *ZerologLogger {
	if z == nil {
		return nil
	}
	return &ZerologLogger{log: z.log.With().Str("component", component).Logger()}
}

func (z *ZerologLogger) Debug(format string, args ...any) {
	z.log.Debug().Msgf(format, args...)
}

func (z *ZerologLogger) Info(format string, args ...any) {
	z.log.Info().Msgf(format, args...)
}

func (z *ZerologLogger) Error(format string, args ...any) {
	z.log.Error().Msgf(format, args...)
}
