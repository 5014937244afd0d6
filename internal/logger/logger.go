// Package logger provides logging for the gamefeed CLI.
// Warnings and errors are always written to stderr; debug and info messages
// only appear when verbose mode is enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const (
	colorRed      = 31
	colorGreen    = 32
	colorYellow   = 33
	colorMagenta  = 35
	colorBold     = 1
	consoleLayout = "15:04:05"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	base              = build(os.Stderr, false, false)
)

func colorize(s any, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

func build(w io.Writer, asJSON, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if asJSON {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    w != os.Stderr,
		TimeFormat: consoleLayout,
		FormatLevel: func(i any) string {
			ll, _ := i.(string)
			if len(ll) < 3 {
				return strings.ToUpper(fmt.Sprintf("%v", i))
			}
			l := strings.ToUpper(ll)[0:3]
			if w != os.Stderr {
				return l
			}
			switch ll {
			case "debug":
				return colorize(l, colorYellow)
			case "info":
				return colorize(l, colorGreen)
			case "warn", "error", "fatal", "panic":
				return colorize(l, colorRed)
			case "trace":
				return colorize(l, colorMagenta)
			default:
				return colorize(l, colorBold)
			}
		},
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func rebuild() {
	base = build(output, jsonOut, verbose)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// SetJSON switches between JSON lines and human readable console output.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = enabled
	rebuild()
}

// With returns a structured logger tagged with a component name.
func With(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debug().Msgf(format, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Info().Msgf(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warn().Msgf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Error().Msgf(format, args...)
}

// Section logs a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	base.Info().Str("section", name).Msg("=== " + name + " ===")
}
