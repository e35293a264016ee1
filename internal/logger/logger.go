package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
	sink   io.Closer
)

// Configure points the global logger at w with the given level.
// Until Configure is called every log call is discarded, so the terminal UI is never written to.
func Configure(level LogLevel, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	l := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	logger = l
	log.Logger = l
}

// ConfigureFile opens (appending) path and logs JSON lines into it.
func ConfigureFile(level LogLevel, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	Configure(level, f)

	mu.Lock()
	prev := sink
	sink = f
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// ConfigureConsole logs human-readable lines to stderr (line mode).
func ConfigureConsole(level LogLevel) {
	Configure(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Close releases the log file opened by ConfigureFile.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.Nop()
	log.Logger = logger
	if sink == nil {
		return nil
	}
	err := sink.Close()
	sink = nil
	return err
}

// L returns the current global logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// With returns a child logger tagged with the component name.
func With(component string) zerolog.Logger {
	return L().With().Str("component", component).Logger()
}

func parseLevel(level LogLevel) zerolog.Level {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(level)))) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ValidLevel reports whether s names a supported level.
func ValidLevel(s string) bool {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}
