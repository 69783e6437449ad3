package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotated log file inside Config.Path.
const FileName = "mediashelf.log"

// Logger wraps zerolog for application logging.
type Logger struct {
	zerolog.Logger
	rotator *lumberjack.Logger
}

// Config holds logger configuration.
type Config struct {
	Level      string
	Format     string // "console" or "json"
	Path       string // directory for log files, empty disables file output
	MaxSizeMB  int    // default: 10
	MaxBackups int    // default: 5
	MaxAgeDays int    // default: 30
	Compress   bool
}

// IsDevBuild returns true if running via "go run".
func IsDevBuild() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return strings.Contains(exe, "go-build")
}

// New creates a new logger writing to stdout and, when Path is set, to a
// rotated file.
func New(cfg Config) *Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg Config, out io.Writer) *Logger {
	var consoleOutput io.Writer = out
	if cfg.Format != "json" {
		consoleOutput = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	level := parseLevel(cfg.Level)

	// go run builds get debug output unless trace was requested
	if IsDevBuild() && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	output := consoleOutput
	var rotator *lumberjack.Logger

	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err == nil {
			rotator = &lumberjack.Logger{
				Filename:   filepath.Join(cfg.Path, FileName),
				MaxSize:    orDefault(cfg.MaxSizeMB, 10),
				MaxBackups: orDefault(cfg.MaxBackups, 5),
				MaxAge:     orDefault(cfg.MaxAgeDays, 30),
				Compress:   cfg.Compress,
				LocalTime:  true,
			}
			output = io.MultiWriter(consoleOutput, rotator)
		}
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger, rotator: rotator}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent returns a zerolog.Logger tagged with a component field.
// Services keep the returned value.
func (l *Logger) WithComponent(component string) zerolog.Logger {
	return l.Logger.With().Str("component", component).Logger()
}
