package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is the process-wide levelled logger shared by the CLI, the server
// and the catalog.
type Logger struct {
	*log.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

type Config struct {
	Level      log.Level
	Prefix     string
	ShowCaller bool
	ShowTime   bool
	TimeFormat string
	Output     io.Writer
}

func DefaultConfig() Config {
	return Config{
		Level:      log.InfoLevel,
		Prefix:     "osubridge",
		ShowTime:   true,
		TimeFormat: time.DateTime,
		Output:     os.Stderr,
	}
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.DateTime
	}
	return &Logger{log.NewWithOptions(cfg.Output, log.Options{
		Level:           cfg.Level,
		Prefix:          cfg.Prefix,
		ReportCaller:    cfg.ShowCaller,
		ReportTimestamp: cfg.ShowTime,
		TimeFormat:      cfg.TimeFormat,
	})}
}

// ParseLevel accepts debug, info, warn, error and fatal in any case. Unknown
// names fall back to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// GetLogger returns the shared logger, configured from LOG_LEVEL on first use.
func GetLogger() *Logger {
	once.Do(func() {
		cfg := DefaultConfig()
		if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
			cfg.Level = ParseLevel(envLevel)
		}
		defaultLogger = New(cfg)
	})
	return defaultLogger
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(Config{Output: io.Discard, Level: log.FatalLevel})
}
