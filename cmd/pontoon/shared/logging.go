package shared

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// SetupLogger builds the root logger writing to stderr. format is one of
// text, json or logfmt; unknown levels fall back to info.
func SetupLogger(level, format string) *log.Logger {
	return NewLogger(os.Stderr, level, format)
}

// NewLogger builds a logger writing to w.
func NewLogger(w io.Writer, level, format string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	formatter := log.TextFormatter
	switch format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Formatter:       formatter,
	})
}

// LevelFor returns "debug" when debug is set, otherwise level.
func LevelFor(level string, debug bool) string {
	if debug {
		return "debug"
	}
	return level
}
