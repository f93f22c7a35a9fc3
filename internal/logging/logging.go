package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ParseLevel converts a level name into a zerolog level. Unknown names fall
// back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "DISABLED", "OFF":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a console logger writing to w at the given level.
// Colors are dropped when noColor is set, e.g. when w is a file.
func New(level string, w io.Writer, noColor bool) zerolog.Logger {
	return zerolog.New(console(w, noColor)).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// NewWithFile builds a logger writing to w and, without colors, to file.
func NewWithFile(level string, w io.Writer, noColor bool, file io.Writer) zerolog.Logger {
	out := zerolog.MultiLevelWriter(console(w, noColor), console(file, true))
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

func console(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, name string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", name, sessionStart.Format("20060102_150405")),
	)
}

// CreateLogFile creates the session log file inside logsDir, creating the
// directory if needed.
func CreateLogFile(logsDir, name string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create the logs directory: %v", err)
	}
	f, err := os.Create(LogFilePath(logsDir, name, sessionStart))
	if err != nil {
		return nil, fmt.Errorf("unable to create the log file: %v", err)
	}
	return f, nil
}
