package qtm

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "qtm",
	ReportTimestamp: true,
	Level:           log.InfoLevel,
})

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// SetLogger replaces the package logger. Machines created afterwards use it.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// NewLogger builds a logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		Prefix:          "qtm",
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}
