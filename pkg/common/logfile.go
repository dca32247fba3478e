package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileOptions configures the rotating log file.
type LogFileOptions struct {
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

// SetupLogFile sends the standard logger to stderr and to a rotating log
// file. The returned closer releases the file; an empty Filename leaves the
// logger untouched and returns a no-op closer.
func SetupLogFile(opts LogFileOptions) (io.Closer, error) {
	if opts.Filename == "" {
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Filename), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedToSetupLogFile, err)
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    opts.MaxSizeMB,
		MaxAge:     opts.MaxAgeDays,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return rotator, nil
}
