// Package logging routes the standard logger to stdout and, optionally, a
// rotating log file.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"assessment-engine/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the standard logger. The returned closer flushes and
// closes the log file, if any.
func Setup(cfg config.Config) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.Log.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    orDefault(cfg.Log.MaxSizeMB, 50),
		MaxBackups: orDefault(cfg.Log.MaxBackups, 5),
		MaxAge:     orDefault(cfg.Log.MaxAgeDays, 28),
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator, nil
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
