package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const logFileName = "ingeniero.log"

// setupLogging sets the standard logger level and tees it into
// dir/ingeniero.log. The file is best-effort: when it cannot be opened the
// logger stays on the console. The returned func closes the file.
func setupLogging(level, dir string) (func(), error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return func() {}, fmt.Errorf("parse log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)

	if dir == "" {
		dir = defaultLogDir
	}
	f, err := openLogFile(dir)
	if err != nil {
		logrus.WithError(err).Warn("log file unavailable, logging to console only")
		return func() {}, nil
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	closed := false
	return func() {
		if closed {
			return
		}
		closed = true
		logrus.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
