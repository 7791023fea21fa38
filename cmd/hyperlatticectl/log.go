package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/breez/hyperlattice/hlog"
)

// logWriter mirrors the teacher daemon's build.LogWriter: every write goes
// to the terminal and, once attached, to a rotating log file. Writes
// before the rotator is attached simply go to the terminal, so package
// hlog's loggers are usable from process startup without waiting on a
// filesystem-dependent initialization step.
type logWriter struct {
	mu     sync.Mutex
	rotate io.Writer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	rotate := w.rotate
	w.mu.Unlock()

	os.Stdout.Write(p)
	if rotate != nil {
		rotate.Write(p)
	}
	return len(p), nil
}

func (w *logWriter) attach(pw io.Writer) {
	w.mu.Lock()
	w.rotate = pw
	w.mu.Unlock()
}

var sharedLogWriter = &logWriter{}

func init() {
	hlog.SetOutput(sharedLogWriter)
}

// initLogRotator initializes log rotation into logFile, in the same
// MkdirAll-then-rotator.New-then-io.Pipe shape as the teacher daemon's
// initLogRotator.
func initLogRotator(logFile string, maxLogFileSizeKB, maxLogFiles int) (*rotator.Rotator, error) {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
	}

	r, err := rotator.New(logFile, int64(maxLogFileSizeKB*1024), false, maxLogFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %v", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	sharedLogWriter.attach(pw)
	return r, nil
}

// setLogLevels sets every subsystem logger to the named level, ignoring
// an invalid name (defaults to info), matching hlog.SetLevels' contract.
func setLogLevels(levelName string) {
	level, ok := btclog.LevelFromString(levelName)
	if !ok {
		level = btclog.LevelInfo
	}
	hlog.SetLevels(level)
}
