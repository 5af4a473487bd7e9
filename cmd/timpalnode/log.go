// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator rotates the log file node-wide. It is nil until
// initLogRotator runs, so the initial logger write before flag parsing
// falls through to stdout only.
var logRotator *rotator.Rotator

// logWriter implements io.Writer, sending output to both standard output
// and the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var backendLog = slog.NewBackend(logWriter{})

// log is this node's subsystem logger. Its Infof/Warnf/Errorf methods
// satisfy node.Logger directly; no adapter is needed.
var log = backendLog.Logger("TNOD")

// initLogRotator initializes the logging rotator to write logs to
// logFile and create roll files in the same directory. It must be
// called before any logging is done.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}
	logRotator = r
}

// setLogLevel sets the logging level for the node's logger.
func setLogLevel(levelStr string) {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return
	}
	log.SetLevel(level)
}
