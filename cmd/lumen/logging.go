// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	log "github.com/luxfi/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupRootLogger installs the process-wide structured logger at the
// configured level. github.com/luxfi/log's root logger is reached only
// through log.New(level) and log.SetDefault in every call site this
// tree could find grounding for; there is no confirmed way to hand it
// a custom io.Writer or slog.Handler, so the color/rotation libraries
// below are instead scoped to the RPC access log (internal/node's
// accessLogHandler), not this logger.
func setupRootLogger(level string) {
	log.SetDefault(log.New(level))
}

// newAccessLogWriter builds the sink internal/node.Config.AccessLog
// writes request lines to: a size-and-age rotated file when logFile is
// set, otherwise the process's stdout, made color-capable when stdout
// is a real terminal.
func newAccessLogWriter(logFile string) io.Writer {
	if logFile != "" {
		return &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return colorable.NewColorable(os.Stdout)
	}
	return os.Stdout
}
