// Package logging holds the process-wide logger.
package logging

import (
	"os"
	"strings"
	"sync"

	logger "github.com/kthomas/go-logger"
)

var (
	mu  sync.Mutex
	log *logger.Logger
)

// Configure replaces the shared logger. An empty level falls back to
// TASKVERSE_LOG_LEVEL and then INFO. SYSLOG_ENDPOINT, when set, is used as
// the remote sink.
func Configure(level string) *logger.Logger {
	lvl := strings.ToUpper(strings.TrimSpace(level))
	if lvl == "" {
		lvl = os.Getenv("TASKVERSE_LOG_LEVEL")
	}
	if lvl == "" {
		lvl = "INFO"
	}

	var endpoint *string
	if os.Getenv("SYSLOG_ENDPOINT") != "" {
		endpt := os.Getenv("SYSLOG_ENDPOINT")
		endpoint = &endpt
	}

	l := logger.NewLogger("taskverse", lvl, endpoint)
	mu.Lock()
	log = l
	mu.Unlock()
	return l
}

// Log returns the shared logger, configuring it from the environment on
// first use.
func Log() *logger.Logger {
	mu.Lock()
	l := log
	mu.Unlock()
	if l != nil {
		return l
	}
	return Configure("")
}

// Or returns l when set and the shared logger otherwise.
func Or(l *logger.Logger) *logger.Logger {
	if l != nil {
		return l
	}
	return Log()
}
