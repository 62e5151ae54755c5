// Package logger provides namespaced debug loggers gated by the DEBUG
// environment variable, in the style of the node "debug" package.
//
// Loggers are cheap to create and disabled by default. Set DEBUG to a
// comma-separated list of glob-ish patterns to enable output:
//
//	DEBUG=*                  everything
//	DEBUG=workflow:*         one namespace
//	DEBUG=workflow:*,cli:*   several namespaces
//	DEBUG=*,-workflow:graph  everything except one logger
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes debug output for a single namespace.
type Logger struct {
	namespace string
	enabled   bool
	last      time.Time
	mu        sync.Mutex
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Logger)
)

// New returns the logger for the given namespace, creating it on first use.
// Namespaces follow the "package:file" convention.
func New(namespace string) *Logger {
	registryMu.Lock()
	defer registryMu.Unlock()

	if l, ok := registry[namespace]; ok {
		return l
	}
	l := &Logger{
		namespace: namespace,
		enabled:   matches(namespace, os.Getenv("DEBUG")),
	}
	registry[namespace] = l
	return l
}

// Enabled reports whether this logger's namespace is selected by DEBUG.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf writes a formatted message to stderr when the logger is enabled.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print writes its arguments to stderr when the logger is enabled.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	now := time.Now()
	var delta time.Duration
	if !l.last.IsZero() {
		delta = now.Sub(l.last)
	}
	l.last = now
	l.mu.Unlock()

	fmt.Fprintf(os.Stderr, "%s %s +%s\n", l.namespace, msg, delta)
}

// matches implements the DEBUG pattern language: comma-separated patterns,
// "*" wildcards at the end only, "-" prefix for exclusion. Exclusions win.
func matches(namespace, spec string) bool {
	if spec == "" {
		return false
	}

	enabled := false
	for _, pattern := range strings.Split(spec, ",") {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		negate := strings.HasPrefix(pattern, "-")
		if negate {
			pattern = pattern[1:]
		}
		if !patternMatch(namespace, pattern) {
			continue
		}
		if negate {
			return false
		}
		enabled = true
	}
	return enabled
}

func patternMatch(namespace, pattern string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(namespace, pattern[:len(pattern)-1])
	}
	return namespace == pattern
}
