// Package logging provides the leveled, optionally colored line logger used
// by every gifclip component, with an optional append-only file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/backmassage/gifclip/internal/config"
	"github.com/backmassage/gifclip/internal/term"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	out     io.Writer
	errOut  io.Writer
	file    *os.File
}

// New configures terminal colors from cfg and optionally opens cfg.LogFile.
// Errors go to errOut, everything else to out. Call Close() when done if
// LogFile was set.
func New(cfg *config.Config, out, errOut io.Writer) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{
		verbose: cfg.Verbose,
		out:     out,
		errOut:  errOut,
	}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) line(level, color, text string) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	l.mu.Lock()
	defer l.mu.Unlock()
	plain := ts + " [" + level + "] " + text + "\n"
	out := l.out
	if level == "ERROR" {
		out = l.errOut
	}
	if color != "" && term.Enabled() {
		_, _ = io.WriteString(out, ts+" "+term.Paint(color, "["+level+"]")+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.line("INFO", term.Blue, fmt.Sprintf(format, args...))
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.line("SUCCESS", term.Green, fmt.Sprintf(format, args...))
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.line("WARN", term.Yellow, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.line("ERROR", term.Red, fmt.Sprintf(format, args...))
}

// Debug logs at DEBUG level (cyan) only when verbose is set.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.line("DEBUG", term.Cyan, fmt.Sprintf(format, args...))
}

// Verbose reports whether the logger was built with --verbose.
func (l *Logger) Verbose() bool { return l.verbose }
