// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 10 // Width for status text
	diffIndent  = 8  // spaces to indent diff lines
)

// 🎯 Logger prints the run report to the console and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 FormatResult formats a single target result for display
func FormatResult(res status.Result) string {
	var symbol rune
	var symbolColor color.Attribute
	switch res.Status {
	case status.StatusModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case status.StatusUnchanged:
		symbol = '•'
		symbolColor = color.FgCyan
	case status.StatusSkipped:
		symbol = '-'
		symbolColor = color.FgYellow
	case status.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	default:
		symbol = '?'
		symbolColor = color.Faint
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, res.Path),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", statusWidth, res.Status.String())),
		color.New(color.Faint).Sprint(res.Detail()))

	return strings.TrimRight(line, " ")
}

// 📝 LogResult logs the outcome of one target
func (l *Logger) LogResult(ctx context.Context, res status.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, FormatResult(res))
	if res.Diff != "" {
		for _, line := range strings.Split(strings.TrimSuffix(res.Diff, "\n"), "\n") {
			c := color.New(color.FgGreen)
			if strings.HasPrefix(line, "-") {
				c = color.New(color.FgRed)
			}
			fmt.Fprintf(l.console, "%s%s\n", strings.Repeat(" ", diffIndent), c.Sprint(line))
		}
	}

	event := l.zlog.Info()
	if res.Status == status.StatusFailed {
		event = l.zlog.Error().Err(res.Err)
	}
	event.
		Str("file", res.Path).
		Str("status", res.Status.String()).
		Str("reason", res.Reason).
		Int("replacements", res.Replacements).
		Bool("dry_run", res.DryRun).
		Msg("target processed")
}

// 📝 LogReport logs every result in order followed by the summary line
func (l *Logger) LogReport(ctx context.Context, report *status.Report) {
	for _, res := range report.Results {
		l.LogResult(ctx, res)
	}
	l.Summary(report.Summary())
}

// 📝 Summary logs the final counts
func (l *Logger) Summary(s status.Summary) {
	l.zlog.Info().
		Int("modified", s.Modified).
		Int("unchanged", s.Unchanged).
		Int("skipped", s.Skipped).
		Int("failed", s.Failed).
		Int("replacements", s.Replacements).
		Msg("run complete")

	if s.Failed > 0 {
		l.Error(s.String())
		return
	}
	l.Success(s.String())
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	patchrcText := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", patchrcText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}
