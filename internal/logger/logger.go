package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

type implLogger struct {
	logger    *log.Logger
	level     string
	json      bool
	component string
}

// New creates a text Logger writing to stdout.
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level, "text")
}

// NewWithWriter creates a Logger writing to w. format is "text" or "json".
func NewWithWriter(w io.Writer, level, format string) Logger {
	isJSON := strings.EqualFold(format, "json")
	flags := log.LstdFlags
	if isJSON {
		flags = 0
	}
	return &implLogger{
		logger: log.New(w, "", flags),
		level:  strings.ToLower(level),
		json:   isJSON,
	}
}

func (l *implLogger) Named(component string) Logger {
	child := *l
	if child.component != "" {
		child.component = child.component + "." + component
	} else {
		child.component = component
	}
	return &child
}

func (l *implLogger) shouldLog(level string) bool {
	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

func (l *implLogger) output(level, msg string, args []interface{}) {
	if !l.shouldLog(level) {
		return
	}
	text := fmt.Sprintf(msg, args...)

	if l.json {
		line, err := json.Marshal(struct {
			Time      string `json:"time"`
			Level     string `json:"level"`
			Component string `json:"component,omitempty"`
			Msg       string `json:"msg"`
		}{
			Time:      time.Now().UTC().Format(time.RFC3339Nano),
			Level:     level,
			Component: l.component,
			Msg:       text,
		})
		if err == nil {
			l.logger.Print(string(line))
			return
		}
	}

	prefix := "[" + strings.ToUpper(level) + "] "
	if l.component != "" {
		prefix += "[" + l.component + "] "
	}
	l.logger.Print(prefix + text)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.output("debug", msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.output("info", msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.output("warn", msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.output("error", msg, args)
}

// Nop returns a Logger that discards everything. Useful in tests.
func Nop() Logger {
	return NewWithWriter(io.Discard, "error", "text")
}
