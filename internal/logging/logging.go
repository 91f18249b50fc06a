package logging

import (
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var current Level = LevelInfo

// ParseLevel maps a LOG_LEVEL string to a Level. Unknown values report false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|warn|error).
func InitFromEnv() {
	if lvl, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
		current = lvl
	}
}

// SetLevel overrides the level directly.
func SetLevel(lvl Level) {
	current = lvl
}

func Debugf(format string, args ...interface{}) {
	if current <= LevelDebug {
		log.Printf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if current <= LevelInfo {
		log.Printf(format, args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if current <= LevelWarn {
		log.Printf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	log.Printf(format, args...)
}

func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
