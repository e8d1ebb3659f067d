package utils

import (
	"io"
	"os"
	"strings"

	chlog "github.com/charmbracelet/log"
)

// Logger is the application-wide structured logger.
var Logger *chlog.Logger

const (
	debugLevel = "debug"
	infoLevel  = "info"
	warnLevel  = "warn"
	errorLevel = "error"
)

// InitLogger initializes the global logger with level from TOPIC_PROVISIONER_LOG_LEVEL.
// Valid levels: debug, info, warn, error.
func InitLogger() {
	if Logger != nil {
		return
	}
	InitLoggerWithOutput(os.Stdout)
}

// InitLoggerWithOutput replaces the global logger with one writing to w.
func InitLoggerWithOutput(w io.Writer) {
	l := chlog.NewWithOptions(w, chlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Prefix:          "topic-provisioner",
	})
	l.SetLevel(parseLevel(os.Getenv("TOPIC_PROVISIONER_LOG_LEVEL"), chlog.InfoLevel))
	Logger = l
}

// SetLogLevel allows changing level at runtime. Unknown levels are ignored.
func SetLogLevel(level string) {
	if Logger == nil {
		InitLogger()
	}
	Logger.SetLevel(parseLevel(level, Logger.GetLevel()))
}

func parseLevel(s string, fallback chlog.Level) chlog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case debugLevel:
		return chlog.DebugLevel
	case infoLevel:
		return chlog.InfoLevel
	case warnLevel:
		return chlog.WarnLevel
	case errorLevel:
		return chlog.ErrorLevel
	default:
		return fallback
	}
}
