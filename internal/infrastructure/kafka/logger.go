package kafka

import (
	"github.com/OliveiraNt/topic-provisioner/internal/utils"
	chlog "github.com/charmbracelet/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

// kgoLogger forwards franz-go client logs to the application logger.
type kgoLogger struct{}

func newKgoLogger() kgo.Logger { return kgoLogger{} }

// Level follows the application logger. Client info and debug output is only forwarded in
// debug mode.
func (kgoLogger) Level() kgo.LogLevel {
	if utils.Logger == nil {
		return kgo.LogLevelNone
	}
	switch utils.Logger.GetLevel() {
	case chlog.DebugLevel:
		return kgo.LogLevelDebug
	case chlog.InfoLevel, chlog.WarnLevel:
		return kgo.LogLevelWarn
	default:
		return kgo.LogLevelError
	}
}

func (kgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	if utils.Logger == nil {
		return
	}
	l := utils.Logger.WithPrefix("kgo")
	switch level {
	case kgo.LogLevelError:
		l.Error(msg, keyvals...)
	case kgo.LogLevelWarn:
		l.Warn(msg, keyvals...)
	case kgo.LogLevelInfo:
		l.Info(msg, keyvals...)
	case kgo.LogLevelDebug:
		l.Debug(msg, keyvals...)
	}
}
