package logger

import "log"

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
}

func NewLogger(level int) *defaultLogger {
	return &defaultLogger{level: level}
}

func (l *defaultLogger) Debugf(msg string, a ...any) { l.logf(DEBUG, "DEBUG", msg, a...) }
func (l *defaultLogger) Infof(msg string, a ...any)  { l.logf(INFO, "INFO", msg, a...) }
func (l *defaultLogger) Warnf(msg string, a ...any)  { l.logf(WARNING, "WARN", msg, a...) }
func (l *defaultLogger) Errorf(msg string, a ...any) { l.logf(ERROR, "ERROR", msg, a...) }

func (l *defaultLogger) logf(level int, tag, msg string, a ...any) {
	if l.level > level {
		return
	}

	log.Printf("["+tag+"] "+msg, a...)
}
