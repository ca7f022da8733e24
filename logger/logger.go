package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus with the map-based property API used across the project.
type Logger struct {
	l *logrus.Logger
}

var (
	instance *Logger
	once     sync.Once
)

// GetLogger returns a singleton logger instance
func GetLogger() *Logger {
	once.Do(func() {
		instance = setupLogger()
	})
	return instance
}

// L is a shorthand for GetLogger
func L() *Logger {
	return GetLogger()
}

func setupLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "02-01-06:15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	if os.Getenv("DEVSERVE_DEBUG") != "" {
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logger{l: l}
}

func (l *Logger) Debug(msg string, props map[string]interface{}) {
	l.l.WithFields(logrus.Fields(props)).Debug(msg)
}

func (l *Logger) Info(msg string, props map[string]interface{}) {
	l.l.WithFields(logrus.Fields(props)).Info(msg)
}

func (l *Logger) Warn(msg string, props map[string]interface{}) {
	l.l.WithFields(logrus.Fields(props)).Warn(msg)
}

func (l *Logger) Error(msg string, props map[string]interface{}) {
	l.l.WithFields(logrus.Fields(props)).Error(msg)
}

// Fatal logs the message and exits with a non-zero status.
func (l *Logger) Fatal(msg string, props map[string]interface{}) {
	l.l.WithFields(logrus.Fields(props)).Fatal(msg)
}
