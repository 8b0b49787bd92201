package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var (
	log        = logrus.New()
	categories = make(map[string]bool)
)

func init() {
	initConfig()
}

// SetLevel adjusts the global verbosity.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// EnableCategory restricts output to the given categories. With no
// categories enabled, everything passes the filter.
func EnableCategory(category string) {
	categories[category] = true
}

func DisableCategory(category string) {
	delete(categories, category)
}

func shouldLog(category string) bool {
	if len(categories) > 0 && category != "" {
		return categories[category]
	}
	return true
}

func entry(category string) *logrus.Entry {
	return log.WithField("category", category)
}

func Error(category string, format string, args ...interface{}) {
	if shouldLog(category) {
		entry(category).Errorf(format, args...)
	}
}

func Warn(category string, format string, args ...interface{}) {
	if shouldLog(category) {
		entry(category).Warnf(format, args...)
	}
}

func Info(category string, format string, args ...interface{}) {
	if shouldLog(category) {
		entry(category).Infof(format, args...)
	}
}

func Debug(category string, format string, args ...interface{}) {
	if shouldLog(category) {
		entry(category).Debugf(format, args...)
	}
}

func Trace(category string, format string, args ...interface{}) {
	if shouldLog(category) {
		entry(category).Tracef(format, args...)
	}
}
