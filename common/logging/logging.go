// Package logging builds the structured logger shared by the header chain
// and CLI packages: a logrus TextFormatter with full timestamps, plus a
// helper that attaches fixed fields to a *logrus.Entry and logs success or
// failure around a call, timed, in place of a unary RPC interceptor.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the root logger. level follows logrus's numeric levels (0-6);
// an out-of-range value falls back to InfoLevel rather than panicking.
func New(level uint32) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		DisableLevelTruncation: true,
	})
	if lvl := logrus.Level(level); lvl <= logrus.TraceLevel {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger.WithFields(logrus.Fields{"app": "kotoheaders"})
}

// WrapOperation runs fn under a child entry tagged with op, logging its
// duration and outcome.
func WrapOperation(log *logrus.Entry, op string, fn func() error) error {
	entry := log.WithField("op", op)
	start := time.Now()

	err := fn()

	fields := entry.WithField("duration", time.Since(start))
	if err != nil {
		fields.WithField("error", err).Error("operation failed")
		return err
	}
	fields.Debug("operation completed")
	return nil
}
