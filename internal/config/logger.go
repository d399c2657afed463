package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger.  Production emits JSON; other
// environments use the text formatter.  An unknown level falls back to
// info and is reported once.
func NewLogger(env, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if env == "prod" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown LOG_LEVEL, using info")
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
