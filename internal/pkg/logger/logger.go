// internal/pkg/logger/logger.go
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/config"
)

// New builds the application logger from config. Unknown levels fall back to
// info rather than failing startup.
func New(cfg config.LoggingConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.ToLower(cfg.Format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
