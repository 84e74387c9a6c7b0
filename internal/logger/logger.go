// internal/logger/logger.go
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/config"
)

// Init configures the standard logrus logger from cfg.
func Init(cfg config.LogConfig) {
	Configure(logrus.StandardLogger(), cfg, os.Stderr)
}

func Configure(l *logrus.Logger, cfg config.LogConfig, out io.Writer) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	l.SetOutput(out)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// TokenPrefix returns a log-safe prefix of a bearer token.
func TokenPrefix(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 20 {
		return token[:len(token)/2] + "..."
	}
	return token[:20] + "..."
}
