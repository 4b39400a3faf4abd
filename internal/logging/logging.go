package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "DBTREE_LOG_LEVEL"

// New returns a text logger on stderr at the given level ("debug",
// "info", "warn", "error"). The environment variable EnvLogLevel wins over
// level when set.
func New(level string) (*logrus.Logger, error) {
	return NewWithOutput(os.Stderr, level)
}

// NewWithOutput is New writing to w.
func NewWithOutput(w io.Writer, level string) (*logrus.Logger, error) {
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	if level == "" {
		level = "warn"
	}

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	return logger, nil
}
