package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options 日志配置
type Options struct {
	Production bool
	Level      string
	Debug      bool
	Output     io.Writer
}

// Setup configures the process-wide logrus logger.
// Production logs JSON, development logs human readable text.
func Setup(opts Options) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	logrus.SetOutput(opts.Output)

	if opts.Production {
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}

	logrus.SetLevel(ParseLevel(opts.Level, opts.Debug))
}

// ParseLevel falls back to info on unknown input; debug=true wins.
func ParseLevel(level string, debug bool) logrus.Level {
	if debug {
		return logrus.DebugLevel
	}
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
