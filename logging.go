package procinspect

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewTextLogger builds the package-level diagnostic logger: a text-formatted
// logrus.Logger writing to stderr so it never interleaves with the REPL's
// stdout listings, debug level enabled only under verbose mode.
func NewTextLogger(cfg Config) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stderr
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if cfg.VerboseReads {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
