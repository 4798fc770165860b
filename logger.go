package go_csi

import (
	"encoding/hex"
	"os"

	"github.com/sirupsen/logrus"
)

// log is the package logger. Level is taken from CSI_LOG_LEVEL
// (debug, info, warn, error); the default is warn so library consumers
// see nothing on the happy path.
var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	switch os.Getenv("CSI_LOG_LEVEL") {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "info":
		l.SetLevel(logrus.InfoLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	}
	return l
}

// hexPreview renders at most max leading bytes of v for debug traces.
func hexPreview(v []byte, max int) string {
	if len(v) <= max {
		return hex.EncodeToString(v)
	}
	return hex.EncodeToString(v[:max]) + "..."
}
