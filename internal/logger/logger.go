package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the engine-wide log instance. Packages log through it directly;
// Init reconfigures it once options are known.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000",
	})
	Logger.SetLevel(logrus.InfoLevel)
}

// Init sets the log level from its textual form. Unknown levels fall back
// to info.
func Init(level string) {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	Logger.SetLevel(lv)
}

func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { Logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }

// WithFields mirrors logrus.WithFields on the engine logger.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}
