package logging

import (
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/soodoh/openfit/pkg"
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// levels forwarded to sentry
var sentryLevels = []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}

// Setup configures the global logrus logger. The returned closer is the
// rotating log file, nil when logging only to stdout.
func Setup(params LoggerSetupParams) io.Closer {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	fileLogger := newFileLogger(params.LogFileName)
	switch {
	case fileLogger == nil:
		logrus.SetOutput(os.Stdout)
	case params.LogToStdout:
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, fileLogger))
	default:
		logrus.SetOutput(fileLogger)
	}
	logrus.Debugf("logging at %s, file [%s], stdout %t", logrus.GetLevel(), params.LogFileName, fileLogger == nil || params.LogToStdout)

	if fileLogger == nil {
		return nil
	}
	return fileLogger
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      params.Environment,
		ServerName:       params.SentryServerName,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}
	logrus.AddHook(NewSentryHook(sentry.CurrentHub(), sentryLevels))
	logrus.Infof("sentry set up for %s", params.Environment)
}

// newFileLogger returns a size-rotated log file, or nil for an empty name.
func newFileLogger(name string) *lumberjack.Logger {
	if name == "" {
		return nil
	}
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    50, // MB
		MaxBackups: 10,
		Compress:   true,
	}
}

// GetLevel parses a level name. Unknown names fall back to info.
func GetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
