package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/maxaizer/placement-portal/internal/config"
	log "github.com/sirupsen/logrus"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb    = "db"
	ErrorTypeAuth  = "auth"
	ErrorTypeTgApi = "tg_api"
	ErrorTypeEvent = "event"
)

var logFile *os.File

func Setup(cfg config.LoggerConfig) {

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	var err error
	logFile, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	log.SetLevel(level(cfg.LogLevel))
	countErrors()

	if cfg.AppName != "" {
		log.AddHook(&appNameHook{name: cfg.AppName})
	}
}

func level(l config.LogLevel) log.Level {
	switch l {
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

type appNameHook struct {
	name string
}

func (h *appNameHook) Fire(entry *log.Entry) error {
	entry.Data["app"] = h.name
	return nil
}

func (h *appNameHook) Levels() []log.Level {
	return log.AllLevels
}

func Cleanup() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
