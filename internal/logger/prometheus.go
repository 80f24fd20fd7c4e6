package logger

import (
	"github.com/maxaizer/placement-portal/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const untypedError = "untyped"

// errorCounterHook counts error, fatal and panic entries by their error_type field.
type errorCounterHook struct{}

func (errorCounterHook) Levels() []log.Level {
	return log.AllLevels[:log.ErrorLevel+1]
}

func (errorCounterHook) Fire(entry *log.Entry) error {
	errorType, _ := entry.Data[ErrorTypeField].(string)
	if errorType == "" {
		errorType = untypedError
	}
	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func countErrors() {
	log.AddHook(errorCounterHook{})
	log.Debug("error entries are counted in portal_errors_total")
}
