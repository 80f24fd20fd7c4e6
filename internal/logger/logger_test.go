package logger

import (
	"testing"

	"github.com/maxaizer/placement-portal/internal/config"
	"github.com/maxaizer/placement-portal/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_ErrorCounterHook_WhenErrorTypeSet_ShouldCountByType(t *testing.T) {
	before := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb))

	err := errorCounterHook{}.Fire(log.WithField(ErrorTypeField, ErrorTypeDb))

	assert.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb)))
}

func Test_ErrorCounterHook_WhenErrorTypeMissing_ShouldCountAsUntyped(t *testing.T) {
	before := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(untypedError))

	_ = errorCounterHook{}.Fire(log.NewEntry(log.StandardLogger()))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(untypedError)))
}

func Test_ErrorCounterHook_ShouldOnlyFireForErrorsAndWorse(t *testing.T) {
	assert.ElementsMatch(t, []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel}, errorCounterHook{}.Levels())
}

func Test_Level_ShouldMapConfiguredLevels(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(log.DebugLevel, level(config.LevelDebug))
	assert.Equal(log.WarnLevel, level(config.LevelWarning))
	assert.Equal(log.InfoLevel, level("whatever"))
}
