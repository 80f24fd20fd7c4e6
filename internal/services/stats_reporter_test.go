package services

import (
	"context"
	"testing"

	"github.com/maxaizer/placement-portal/internal/metrics"
	"github.com/maxaizer/placement-portal/internal/repositories"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStats struct {
	mock.Mock
}

func (m *mockStats) Get(ctx context.Context) (repositories.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repositories.Stats), args.Error(1)
}

func Test_StatsReporter_ShouldPublishGauges(t *testing.T) {
	assert := assert.New(t)
	stats := &mockStats{}
	stats.On("Get", mock.Anything).Return(repositories.Stats{PendingCompanies: 3, PendingJobs: 5, CatalogJobs: 8}, nil)

	reporter, err := NewStatsReporter(stats, "@every 1h")
	require.NoError(t, err)
	defer reporter.Stop()

	reporter.report()

	assert.Equal(3.0, testutil.ToFloat64(metrics.PendingReviewsGauge.WithLabelValues("company")))
	assert.Equal(5.0, testutil.ToFloat64(metrics.PendingReviewsGauge.WithLabelValues("job")))
	assert.Equal(8.0, testutil.ToFloat64(metrics.CatalogSizeGauge))
	stats.AssertExpectations(t)
}

func Test_StatsReporter_WhenStatsFail_ShouldKeepPreviousValues(t *testing.T) {
	metrics.CatalogSizeGauge.Set(13)
	stats := &mockStats{}
	stats.On("Get", mock.Anything).Return(repositories.Stats{}, errors.New("database is locked"))

	reporter, err := NewStatsReporter(stats, "@every 1h")
	require.NoError(t, err)
	defer reporter.Stop()

	reporter.report()

	assert.Equal(t, 13.0, testutil.ToFloat64(metrics.CatalogSizeGauge))
}

func Test_NewStatsReporter_WhenScheduleInvalid_ShouldFail(t *testing.T) {
	_, err := NewStatsReporter(&mockStats{}, "every tuesday")
	assert.Error(t, err)

	_, err = NewStatsReporter(&mockStats{}, "")
	assert.Error(t, err)
}
