package services

import (
	"context"

	"github.com/maxaizer/placement-portal/internal/logger"
	"github.com/maxaizer/placement-portal/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// StatsReporter periodically copies portal counts into prometheus gauges.
type StatsReporter struct {
	stats statsReader
	cron  *cron.Cron
}

func NewStatsReporter(stats statsReader, schedule string) (*StatsReporter, error) {

	if schedule == "" {
		return nil, errors.New("stats schedule must not be empty")
	}

	sr := &StatsReporter{
		stats: stats,
		cron:  cron.New(),
	}

	_, err := sr.cron.AddFunc(schedule, sr.report)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid stats schedule %q", schedule)
	}

	sr.cron.Start()
	log.Infof("stats reporter started, schedule: %s", schedule)
	return sr, nil
}

func (sr *StatsReporter) Stop() {
	<-sr.cron.Stop().Done()
}

func (sr *StatsReporter) report() {
	stats, err := sr.stats.Get(context.Background())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to collect portal stats: %v", err)
		return
	}

	metrics.PendingReviewsGauge.WithLabelValues("company").Set(float64(stats.PendingCompanies))
	metrics.PendingReviewsGauge.WithLabelValues("job").Set(float64(stats.PendingJobs))
	metrics.CatalogSizeGauge.Set(float64(stats.CatalogJobs))
	log.Debugf("portal stats reported: %+v", stats)
}
