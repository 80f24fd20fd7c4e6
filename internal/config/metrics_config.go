package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type MetricsConfig struct {
	Address       string        `mapstructure:"address"`
	StatsSchedule string        `mapstructure:"stats_schedule"`
	StatsCacheTTL time.Duration `mapstructure:"stats_cache_ttl"`
}

func (config MetricsConfig) validate() error {
	var errs []error

	if config.Address == "" {
		errs = append(errs, fmt.Errorf("missing variable: address"))
	}
	if _, err := cron.ParseStandard(config.StatsSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid stats_schedule: %w", err))
	}
	if config.StatsCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("stats_cache_ttl must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config MetricsConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("metrics.address", "METRICS_ADDRESS")
}
