package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AuthConfig struct {
	TokenSecret            string        `mapstructure:"token_secret"`
	TokenTTL               time.Duration `mapstructure:"token_ttl"`
	BcryptCost             int           `mapstructure:"bcrypt_cost"`
	AdminUsername          string        `mapstructure:"admin_username"`
	AdminPassword          string        `mapstructure:"admin_password"`
	LoginAttemptsPerMinute float64       `mapstructure:"login_attempts_per_minute"`
	LoginBurst             int           `mapstructure:"login_burst"`
}

func (config AuthConfig) validate() error {
	var errs []error

	if config.TokenSecret == "" {
		errs = append(errs, fmt.Errorf("missing variable: token_secret"))
	}
	if config.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive"))
	}
	if config.AdminUsername == "" {
		errs = append(errs, fmt.Errorf("missing variable: admin_username"))
	}
	if config.AdminPassword == "" {
		errs = append(errs, fmt.Errorf("missing variable: admin_password"))
	}
	if config.LoginAttemptsPerMinute <= 0 || config.LoginBurst <= 0 {
		errs = append(errs, fmt.Errorf("login_attempts_per_minute and login_burst must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config AuthConfig) bindEnvironmentVariables() error {
	var errs []error

	if err := viper.BindEnv("auth.token_secret", "AUTH_TOKEN_SECRET"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("auth.token_ttl", "AUTH_TOKEN_TTL"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("auth.admin_username", "ADMIN_USERNAME"); err != nil {
		errs = append(errs, err)
	}

	if err := viper.BindEnv("auth.admin_password", "ADMIN_PASSWORD"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
