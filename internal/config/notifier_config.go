package config

import (
	"github.com/spf13/viper"
)

// NotifierConfig leaves Telegram notifications off when Token is empty.
type NotifierConfig struct {
	Token string `mapstructure:"token"`
}

func (config NotifierConfig) Enabled() bool {
	return config.Token != ""
}

func (config NotifierConfig) validate() error {
	return nil
}

func (config NotifierConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("notifier.token", "TG_TOKEN")
}
