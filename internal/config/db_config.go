package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// DBConfig points the portal at its sqlite file. foreign_keys and busy_timeout
// pragmas are added by the store when the DSN lacks them.
type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("db.connection_string is empty, set it in the config file or DB_CONNECTION_STRING")
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	return viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
