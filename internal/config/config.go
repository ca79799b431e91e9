package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	// PostgreSQL configuration
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

	DefaultCurrency string `mapstructure:"DEFAULT_CURRENCY"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("APP_NAME", "techstore")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("HTTP_ADDR", ":8080")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "techstore")
	viper.SetDefault("DB_PASSWORD", "techstore")
	viper.SetDefault("DB_NAME", "techstore_db")
	viper.SetDefault("DB_SSL_MODE", "disable")

	viper.SetDefault("DEFAULT_CURRENCY", "RUB")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("No config file found, using environment variables and defaults.")
			err = nil
		} else {
			log.Error().Err(err).Msg("Error reading config file")
			return
		}
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	err = viper.Unmarshal(&config)
	return
}

// DatabaseURL renders the pgx connection string.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
