/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the wallet-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisURL           string `mapstructure:"REDIS_URL"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	ExtractAPIBaseURL  string `mapstructure:"EXTRACT_API_BASE_URL"`
	ExtractAPIKey      string `mapstructure:"EXTRACT_API_KEY"`
	ExtractModel       string `mapstructure:"EXTRACT_MODEL"`
	CurrencyAPIBaseURL string `mapstructure:"CURRENCY_API_BASE_URL"`
	ContentCharLimit   int    `mapstructure:"EXTRACT_CONTENT_CHAR_LIMIT"`
	ExcerptCharLimit   int    `mapstructure:"EXTRACT_EXCERPT_CHAR_LIMIT"`
	ReminderCronSpec   string `mapstructure:"REMINDER_CRON_SPEC"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EXTRACT_MODEL", "gemini-2.0-flash")
	viper.SetDefault("CURRENCY_API_BASE_URL", "https://open.er-api.com/v6")
	viper.SetDefault("EXTRACT_CONTENT_CHAR_LIMIT", 4000)
	viper.SetDefault("EXTRACT_EXCERPT_CHAR_LIMIT", 1000)
	viper.SetDefault("REMINDER_CRON_SPEC", "0 9 * * *")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("EXTRACT_API_BASE_URL")
	_ = viper.BindEnv("EXTRACT_API_KEY", "EXTRACT_API_KEY", "GEMINI_API_KEY")
	_ = viper.BindEnv("EXTRACT_MODEL")
	_ = viper.BindEnv("CURRENCY_API_BASE_URL")
	_ = viper.BindEnv("EXTRACT_CONTENT_CHAR_LIMIT")
	_ = viper.BindEnv("EXTRACT_EXCERPT_CHAR_LIMIT")
	_ = viper.BindEnv("REMINDER_CRON_SPEC")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Platform-provided PORT wins over SERVER_PORT.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.JWTSecret = strings.TrimSpace(config.JWTSecret)

	if config.ContentCharLimit <= 0 {
		config.ContentCharLimit = 4000
	}
	if config.ExcerptCharLimit <= 0 {
		config.ExcerptCharLimit = 1000
	}
	if config.ExcerptCharLimit > config.ContentCharLimit {
		log.Printf("level=warn component=config msg=\"excerpt limit exceeds content limit; clamping\" excerpt=%d content=%d", config.ExcerptCharLimit, config.ContentCharLimit)
		config.ExcerptCharLimit = config.ContentCharLimit
	}
	if strings.TrimSpace(config.ReminderCronSpec) == "" {
		config.ReminderCronSpec = "0 9 * * *"
	}

	return
}
