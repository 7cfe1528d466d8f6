package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Database holds the Postgres connection settings.
	Database DatabaseConfig `mapstructure:",squash"`

	// Redis holds the shared cache settings.
	Redis RedisConfig `mapstructure:",squash"`

	// Auth holds the external auth verifier settings.
	Auth AuthConfig `mapstructure:",squash"`

	// Qikink holds the print-on-demand vendor API settings.
	Qikink QikinkConfig `mapstructure:",squash"`
}

// DatabaseConfig holds Postgres connection details.
type DatabaseConfig struct {
	// URL is the Postgres connection string.
	URL string `mapstructure:"DATABASE_URL" required:"true"`
}

// RedisConfig holds the Redis connection details.
type RedisConfig struct {
	// URL is the Redis connection string, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"REDIS_URL" default:"redis://localhost:6379/0"`
}

// AuthConfig holds the settings for the external auth service that
// verifies user bearer tokens.
type AuthConfig struct {
	// URL is the base URL of the auth service.
	URL string `mapstructure:"AUTH_URL" required:"true"`
	// ServiceKey is the API key sent alongside token verification calls.
	ServiceKey string `mapstructure:"AUTH_SERVICE_KEY" required:"true"`
}

// QikinkConfig holds the credentials and client tuning for the Qikink
// fulfillment API.
type QikinkConfig struct {
	// BaseURL is the Qikink API base URL.
	BaseURL string `mapstructure:"QIKINK_BASE_URL" required:"true"`
	// ClientID identifies this merchant account.
	ClientID string `mapstructure:"QIKINK_CLIENT_ID" required:"true"`
	// ClientSecret is used for the token exchange.
	ClientSecret string `mapstructure:"QIKINK_CLIENT_SECRET" required:"true"`
	// MinRequestIntervalMS is the minimum delay between any two outbound
	// Qikink requests. Qikink allows 30 requests per minute.
	MinRequestIntervalMS int `mapstructure:"QIKINK_MIN_REQUEST_INTERVAL_MS" default:"2000"`
	// MaxAttempts is the total number of attempts per outbound request.
	MaxAttempts int `mapstructure:"QIKINK_MAX_ATTEMPTS" default:"3"`
	// TokenSafetyMarginS is subtracted from the token lifetime so a token
	// is never used right at its expiry.
	TokenSafetyMarginS int `mapstructure:"QIKINK_TOKEN_SAFETY_MARGIN_S" default:"60"`
}

// MinRequestInterval returns the throttle interval as a duration.
func (c QikinkConfig) MinRequestInterval() time.Duration {
	return time.Duration(c.MinRequestIntervalMS) * time.Millisecond
}

// TokenSafetyMargin returns the token expiry safety margin as a duration.
func (c QikinkConfig) TokenSafetyMargin() time.Duration {
	return time.Duration(c.TokenSafetyMarginS) * time.Second
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
