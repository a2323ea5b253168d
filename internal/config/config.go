package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration required by the API process.
// Values come from the environment, optionally seeded by a .env file in the
// working directory. No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Dialer  DialerConfig
	Upload  UploadConfig
	Redis   RedisConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Env      string
	Port     int
	LogLevel string
}

type DialerConfig struct {
	MaxRedials int
	BatchSize  int

	// RandomSeed fixes the outcome generator; 0 seeds from the clock.
	RandomSeed int64

	// MaxCallsPerHour is the dial quota; 0 disables it.
	MaxCallsPerHour int
}

type UploadConfig struct {
	MaxBytes int64
}

// RedisConfig is optional. An empty Host keeps the call quota in-process.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MetricsConfig struct {
	Enabled bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "local")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DIALER_MAX_REDIALS", "2")
	v.SetDefault("DIALER_POWER_BATCH_SIZE", "10")
	v.SetDefault("DIALER_RANDOM_SEED", "0")
	v.SetDefault("DIALER_MAX_CALLS_PER_HOUR", "100")
	v.SetDefault("UPLOAD_MAX_BYTES", strconv.Itoa(10<<20))
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", "0")
	v.SetDefault("METRICS_ENABLED", "true")
}

// Load reads the process environment (and ./.env when present).
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.AllowEmptyEnv(false)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read .env: %w", err)
		}
	}
	return loadFrom(v)
}

func loadFrom(v *viper.Viper) (Config, error) {
	defaults(v)

	c := Config{}
	var parseErrs []error
	intKey := func(key string) int {
		n, err := parseInt(v, key)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return n
	}

	c.App.Env = strings.TrimSpace(v.GetString("APP_ENV"))
	c.App.Port = intKey("APP_PORT")
	c.App.LogLevel = strings.TrimSpace(v.GetString("LOG_LEVEL"))

	c.Dialer.MaxRedials = intKey("DIALER_MAX_REDIALS")
	c.Dialer.BatchSize = intKey("DIALER_POWER_BATCH_SIZE")
	c.Dialer.RandomSeed = int64(intKey("DIALER_RANDOM_SEED"))
	c.Dialer.MaxCallsPerHour = intKey("DIALER_MAX_CALLS_PER_HOUR")

	c.Upload.MaxBytes = int64(intKey("UPLOAD_MAX_BYTES"))

	c.Redis.Host = strings.TrimSpace(v.GetString("REDIS_HOST"))
	c.Redis.Port = intKey("REDIS_PORT")
	c.Redis.Password = v.GetString("REDIS_PASSWORD")
	c.Redis.DB = intKey("REDIS_DB")

	enabled, err := strconv.ParseBool(strings.TrimSpace(v.GetString("METRICS_ENABLED")))
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("METRICS_ENABLED must be a boolean, got %q", v.GetString("METRICS_ENABLED")))
	}
	c.Metrics.Enabled = enabled

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.LogLevel != "" && !isValidLevel(c.App.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.App.LogLevel))
	}

	if c.Dialer.MaxRedials < 0 || c.Dialer.MaxRedials > 10 {
		errs = append(errs, fmt.Errorf("DIALER_MAX_REDIALS must be within 0..10, got %d", c.Dialer.MaxRedials))
	}
	if c.Dialer.BatchSize < 1 || c.Dialer.BatchSize > 10 {
		errs = append(errs, fmt.Errorf("DIALER_POWER_BATCH_SIZE must be within 1..10, got %d", c.Dialer.BatchSize))
	}
	if c.Dialer.MaxCallsPerHour < 0 {
		errs = append(errs, fmt.Errorf("DIALER_MAX_CALLS_PER_HOUR must be >= 0, got %d", c.Dialer.MaxCallsPerHour))
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("UPLOAD_MAX_BYTES must be > 0, got %d", c.Upload.MaxBytes))
	}

	if c.Redis.Host != "" {
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
		if c.Redis.DB < 0 {
			errs = append(errs, fmt.Errorf("REDIS_DB must be >= 0, got %d", c.Redis.DB))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func parseInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, nil
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "warning", "error":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
