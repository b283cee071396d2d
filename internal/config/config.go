package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"figstats/domain/figure"
	"figstats/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. FIGSTATS_PORT
const EnvPrefix = "FIGSTATS"

// Config represents the complete application configuration
type Config struct {
	ServerConfig
	PipelineConfig
}

// ServerConfig holds web server and logging settings
type ServerConfig struct {
	Port         string `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json console"`
	MaxBodyBytes int64  `envconfig:"MAX_BODY_BYTES" default:"10485760" validate:"gt=0"`
}

// PipelineConfig holds the defaults applied when a request leaves an
// option unset
type PipelineConfig struct {
	BoxCoxStart  float64 `envconfig:"BOXCOX_START" default:"0.01" validate:"gt=0"`
	LambdaMin    float64 `envconfig:"LAMBDA_MIN" default:"-2"`
	LambdaMax    float64 `envconfig:"LAMBDA_MAX" default:"2" validate:"gtefield=LambdaMin"`
	Combine      string  `envconfig:"COMBINE" default:"stouffer" validate:"oneof=stouffer fisher average"`
	Family       string  `envconfig:"FAMILY" default:"boxcox" validate:"oneof=boxcox yeojohnson"`
	QQConfidence float64 `envconfig:"QQ_CONFIDENCE" default:"0.95" validate:"gt=0,lt=1"`
	QQLine       string  `envconfig:"QQ_LINE" default:"quartile" validate:"oneof=quartile robust none"`
	Workers      int     `envconfig:"WORKERS" default:"0" validate:"gte=0"`
}

// Load reads an optional .env file, then the environment, and validates
// the result
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	config := &Config{}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read environment")
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration Load produces with an empty environment
func Default() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			Port:         "8080",
			LogLevel:     "info",
			LogFormat:    "json",
			MaxBodyBytes: 10 << 20,
		},
		PipelineConfig: PipelineConfig{
			BoxCoxStart:  0.01,
			LambdaMin:    -2,
			LambdaMax:    2,
			Combine:      string(figure.CombineStouffer),
			Family:       string(figure.FamilyBoxCox),
			QQConfidence: 0.95,
			QQLine:       string(figure.LineQuartile),
		},
	}
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// NewLogger builds a zap logger from the level and format settings
func (c *ServerConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "invalid log level")
	}
	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to initialize logger")
	}
	return logger, nil
}
