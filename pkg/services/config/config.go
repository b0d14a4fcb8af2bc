package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/de-tools/pos-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const EnvPrefix = "POS_ATLAS"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Loader    LoaderConfig    `mapstructure:"loader"`
	Labels    LabelsConfig    `mapstructure:"labels"`
	AWS       AWSConfig       `mapstructure:"aws"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MaxSessions   int           `mapstructure:"max_sessions" validate:"min=1"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

type AnalyticsConfig struct {
	Engine          string `mapstructure:"engine" validate:"oneof=memory duckdb"`
	DuckDBPath      string `mapstructure:"duckdb_path"`
	DuckDBThreads   int    `mapstructure:"duckdb_threads" validate:"min=1"`
	PreviewRows     int    `mapstructure:"preview_rows" validate:"min=0"`
	TopProducts     int    `mapstructure:"top_products" validate:"min=1"`
	TopCategories   int    `mapstructure:"top_categories" validate:"min=1"`
	TopCooccurrence int    `mapstructure:"top_cooccurrence" validate:"min=1"`
}

type LoaderConfig struct {
	Comma string `mapstructure:"comma" validate:"required"`
}

type LabelsConfig struct {
	Locale string `mapstructure:"locale" validate:"oneof=en ja"`
}

type AWSConfig struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 32<<20)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.max_sessions", 64)
	v.SetDefault("session.sweep_interval", 5*time.Minute)

	v.SetDefault("analytics.engine", "memory")
	v.SetDefault("analytics.duckdb_path", ":memory:")
	v.SetDefault("analytics.duckdb_threads", 4)
	v.SetDefault("analytics.preview_rows", 100)
	v.SetDefault("analytics.top_products", 20)
	v.SetDefault("analytics.top_categories", 5)
	v.SetDefault("analytics.top_cooccurrence", 10)

	v.SetDefault("loader.comma", ",")
	v.SetDefault("labels.locale", "en")

	v.SetDefault("aws.profile", "")
	v.SetDefault("aws.region", "")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads configuration from defaults, an optional YAML file and
// POS_ATLAS_* environment variables, in increasing precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s=%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if utf8.RuneCountInString(c.Loader.Comma) != 1 {
		return fmt.Errorf("invalid config: loader.comma must be a single character, got %q", c.Loader.Comma)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) LabelSet() (domain.LabelSet, error) {
	return domain.LabelsForLocale(c.Labels.Locale)
}

func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Loader.Comma)
	return r
}

func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
