package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Zipcode ZipcodeConfig `yaml:"zipcode" mapstructure:"zipcode"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// APIConfig holds Yelp Fusion API settings.
type APIConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig configures where results are appended.
type StoreConfig struct {
	Driver      string   `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string   `yaml:"database_url" mapstructure:"database_url"`
	Schema      string   `yaml:"schema" mapstructure:"schema"`
	Table       string   `yaml:"table" mapstructure:"table"`
	S3          S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures the object store backend.
type S3Config struct {
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Region string `yaml:"region" mapstructure:"region"`
}

// ZipcodeConfig configures the postal code directory. Path takes
// precedence; otherwise the archive at URL is downloaded into TempDir.
type ZipcodeConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	URL     string `yaml:"url" mapstructure:"url"`
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("YELP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a useful default are still registered so
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("api.key", "")
	v.SetDefault("api.base_url", "https://api.yelp.com/v3")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.requests_per_second", 5.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "yelp.db")
	v.SetDefault("store.schema", "yelp")
	v.SetDefault("store.table", "business_search_results")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.prefix", "")
	v.SetDefault("store.s3.region", "")
	v.SetDefault("zipcode.path", "")
	v.SetDefault("zipcode.url", "https://download.geonames.org/export/zip/US.zip")
	v.SetDefault("zipcode.temp_dir", "/tmp/bwdc-kwk")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the values the given command needs. Commands that only
// touch the store skip the API key check.
func (c *Config) Validate(command string) error {
	var problems []string

	switch command {
	case "search", "plan":
		if c.API.Key == "" {
			problems = append(problems, "api.key is required (set YELP_API_KEY)")
		}
		if c.API.RequestsPerSecond < 0 {
			problems = append(problems, "api.requests_per_second must be >= 0")
		}
		if c.API.TimeoutSecs <= 0 {
			problems = append(problems, "api.timeout_secs must be > 0")
		}
		problems = append(problems, c.Store.problems()...)
	case "migrate", "status":
		problems = append(problems, c.Store.problems()...)
	case "zips":
	default:
		return eris.Errorf("config: unknown mode %q", command)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s StoreConfig) problems() []string {
	var out []string
	if s.Schema == "" || s.Table == "" {
		out = append(out, "store.schema and store.table are required")
	}
	switch s.Driver {
	case "postgres", "sqlite":
		if s.DatabaseURL == "" {
			out = append(out, "store.database_url is required for driver "+s.Driver)
		}
	case "s3":
		if s.S3.Bucket == "" {
			out = append(out, "store.s3.bucket is required for driver s3")
		}
	default:
		out = append(out, "store.driver must be one of postgres, sqlite, s3")
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
