package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ExtractConfig configures the crawling layer.
type ExtractConfig struct {
	Workers      int     `yaml:"workers" mapstructure:"workers"`
	TimeoutSecs  int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ChunkSize    int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	IframePrefix string  `yaml:"iframe_prefix" mapstructure:"iframe_prefix"`
	RatePerHost  float64 `yaml:"rate_per_host" mapstructure:"rate_per_host"`
	TestMode     bool    `yaml:"test_mode" mapstructure:"test_mode"`
	TestSize     int     `yaml:"test_size" mapstructure:"test_size"`
	TemplateMap  string  `yaml:"template_map" mapstructure:"template_map"`
}

// StoreConfig configures the history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the read-only report server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("FORMAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

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

func defaults() map[string]any {
	return map[string]any{
		"extract.workers":       10,
		"extract.timeout_secs":  5,
		"extract.chunk_size":    50,
		"extract.user_agent":    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"extract.iframe_prefix": "https://ovh.slgnt.eu/optiext/",
		"extract.rate_per_host": 0.0,
		"extract.test_mode":     false,
		"extract.test_size":     10,
		"extract.template_map":  "data/template_mapping.json",
		"store.path":            "formaudit.db",
		"server.port":           8080,
		"log.level":             "info",
		"log.format":            "json",
	}
}

// WriteDefault writes a starter config.yaml with the default values to the
// given path. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	cfg, err := Load()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}

	return eris.Wrap(os.WriteFile(path, data, 0o644), "config: write default file")
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
