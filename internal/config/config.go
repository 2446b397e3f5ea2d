package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Sheets  SheetsConfig  `yaml:"sheets" envconfig:"SHEETS"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int             `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains per-client request rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// SheetsConfig describes where the source tables live: either a Google
// spreadsheet read through the Sheets API, or a local workbook file for
// offline runs. Ranges are A1-notation tab references. ReachRanges maps a
// platform name to its dedicated-reach tab.
type SheetsConfig struct {
	APIKey         string            `yaml:"api_key" envconfig:"API_KEY"`
	SpreadsheetID  string            `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	WorkbookPath   string            `yaml:"workbook_path" envconfig:"WORKBOOK_PATH"`
	DeliveryRange  string            `yaml:"delivery_range" envconfig:"DELIVERY_RANGE" default:"Consolidado Nacional!A:Z"`
	BenchmarkRange string            `yaml:"benchmark_range" envconfig:"BENCHMARK_RANGE" default:"BENCHMARK!A:I"`
	EventsRange    string            `yaml:"events_range" envconfig:"EVENTS_RANGE" default:"GA4!A:E"`
	PlanRange      string            `yaml:"plan_range" envconfig:"PLAN_RANGE" default:"Plano!A:F"`
	ReachRanges    map[string]string `yaml:"reach_ranges" envconfig:"REACH_RANGES"`
	RequestsPerSec float64           `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"1"`
	Burst          int               `yaml:"burst" envconfig:"BURST" default:"5"`
}

// ReportConfig contains the knobs of the reporting core itself.
type ReportConfig struct {
	// DedicatedReachPlatforms lists the platforms whose impressions and
	// reach come exclusively from the dedicated-reach tabs.
	DedicatedReachPlatforms []string `yaml:"dedicated_reach_platforms" envconfig:"DEDICATED_REACH_PLATFORMS" default:"TikTok,Meta,Uber"`
	DefaultPraca            string   `yaml:"default_praca" envconfig:"DEFAULT_PRACA" default:"Nacional"`
	DefaultPlatform         string   `yaml:"default_platform" envconfig:"DEFAULT_PLATFORM" default:"Outros"`
	// PlannedImpressions and PlannedClicks back the campaign-level pacing
	// gauges when the media plan carries no impression or click targets.
	PlannedImpressions int64 `yaml:"planned_impressions" envconfig:"PLANNED_IMPRESSIONS"`
	PlannedClicks      int64 `yaml:"planned_clicks" envconfig:"PLANNED_CLICKS"`
}

// Load loads configuration from environment variables and config file.
// Environment takes precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MEDIA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Sheets.APIKey == "" {
		envConfig.Sheets.APIKey = fileConfig.Sheets.APIKey
	}
	if envConfig.Sheets.SpreadsheetID == "" {
		envConfig.Sheets.SpreadsheetID = fileConfig.Sheets.SpreadsheetID
	}
	if envConfig.Sheets.WorkbookPath == "" {
		envConfig.Sheets.WorkbookPath = fileConfig.Sheets.WorkbookPath
	}
	if len(envConfig.Sheets.ReachRanges) == 0 {
		envConfig.Sheets.ReachRanges = fileConfig.Sheets.ReachRanges
	}
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	return envConfig
}

// validate validates the configuration.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Sheets.SpreadsheetID == "" && c.Sheets.WorkbookPath == "" {
		return fmt.Errorf("either a spreadsheet id or a workbook path must be configured")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.APIKey == "" {
		return fmt.Errorf("an api key is required to read a remote spreadsheet")
	}

	// JSON is the only supported log format.
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file, or "" when only
// environment variables apply.
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration suitable for offline runs against a
// local workbook.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Sheets: SheetsConfig{
			DeliveryRange:  "Consolidado Nacional!A:Z",
			BenchmarkRange: "BENCHMARK!A:I",
			EventsRange:    "GA4!A:E",
			PlanRange:      "Plano!A:F",
			ReachRanges: map[string]string{
				"TikTok": "Alcance TikTok!A:E",
				"Meta":   "Alcance Meta!A:E",
				"Uber":   "Alcance Uber!A:E",
			},
			RequestsPerSec: 1,
			Burst:          5,
		},
		Report: ReportConfig{
			DedicatedReachPlatforms: []string{"TikTok", "Meta", "Uber"},
			DefaultPraca:            "Nacional",
			DefaultPlatform:         "Outros",
		},
	}
}
