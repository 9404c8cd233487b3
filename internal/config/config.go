// File: internal/config/config.go
package config

import (
	"sync/atomic"
	"time"
)

// current holds the process-wide configuration resolved by the root command.
var current atomic.Pointer[Config]

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Engine   EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// EngineConfig configures the batch driver.
type EngineConfig struct {
	WorkerConcurrency int           `mapstructure:"worker_concurrency" yaml:"worker_concurrency"`
	TaskTimeout       time.Duration `mapstructure:"task_timeout" yaml:"task_timeout"`
}

// DatabaseConfig holds the optional findings-store connection details.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// AnalysisConfig tunes the taint engine.
type AnalysisConfig struct {
	// Sources are identifier names whose occurrences seed flow enumeration.
	Sources []string `mapstructure:"sources" yaml:"sources"`
	// Strategy selects branch handling: "leaves" or "exhaustive".
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
	// MaxFlowsPerSource caps reported flows per seed to keep output readable.
	MaxFlowsPerSource int `mapstructure:"max_flows_per_source" yaml:"max_flows_per_source"`
}

// ReportConfig controls where finding files and the batch summary land.
type ReportConfig struct {
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	SummaryFile string `mapstructure:"summary_file" yaml:"summary_file"`
}

// Defaults returns a Config with workable settings for every field, suitable
// as the target of viper.Unmarshal.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "crxflow",
			MaxSize:     50,
			MaxBackups:  3,
			MaxAge:      14,
		},
		Engine: EngineConfig{
			WorkerConcurrency: 4,
			TaskTimeout:       5 * time.Minute,
		},
		Analysis: AnalysisConfig{
			Sources:           []string{"message", "request", "data", "event", "msg"},
			Strategy:          "leaves",
			MaxFlowsPerSource: 64,
		},
		Report: ReportConfig{
			OutputDir:   "results",
			SummaryFile: "summary.csv",
		},
	}
}

// Set installs the resolved configuration as the process-wide instance.
func Set(c *Config) { current.Store(c) }

// Get returns the process-wide configuration, or defaults when none has been
// installed yet (tests, library use).
func Get() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	return Defaults()
}
