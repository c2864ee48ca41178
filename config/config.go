// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/caarlos0/env/v11"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/server"
	"github.com/ava-labs/vaultvm/trace"
	"github.com/ava-labs/vaultvm/version"
)

const (
	// EnvPrefix namespaces every environment override.
	EnvPrefix = "VAULT_"

	// DefaultProgramID is the identity vault addresses are derived under
	// unless configured otherwise.
	DefaultProgramID = "BYQXDGdYAR2zZ2u2Nio4eUjBwaVbobMgwhLsB8CZwg8d"

	defaultHTTPAddress     = "127.0.0.1:9650"
	defaultDataDir         = ".vaultvm"
	defaultLogLevel        = "info"
	defaultLogMaxSize      = 8 // MB
	defaultLogMaxFiles     = 7
	defaultLogMaxAge       = 0 // days
	defaultShutdownTimeout = 10 * time.Second
	defaultTraceSampleRate = 0.1
	defaultProfilerFreq    = 15 * time.Minute
	defaultProfilerFiles   = 5
)

var ErrMissingProgramID = errors.New("missing program ID")

type Config struct {
	// Program
	ProgramID codec.Address `json:"programID" env:"PROGRAM_ID"`

	// Storage
	DataDir     string `json:"dataDir"     env:"DATA_DIR"`
	GenesisFile string `json:"genesisFile" env:"GENESIS_FILE"`

	// HTTP
	HTTPAddress     string        `json:"httpAddress"     env:"HTTP_ADDRESS"`
	AllowedOrigins  []string      `json:"allowedOrigins"  env:"ALLOWED_ORIGINS"`
	AllowedHosts    []string      `json:"allowedHosts"    env:"ALLOWED_HOSTS"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`

	// Logging
	LogLevel    string `json:"logLevel"    env:"LOG_LEVEL"`
	LogDir      string `json:"logDir"      env:"LOG_DIR"`
	LogMaxSize  int    `json:"logMaxSize"  env:"LOG_MAX_SIZE"`
	LogMaxFiles int    `json:"logMaxFiles" env:"LOG_MAX_FILES"`
	LogMaxAge   int    `json:"logMaxAge"   env:"LOG_MAX_AGE"`
	LogCompress bool   `json:"logCompress" env:"LOG_COMPRESS"`

	// Metrics
	MetricsEnabled bool `json:"metricsEnabled" env:"METRICS_ENABLED"`

	// Tracing
	TraceEnabled    bool    `json:"traceEnabled"    env:"TRACE_ENABLED"`
	TraceSampleRate float64 `json:"traceSampleRate" env:"TRACE_SAMPLE_RATE"`
	TraceEndpoint   string  `json:"traceEndpoint"   env:"TRACE_ENDPOINT"`

	// Profiling
	ContinuousProfiler profiler.Config `json:"continuousProfiler"`
}

// New builds a config from defaults, then the JSON in [b], then the
// environment.
func New(b []byte) (*Config, error) {
	c := &Config{}
	if err := c.setDefault(); err != nil {
		return nil, err
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", string(b), err)
		}
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if c.ProgramID == codec.EmptyAddress {
		return nil, ErrMissingProgramID
	}
	if _, err := c.GetLogLevel(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) setDefault() error {
	programID, err := codec.StringToAddress(DefaultProgramID)
	if err != nil {
		return err
	}
	c.ProgramID = programID
	c.DataDir = defaultDataDir
	c.HTTPAddress = defaultHTTPAddress
	c.AllowedOrigins = []string{"*"}
	c.AllowedHosts = []string{"*"}
	c.ShutdownTimeout = defaultShutdownTimeout
	c.LogLevel = defaultLogLevel
	c.LogMaxSize = defaultLogMaxSize
	c.LogMaxFiles = defaultLogMaxFiles
	c.LogMaxAge = defaultLogMaxAge
	c.MetricsEnabled = true
	c.TraceSampleRate = defaultTraceSampleRate
	c.ContinuousProfiler = profiler.Config{
		Freq:        defaultProfilerFreq,
		MaxNumFiles: defaultProfilerFiles,
	}
	return nil
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

// GetLogConfig returns the settings of the daemon's log files. An empty
// [LogDir] places them under [DataDir].
func (c *Config) GetLogConfig() (logging.Config, error) {
	level, err := c.GetLogLevel()
	if err != nil {
		return logging.Config{}, err
	}
	dir := c.LogDir
	if dir == "" {
		dir = c.DataDir + "/logs"
	}
	return logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   c.LogMaxSize,
			MaxFiles:  c.LogMaxFiles,
			MaxAge:    c.LogMaxAge,
			Directory: dir,
			Compress:  c.LogCompress,
		},
		DisplayLevel: level,
		LogLevel:     level,
	}, nil
}

// GetProfilerConfig returns the continuous profiler settings. An empty
// directory places profiles under [DataDir].
func (c *Config) GetProfilerConfig() profiler.Config {
	cfg := c.ContinuousProfiler
	if cfg.Dir == "" {
		cfg.Dir = c.DataDir + "/profiles"
	}
	return cfg
}

// GetServerConfig returns the HTTP server settings.
func (c *Config) GetServerConfig() server.Config {
	cfg := server.NewDefaultConfig()
	cfg.AllowedOrigins = c.AllowedOrigins
	cfg.AllowedHosts = c.AllowedHosts
	cfg.ShutdownTimeout = c.ShutdownTimeout
	return cfg
}

func (c *Config) GetTraceConfig() *trace.Config {
	return &trace.Config{
		Enabled:         c.TraceEnabled,
		TraceSampleRate: c.TraceSampleRate,
		Endpoint:        c.TraceEndpoint,
		AppName:         consts.Name,
		Agent:           consts.Name,
		Version:         version.Version.String(),
		Attributes: map[string]string{
			"program.id": c.ProgramID.String(),
		},
	}
}
