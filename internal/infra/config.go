package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"prohibition/internal/domain"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 일부 값을 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Simulation struct {
		// Seed drives world generation. 0 means seed from the clock.
		Seed             int64 `yaml:"seed"`
		TickIntervalMS   int   `yaml:"tick_interval_ms"`
		HistoryRetention int   `yaml:"history_retention"`
		ParallelClearing bool  `yaml:"parallel_clearing"`
		ClearingWorkers  int   `yaml:"clearing_workers"`
	} `yaml:"simulation"`

	Ledger struct {
		NegativeInventory string `yaml:"negative_inventory"`
	} `yaml:"ledger"`

	Storage struct {
		Path           string `yaml:"path"`
		SaveEveryTicks int    `yaml:"save_every_ticks"`
	} `yaml:"storage"`

	Snapshot struct {
		Dir string `yaml:"dir"`
	} `yaml:"snapshot"`

	Stream struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"stream"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "Prohibition"
	cfg.App.Version = "dev"
	cfg.Simulation.TickIntervalMS = 10_000
	cfg.Simulation.HistoryRetention = 0
	cfg.Simulation.ClearingWorkers = 4
	cfg.Ledger.NegativeInventory = "clamp"
	cfg.Storage.SaveEveryTicks = 6
	cfg.Snapshot.Dir = "snapshots"
	cfg.Stream.Addr = "localhost:8787"
	cfg.Logging.Level = "info"
	cfg.Logging.File = "logs/app.log"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 28
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 파싱합니다. 파일이 없으면 기본값을 사용합니다.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	// 환경 변수 오버라이드 지원
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	// 설정 유효성 검사
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Simulation.TickIntervalMS <= 0 {
		return &domain.ConfigError{Field: "simulation.tick_interval_ms", Err: errors.New("must be positive")}
	}
	if c.Simulation.HistoryRetention < 0 {
		return &domain.ConfigError{Field: "simulation.history_retention", Err: errors.New("must not be negative")}
	}
	if c.Simulation.ParallelClearing && c.Simulation.ClearingWorkers <= 0 {
		return &domain.ConfigError{Field: "simulation.clearing_workers", Err: errors.New("must be positive when clearing in parallel")}
	}

	switch c.Ledger.NegativeInventory {
	case "", "clamp", "panic", "reject":
	default:
		return &domain.ConfigError{Field: "ledger.negative_inventory", Err: fmt.Errorf("unknown policy %q", c.Ledger.NegativeInventory)}
	}

	if c.Storage.SaveEveryTicks < 0 {
		return &domain.ConfigError{Field: "storage.save_every_ticks", Err: errors.New("must not be negative")}
	}

	if c.Stream.Addr != "" && !strings.Contains(c.Stream.Addr, ":") {
		return &domain.ConfigError{Field: "stream.addr", Err: fmt.Errorf("missing port in %q", c.Stream.Addr)}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return &domain.ConfigError{Field: "logging.level", Err: fmt.Errorf("unknown level %q", c.Logging.Level)}
	}

	return nil
}


// TickInterval is the configured wall-clock duration of one tick.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Simulation.TickIntervalMS) * time.Millisecond
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) error {
	if seed := os.Getenv("PROHIBITION_SEED"); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return &domain.ConfigError{Field: "PROHIBITION_SEED", Err: err}
		}
		cfg.Simulation.Seed = v
	}
	if path := os.Getenv("PROHIBITION_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
	if addr := os.Getenv("PROHIBITION_STREAM_ADDR"); addr != "" {
		cfg.Stream.Addr = addr
	}
	if level := os.Getenv("PROHIBITION_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	return nil
}
