package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Config holds application configuration values. Loaded once at startup
// and static for the process lifetime.
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Browser / identity
	Headless  bool
	UserAgent string
	Locale    string
	Proxy     string

	// Crawl timing
	CheckInterval time.Duration
	NavTimeout    time.Duration
	WaitTimeout   time.Duration
	DelayMin      time.Duration
	DelayMax      time.Duration
	DomainRPS     float64
	DomainBurst   int

	// Scheduler
	RecycleAfter int // cycles between shared-session recycles
	ReportEvery  int // cycles between aggregate summaries
	RecentWindow int // minutes covered by the aggregate summary

	// Roster
	RosterPath    string
	EnableSources string // comma-separated; empty keeps per-source defaults

	// Persistence
	OutputDir string
	DBPath    string
}

// Load builds a Config by combining defaults, a .env file (if present),
// SCOUT_* environment variables, and CLI flags, in increasing precedence.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:      DefaultLogLevel,
		JSONLog:       DefaultJSONLog,
		Headless:      DefaultHeadless,
		UserAgent:     DefaultUserAgent,
		Locale:        DefaultLocale,
		CheckInterval: DefaultCheckInterval,
		NavTimeout:    DefaultNavTimeout,
		WaitTimeout:   DefaultWaitTimeout,
		DelayMin:      DefaultDelayMin,
		DelayMax:      DefaultDelayMax,
		DomainRPS:     DefaultDomainRPS,
		DomainBurst:   DefaultDomainBurst,
		RecycleAfter:  DefaultRecycleAfter,
		ReportEvery:   DefaultReportEvery,
		RecentWindow:  DefaultRecentWindow,
		OutputDir:     DefaultOutputDir,
		DBPath:        DefaultDBPath,
	}

	applyEnv(cfg)

	if cmd != nil {
		applyFlags(cfg, cmd)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SCOUT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SCOUT_JSON_LOG"); v != "" {
		cfg.JSONLog = v == "true" || v == "1"
	}
	if v := os.Getenv("SCOUT_HEADLESS"); v != "" {
		cfg.Headless = v != "false" && v != "0"
	}
	if v := os.Getenv("SCOUT_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("SCOUT_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCOUT_CHECK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CheckInterval = d
		}
	}
	if v := os.Getenv("SCOUT_RECYCLE_AFTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RecycleAfter = n
		}
	}
	if v := os.Getenv("SCOUT_SOURCES"); v != "" {
		cfg.EnableSources = v
	}
	if v := os.Getenv("SCOUT_ROSTER"); v != "" {
		cfg.RosterPath = v
	}
	if v := os.Getenv("SCOUT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SCOUT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
}

func applyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if f := flags.Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := flags.Lookup("json-log"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := flags.Lookup("headless"); f != nil && f.Changed {
		cfg.Headless = f.Value.String() == "true"
	}
	if f := flags.Lookup("interval"); f != nil {
		if d, err := time.ParseDuration(f.Value.String()); err == nil && f.Changed {
			cfg.CheckInterval = d
		}
	}
	if f := flags.Lookup("sources"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.EnableSources = s
		}
	}
	if f := flags.Lookup("roster"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.RosterPath = s
		}
	}
	if f := flags.Lookup("output"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.OutputDir = s
		}
	}
	if f := flags.Lookup("db"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.DBPath = s
		}
	}
	if f := flags.Lookup("proxy"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.Proxy = s
		}
	}
	if f := flags.Lookup("user-agent"); f != nil {
		if s := f.Value.String(); s != "" {
			cfg.UserAgent = s
		}
	}
}
