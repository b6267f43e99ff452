package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel      = "info"
	DefaultJSONLog       = false
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultLocale        = "en-US"
	DefaultHeadless      = true
	DefaultCheckInterval = 10 * time.Minute
	DefaultRecycleAfter  = 3
	DefaultNavTimeout    = 30 * time.Second
	DefaultWaitTimeout   = 10 * time.Second
	DefaultDelayMin      = 2 * time.Second
	DefaultDelayMax      = 6 * time.Second
	DefaultDomainRPS     = 0.5
	DefaultDomainBurst   = 2
	DefaultOutputDir     = "output"
	DefaultDBPath        = "scout.db"
	DefaultReportEvery   = 6
	DefaultRecentWindow  = 120 // minutes
)
