// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/slotscout/slotscout/internal/alert"
	"github.com/slotscout/slotscout/internal/collector"
	"github.com/slotscout/slotscout/internal/dvsa"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Collection CollectionConfig `mapstructure:"collection"`
	DVSA       DVSAConfig       `mapstructure:"dvsa"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CollectionConfig governs the area collection loop.
type CollectionConfig struct {
	LedgerPath          string `mapstructure:"ledger_path"`
	DuplicateThreshold  int    `mapstructure:"duplicate_threshold"`
	MaxLoadMore         int    `mapstructure:"max_load_more"`
	VerificationWaitSec int    `mapstructure:"verification_wait_seconds"`
	AreaPauseMinSeconds int    `mapstructure:"area_pause_min_seconds"`
	AreaPauseMaxSeconds int    `mapstructure:"area_pause_max_seconds"`
}

// DVSAConfig configures the headless booking session.
type DVSAConfig struct {
	LoginURL         string `mapstructure:"login_url"`
	LicenceNumber    string `mapstructure:"licence_number"`
	BookingReference string `mapstructure:"booking_reference"`
	UserAgent        string `mapstructure:"user_agent"`
	Headless         bool   `mapstructure:"headless"`
	NavTimeoutSec    int    `mapstructure:"nav_timeout_seconds"`
	TypeDelayMinMs   int    `mapstructure:"type_delay_min_ms"`
	TypeDelayMaxMs   int    `mapstructure:"type_delay_max_ms"`
	PageDelayMinMs   int    `mapstructure:"page_delay_min_ms"`
	PageDelayMaxMs   int    `mapstructure:"page_delay_max_ms"`
	LoadMoreWaitMs   int    `mapstructure:"load_more_wait_ms"`
	ScreenshotDir    string `mapstructure:"screenshot_dir"`
}

// SMTPConfig configures email alerting.
type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
	Password string `mapstructure:"password"`
}

// MonitorConfig governs the scheduled availability sweep mode.
type MonitorConfig struct {
	Schedule   string `mapstructure:"schedule"`
	ResultsDir string `mapstructure:"results_dir"`
}

// ServerConfig controls the operational HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SLOTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("collection.ledger_path", "data/centres.csv")
	v.SetDefault("collection.duplicate_threshold", 3)
	v.SetDefault("collection.max_load_more", 20)
	v.SetDefault("collection.verification_wait_seconds", 60)
	v.SetDefault("collection.area_pause_min_seconds", 2)
	v.SetDefault("collection.area_pause_max_seconds", 5)
	v.SetDefault("dvsa.login_url", "https://driverpracticaltest.dvsa.gov.uk/login")
	// Registered empty so AutomaticEnv can populate them during Unmarshal.
	v.SetDefault("dvsa.licence_number", "")
	v.SetDefault("dvsa.booking_reference", "")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.to", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("dvsa.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	v.SetDefault("dvsa.headless", true)
	v.SetDefault("dvsa.nav_timeout_seconds", 45)
	v.SetDefault("dvsa.type_delay_min_ms", 60)
	v.SetDefault("dvsa.type_delay_max_ms", 180)
	v.SetDefault("dvsa.page_delay_min_ms", 1000)
	v.SetDefault("dvsa.page_delay_max_ms", 3000)
	v.SetDefault("dvsa.load_more_wait_ms", 2500)
	v.SetDefault("dvsa.screenshot_dir", "screenshots")
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("monitor.schedule", "*/10 * * * *")
	v.SetDefault("monitor.results_dir", "results")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Collection.LedgerPath == "" {
		return fmt.Errorf("collection.ledger_path must be set")
	}
	if c.Collection.DuplicateThreshold <= 0 {
		return fmt.Errorf("collection.duplicate_threshold must be > 0")
	}
	if c.Collection.MaxLoadMore <= 0 {
		return fmt.Errorf("collection.max_load_more must be > 0")
	}
	if c.Collection.AreaPauseMinSeconds < 0 || c.Collection.AreaPauseMaxSeconds < c.Collection.AreaPauseMinSeconds {
		return fmt.Errorf("collection.area_pause bounds must satisfy 0 <= min <= max")
	}
	if c.DVSA.LoginURL == "" {
		return fmt.Errorf("dvsa.login_url must be set")
	}
	if c.DVSA.NavTimeoutSec <= 0 {
		return fmt.Errorf("dvsa.nav_timeout_seconds must be > 0")
	}
	if c.SMTP.Enabled {
		if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
			return fmt.Errorf("smtp.host and smtp.port must be set when smtp is enabled")
		}
		if c.SMTP.From == "" || c.SMTP.To == "" {
			return fmt.Errorf("smtp.from and smtp.to must be set when smtp is enabled")
		}
	}
	if c.Monitor.Schedule == "" {
		return fmt.Errorf("monitor.schedule must be set")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// CollectorConfig converts the collection section into runtime settings.
func (c Config) CollectorConfig() collector.Config {
	return collector.Config{
		DuplicateThreshold:  c.Collection.DuplicateThreshold,
		MaxLoadMore:         c.Collection.MaxLoadMore,
		VerificationTimeout: time.Duration(c.Collection.VerificationWaitSec) * time.Second,
		PauseMin:            time.Duration(c.Collection.AreaPauseMinSeconds) * time.Second,
		PauseMax:            time.Duration(c.Collection.AreaPauseMaxSeconds) * time.Second,
	}
}

// SessionConfig converts the dvsa section into driver settings.
func (c Config) SessionConfig() dvsa.Config {
	return dvsa.Config{
		LoginURL:         c.DVSA.LoginURL,
		LicenceNumber:    c.DVSA.LicenceNumber,
		BookingReference: c.DVSA.BookingReference,
		UserAgent:        c.DVSA.UserAgent,
		Headless:         c.DVSA.Headless,
		NavTimeout:       time.Duration(c.DVSA.NavTimeoutSec) * time.Second,
		TypeDelayMin:     time.Duration(c.DVSA.TypeDelayMinMs) * time.Millisecond,
		TypeDelayMax:     time.Duration(c.DVSA.TypeDelayMaxMs) * time.Millisecond,
		PageDelayMin:     time.Duration(c.DVSA.PageDelayMinMs) * time.Millisecond,
		PageDelayMax:     time.Duration(c.DVSA.PageDelayMaxMs) * time.Millisecond,
		LoadMoreWait:     time.Duration(c.DVSA.LoadMoreWaitMs) * time.Millisecond,
		ScreenshotDir:    c.DVSA.ScreenshotDir,
	}
}

// AlertConfig converts the smtp section into channel settings. Multiple
// recipients are comma separated.
func (c Config) AlertConfig() alert.SMTPConfig {
	var to []string
	for _, addr := range strings.Split(c.SMTP.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return alert.SMTPConfig{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		From:     c.SMTP.From,
		To:       to,
		Password: c.SMTP.Password,
	}
}
