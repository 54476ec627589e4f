// Package config builds the daemon configuration from, in rising precedence,
// an optional TOML file, BOOKING_* environment variables and command line
// flags.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Config holds application configuration.
type Config struct {
	Port          int
	DBPath        string
	ImmediateLead time.Duration
	SweepInterval time.Duration

	// Quiet hours for the push notification gate, hours of day.
	QuietStart int
	QuietEnd   int

	// Empty mailgun key or push URL selects the log-only notifier.
	MailgunKey    string
	MailgunDomain string
	MailgunFrom   string
	PushURL       string
	PushKey       string
}

// DefaultDBPath returns the default database path using XDG_CACHE_HOME.
func DefaultDBPath() string {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "bookingd", "booking.db")
}

func defaults() *Config {
	return &Config{
		Port:          8080,
		DBPath:        DefaultDBPath(),
		ImmediateLead: 5 * time.Minute,
		SweepInterval: time.Minute,
		QuietStart:    22,
		QuietEnd:      6,
	}
}

// fileConfig mirrors Config for TOML decoding; durations are strings.
type fileConfig struct {
	Port          *int      `toml:"port"`
	DBPath        *string   `toml:"db_path"`
	ImmediateLead *duration `toml:"immediate_lead"`
	SweepInterval *duration `toml:"sweep_interval"`
	QuietStart    *int      `toml:"quiet_start"`
	QuietEnd      *int      `toml:"quiet_end"`
	MailgunKey    *string   `toml:"mailgun_key"`
	MailgunDomain *string   `toml:"mailgun_domain"`
	MailgunFrom   *string   `toml:"mailgun_from"`
	PushURL       *string   `toml:"push_url"`
	PushKey       *string   `toml:"push_key"`
}

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Load builds the configuration from args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := defaults()

	fs := flag.NewFlagSet("bookingd", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config file")
	port := fs.Int("port", cfg.Port, "HTTP server port")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	immediateLead := fs.Duration("immediate-lead", cfg.ImmediateLead, "Lead time for immediate bookings")
	sweepInterval := fs.Duration("sweep-interval", cfg.SweepInterval, "Expiry sweep interval")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("BOOKING_CONFIG")
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// Explicit flags win over both file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "db":
			cfg.DBPath = *dbPath
		case "immediate-lead":
			cfg.ImmediateLead = *immediateLead
		case "sweep-interval":
			cfg.SweepInterval = *sweepInterval
		}
	})

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return errors.Wrapf(err, "failed to load config file %s", path)
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.DBPath != nil {
		c.DBPath = *fc.DBPath
	}
	if fc.ImmediateLead != nil {
		c.ImmediateLead = time.Duration(*fc.ImmediateLead)
	}
	if fc.SweepInterval != nil {
		c.SweepInterval = time.Duration(*fc.SweepInterval)
	}
	if fc.QuietStart != nil {
		c.QuietStart = *fc.QuietStart
	}
	if fc.QuietEnd != nil {
		c.QuietEnd = *fc.QuietEnd
	}
	if fc.MailgunKey != nil {
		c.MailgunKey = *fc.MailgunKey
	}
	if fc.MailgunDomain != nil {
		c.MailgunDomain = *fc.MailgunDomain
	}
	if fc.MailgunFrom != nil {
		c.MailgunFrom = *fc.MailgunFrom
	}
	if fc.PushURL != nil {
		c.PushURL = *fc.PushURL
	}
	if fc.PushKey != nil {
		c.PushKey = *fc.PushKey
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("BOOKING_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Port = p
		}
	}
	if db := os.Getenv("BOOKING_DB"); db != "" {
		c.DBPath = db
	}
	if key := os.Getenv("BOOKING_MAILGUN_KEY"); key != "" {
		c.MailgunKey = key
	}
	if domain := os.Getenv("BOOKING_MAILGUN_DOMAIN"); domain != "" {
		c.MailgunDomain = domain
	}
	if from := os.Getenv("BOOKING_MAILGUN_FROM"); from != "" {
		c.MailgunFrom = from
	}
	if url := os.Getenv("BOOKING_PUSH_URL"); url != "" {
		c.PushURL = url
	}
	if key := os.Getenv("BOOKING_PUSH_KEY"); key != "" {
		c.PushKey = key
	}
}
