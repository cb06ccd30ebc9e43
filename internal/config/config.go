// Package config loads the blog's settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration written as a Go duration string ("5s", "24h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Server    Server    `toml:"server"`
	Database  Database  `toml:"database"`
	Templates Templates `toml:"templates"`
	Session   Session   `toml:"session"`
	Feed      Feed      `toml:"feed"`
	Log       Log       `toml:"log"`
}

type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type Database struct {
	// Path of the SQLite file.
	Path string `toml:"path"`
}

type Templates struct {
	// Dir serves templates from disk and reloads them on change. Empty
	// means the templates compiled into the binary.
	Dir    string `toml:"dir"`
	Minify bool   `toml:"minify"`
}

type Session struct {
	Lifetime     Duration `toml:"lifetime"`
	SecureCookie bool     `toml:"secure_cookie"`
}

type Feed struct {
	Title   string `toml:"title"`
	BaseURL string `toml:"base_url"`
	Entries int    `toml:"entries"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":4000",
			ReadTimeout:     Duration{5 * time.Second},
			WriteTimeout:    Duration{10 * time.Second},
			IdleTimeout:     Duration{time.Minute},
			ShutdownTimeout: Duration{30 * time.Second},
		},
		Database: Database{Path: "./blog.db"},
		Templates: Templates{
			Minify: true,
		},
		Session: Session{
			Lifetime: Duration{24 * time.Hour},
		},
		Feed: Feed{
			Title:   "Blog",
			BaseURL: "http://localhost:4000",
			Entries: 10,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to decode configuration file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.Session.Lifetime.Duration <= 0 {
		errs = append(errs, errors.New("session.lifetime must be positive"))
	}
	if c.Feed.Entries <= 0 {
		errs = append(errs, errors.New("feed.entries must be positive"))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not a known level", c.Log.Level))
	}

	return errors.Join(errs...)
}
