package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "POKEDEX"

// Defaults for a plain invocation against pokemondb.net.
const (
	defaultListingURL = "https://pokemondb.net/pokedex/all"
	defaultBaseURL    = "https://pokemondb.net"
	defaultOutput     = "pokemon_db.csv"
	defaultDelay      = time.Second
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
)

// Config is the resolved run configuration.
type Config struct {
	ListingURL  string        `mapstructure:"listing_url"`
	BaseURL     string        `mapstructure:"base_url"`
	Output      string        `mapstructure:"output"`
	Delay       time.Duration `mapstructure:"delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	DatabaseURL string        `mapstructure:"database_url"`
	Serve       string        `mapstructure:"serve"`
	Images      string        `mapstructure:"images"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
}

// registerFlags declares every setting as a flag with its default.
func registerFlags(fs *pflag.FlagSet) {
	fs.String("listing-url", defaultListingURL, "index page listing every Pokémon")
	fs.String("base-url", defaultBaseURL, "base URL relative detail links are joined against")
	fs.StringP("output", "o", defaultOutput, "CSV file to write")
	fs.Duration("delay", defaultDelay, "pause between requests")
	fs.Duration("timeout", defaultTimeout, "per-request timeout")
	fs.String("user-agent", defaultUserAgent, "User-Agent header")
	fs.String("database-url", "", "PostgreSQL URL; records are also upserted there when set")
	fs.String("serve", "", "address for the progress API, e.g. :8080; keeps serving after the run")
	fs.String("images", "", "directory to save each Pokémon's artwork in; empty skips images")
	fs.String("log-level", defaultLogLevel, "debug, info, warn or error")
	fs.String("log-format", defaultLogFormat, "console or json")
}

// LoadConfig resolves flags, POKEDEX_* environment variables and defaults,
// in that order of precedence.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.Join(bindErr, fmt.Errorf("bind flag %s: %w", f.Name, err))
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail mid-run.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"listing_url": c.ListingURL, "base_url": c.BaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Output == "" {
		return errors.New("output must not be empty")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", c.Delay)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
