// Package config loads runtime settings from defaults, an optional YAML
// file, and PROSPECTOR_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration for both pipelines.
type Config struct {
	Search struct {
		Backend         string `mapstructure:"backend"` // duckduckgo | searchapi
		APIEndpoint     string `mapstructure:"api_endpoint"`
		APIKey          string `mapstructure:"api_key"`
		QueriesPerBrand int    `mapstructure:"queries_per_brand"`
		ResultsPerQuery int    `mapstructure:"results_per_query"`
		MaxPerBrand     int    `mapstructure:"max_per_brand"`
		ZIPVariants     int    `mapstructure:"zip_variants"`
		CheckLiveness   bool   `mapstructure:"check_liveness"`
		DNSServer       string `mapstructure:"dns_server"`
	} `mapstructure:"search"`

	Delay struct {
		QueryMin time.Duration `mapstructure:"query_min"`
		QueryMax time.Duration `mapstructure:"query_max"`
		SiteMin  time.Duration `mapstructure:"site_min"`
		SiteMax  time.Duration `mapstructure:"site_max"`
	} `mapstructure:"delay"`

	Fetch struct {
		Timeout      time.Duration `mapstructure:"timeout"`
		MaxRedirects int           `mapstructure:"max_redirects"`
		UseCookieJar bool          `mapstructure:"use_cookie_jar"`
		Fingerprint  string        `mapstructure:"fingerprint"` // chrome | firefox | safari | go | random
		ProxyFile    string        `mapstructure:"proxy_file"`
	} `mapstructure:"fetch"`

	Extract struct {
		SubpageLimit  int    `mapstructure:"subpage_limit"`
		PhoneRegion   string `mapstructure:"phone_region"`
		RespectRobots bool   `mapstructure:"respect_robots"`
		UseSitemaps   bool   `mapstructure:"use_sitemaps"`
	} `mapstructure:"extract"`

	Storage struct {
		Backend        string `mapstructure:"backend"` // csv | json | sqlite | postgres
		OutputPath     string `mapstructure:"output_path"`
		XLSXPath       string `mapstructure:"xlsx_path"`
		CheckpointPath string `mapstructure:"checkpoint_path"`
		SQLiteDSN      string `mapstructure:"sqlite_dsn"`
		PostgresDSN    string `mapstructure:"postgres_dsn"`
	} `mapstructure:"storage"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`

	LogLevel string `mapstructure:"log_level"`
}

// Load builds the configuration. path may be empty to use defaults and
// environment only; PROSPECTOR_SEARCH_BACKEND overrides search.backend and
// so on.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("search.backend", "duckduckgo")
	v.SetDefault("search.api_endpoint", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.queries_per_brand", 3)
	v.SetDefault("search.results_per_query", 10)
	v.SetDefault("search.max_per_brand", 25)
	v.SetDefault("search.zip_variants", 0)
	v.SetDefault("search.check_liveness", false)
	v.SetDefault("search.dns_server", "")

	v.SetDefault("delay.query_min", 2*time.Second)
	v.SetDefault("delay.query_max", 5*time.Second)
	v.SetDefault("delay.site_min", 1*time.Second)
	v.SetDefault("delay.site_max", 3*time.Second)

	v.SetDefault("fetch.timeout", 20*time.Second)
	v.SetDefault("fetch.max_redirects", 10)
	v.SetDefault("fetch.use_cookie_jar", true)
	v.SetDefault("fetch.fingerprint", "chrome")
	v.SetDefault("fetch.proxy_file", "")

	v.SetDefault("extract.subpage_limit", 3)
	v.SetDefault("extract.phone_region", "US")
	v.SetDefault("extract.respect_robots", false)
	v.SetDefault("extract.use_sitemaps", true)

	v.SetDefault("storage.backend", "csv")
	v.SetDefault("storage.output_path", "hvac_suppliers.csv")
	v.SetDefault("storage.xlsx_path", "hvac_suppliers.xlsx")
	v.SetDefault("storage.checkpoint_path", "progress_backup.csv")
	v.SetDefault("storage.sqlite_dsn", "prospector.db")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Search.Backend {
	case "duckduckgo":
	case "searchapi":
		if c.Search.APIKey == "" {
			return errors.New("search.api_key is required for the searchapi backend")
		}
		if c.Search.APIEndpoint == "" {
			return errors.New("search.api_endpoint is required for the searchapi backend")
		}
	default:
		return fmt.Errorf("unknown search backend %q", c.Search.Backend)
	}

	switch c.Storage.Backend {
	case "csv", "json", "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Extract.SubpageLimit < 0 {
		return errors.New("extract.subpage_limit must not be negative")
	}
	return nil
}
