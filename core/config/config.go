package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
)

const Version = "v0.4.0"

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	Cache    CacheConfig
	MCP      MCPConfig
	Warmup   WarmupConfig
}

type AppConfig struct {
	Version             string
	Port                string
	Debug               bool
	BasicAuth           []string
	BasePath            string
	TrustedProxies      []string
	CorsAllowedOrigins  []string
	HealthCheckInterval time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
	Schema   string
	SSLMode  string
	// GovActionLifetime is the number of epochs a proposal stays open.
	GovActionLifetime uint32
}

type ValkeyConfig struct {
	Enabled   bool
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type CacheConfig struct {
	Enabled    bool
	MaxEntries int
	TTL        domainCache.TTLPolicy
	// StaleRetention is how long Valkey keeps an entry past its TTL so it
	// can still be served when the data store is down.
	StaleRetention time.Duration
	FetchTimeout   time.Duration
}

type MCPConfig struct {
	Port string
	Host string
}

type WarmupConfig struct {
	Enabled  bool
	Interval time.Duration
	Workers  int
}

// NewViper returns a viper instance reading the environment, after loading
// envFile into it when the file exists.
func NewViper(envFile string) *viper.Viper {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logrus.Warnf("[CONFIG] could not load %s: %v", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	ttl := domainCache.DefaultTTLPolicy()

	v.SetDefault("app_port", "3000")
	v.SetDefault("app_debug", false)
	v.SetDefault("app_base_path", "")
	v.SetDefault("app_basic_auth", "")
	v.SetDefault("app_trusted_proxies", "")
	v.SetDefault("app_cors_allowed_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("app_health_check_interval", "5m")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "yaci")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "yaci_store")
	v.SetDefault("db_schema", "")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("gov_action_lifetime", 6)

	v.SetDefault("valkey_enabled", false)
	v.SetDefault("valkey_address", "localhost:6379")
	v.SetDefault("valkey_password", "")
	v.SetDefault("valkey_db", 0)
	v.SetDefault("valkey_key_prefix", "govtwool:")

	v.SetDefault("cache_enabled", true)
	v.SetDefault("cache_max_entries", 10000)
	v.SetDefault("cache_ttl_static", ttl[domainCache.TTLStatic].String())
	v.SetDefault("cache_ttl_entity", ttl[domainCache.TTLEntity].String())
	v.SetDefault("cache_ttl_list", ttl[domainCache.TTLList].String())
	v.SetDefault("cache_ttl_status", ttl[domainCache.TTLStatus].String())
	v.SetDefault("cache_ttl_participation", ttl[domainCache.TTLParticipation].String())
	v.SetDefault("cache_stale_retention", "1h")
	v.SetDefault("cache_fetch_timeout", "30s")

	v.SetDefault("mcp_host", "localhost")
	v.SetDefault("mcp_port", "8080")

	v.SetDefault("warmup_enabled", true)
	v.SetDefault("warmup_interval", "45s")
	v.SetDefault("warmup_workers", 2)
}

// LoadConfig builds the configuration from v. Flags bound to v take
// precedence over the environment.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Version:             Version,
			Port:                v.GetString("app_port"),
			Debug:               v.GetBool("app_debug"),
			BasicAuth:           splitList(v.GetString("app_basic_auth")),
			BasePath:            strings.TrimSuffix(v.GetString("app_base_path"), "/"),
			TrustedProxies:      splitList(v.GetString("app_trusted_proxies")),
			CorsAllowedOrigins:  splitList(v.GetString("app_cors_allowed_origins")),
			HealthCheckInterval: v.GetDuration("app_health_check_interval"),
		},
		Database: DatabaseConfig{
			Driver:            strings.ToLower(v.GetString("db_driver")),
			Host:              v.GetString("db_host"),
			Port:              v.GetInt("db_port"),
			User:              v.GetString("db_user"),
			Password:          v.GetString("db_password"),
			Name:              v.GetString("db_name"),
			Schema:            v.GetString("db_schema"),
			SSLMode:           v.GetString("db_sslmode"),
			GovActionLifetime: v.GetUint32("gov_action_lifetime"),
		},
		Valkey: ValkeyConfig{
			Enabled:   v.GetBool("valkey_enabled"),
			Address:   v.GetString("valkey_address"),
			Password:  v.GetString("valkey_password"),
			DB:        v.GetInt("valkey_db"),
			KeyPrefix: v.GetString("valkey_key_prefix"),
		},
		Cache: CacheConfig{
			Enabled:    v.GetBool("cache_enabled"),
			MaxEntries: v.GetInt("cache_max_entries"),
			TTL: domainCache.TTLPolicy{
				domainCache.TTLStatic:        v.GetDuration("cache_ttl_static"),
				domainCache.TTLEntity:        v.GetDuration("cache_ttl_entity"),
				domainCache.TTLList:          v.GetDuration("cache_ttl_list"),
				domainCache.TTLStatus:        v.GetDuration("cache_ttl_status"),
				domainCache.TTLParticipation: v.GetDuration("cache_ttl_participation"),
			},
			StaleRetention: v.GetDuration("cache_stale_retention"),
			FetchTimeout:   v.GetDuration("cache_fetch_timeout"),
		},
		MCP: MCPConfig{
			Host: v.GetString("mcp_host"),
			Port: v.GetString("mcp_port"),
		},
		Warmup: WarmupConfig{
			Enabled:  v.GetBool("warmup_enabled"),
			Interval: v.GetDuration("warmup_interval"),
			Workers:  v.GetInt("warmup_workers"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	errs := validation.Errors{}
	errs["app_port"] = validation.Validate(c.App.Port, validation.Required)
	errs["db_driver"] = validation.Validate(c.Database.Driver, validation.Required, validation.In("postgres", "sqlite"))
	errs["db_name"] = validation.Validate(c.Database.Name, validation.Required)
	errs["cache_max_entries"] = validation.Validate(c.Cache.MaxEntries, validation.Min(0))
	errs["valkey_address"] = validation.Validate(c.Valkey.Address, validation.When(c.Valkey.Enabled, validation.Required))
	errs["warmup_workers"] = validation.Validate(c.Warmup.Workers, validation.When(c.Warmup.Enabled, validation.Required, validation.Min(1)))
	return errs.Filter()
}
