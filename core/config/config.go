package config

import (
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CLASSTIME"

type Config struct {
	Debug      bool             `mapstructure:"debug"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	GoogleAPI  GoogleAPIConfig  `mapstructure:"google"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Timezone        string        `mapstructure:"timezone"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	LoginPage       string        `mapstructure:"login_page"`
	AppPage         string        `mapstructure:"app_page"`
	ChatRateLimit   float64       `mapstructure:"chat_rate_limit"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type GoogleAPIConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type ClassifierConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	RecurringSweepSpec string `mapstructure:"recurring_sweep_spec"`
	OAuthCleanupSpec   string `mapstructure:"oauth_cleanup_spec"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

var (
	mu       sync.RWMutex
	instance *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.secure_cookies", true)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.login_page", "/login.html")
	v.SetDefault("server.app_page", "/chat.html")
	v.SetDefault("server.chat_rate_limit", 5.0)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "classtime")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "classtime")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "classtime")
	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("google.client_id", "")
	v.SetDefault("google.client_secret", "")
	v.SetDefault("google.redirect_uri", "")

	v.SetDefault("classifier.url", "")
	v.SetDefault("classifier.timeout", 5*time.Second)

	v.SetDefault("admin.api_key", "")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.recurring_sweep_spec", "@every 15m")
	v.SetDefault("scheduler.oauth_cleanup_spec", "@hourly")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)
}

// Load reads .env (when present) and CLASSTIME_* environment variables.
// CLASSTIME_DATABASE_HOST maps to database.host.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(&cfg)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: %s_JWT_SECRET is required", envPrefix)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Server.Timezone, err)
	}
	return nil
}

// Location returns the timezone calendar dates are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleAPI.ClientID != "" && c.GoogleAPI.ClientSecret != "" && c.GoogleAPI.RedirectURI != ""
}

// Set installs cfg as the process configuration.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: not loaded")
	}
	return cfg
}
