package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Configuration errors.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrConfigInvalid   = errors.New("invalid configuration")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Theme store backends.
const (
	ThemeStoreMemory = "memory"
	ThemeStoreFile   = "file"
	ThemeStoreRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	GitHub  GitHubConfig  `yaml:"github"`
	Theme   ThemeConfig   `yaml:"theme"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"`
	Port            int           `yaml:"port"             env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// Address returns host:port.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GitHubConfig configures the upstream API.
type GitHubConfig struct {
	APIURL         string        `yaml:"api_url"         env:"GITHUB_URL"`
	WebURL         string        `yaml:"web_url"         env:"GITHUB_WEB_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"GITHUB_REQUEST_TIMEOUT"`
	MaxConcurrent  int           `yaml:"max_concurrent"  env:"GITHUB_MAX_CONCURRENT"`
}

// ThemeConfig selects where theme preferences are kept.
type ThemeConfig struct {
	Store    string `yaml:"store"     env:"THEME_STORE"`
	FilePath string `yaml:"file_path" env:"THEME_FILE_PATH"`
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	CookieName   string        `yaml:"cookie_name"   env:"SESSION_COOKIE_NAME"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"  env:"SESSION_IDLE_TIMEOUT"`
	SecureCookie bool          `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE"`
}

// RedisConfig is used when the theme store is redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"     env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		GitHub: GitHubConfig{
			APIURL:         "https://api.github.com",
			WebURL:         "https://github.com",
			RequestTimeout: 30 * time.Second,
			MaxConcurrent:  5,
		},
		Theme: ThemeConfig{
			Store:    ThemeStoreMemory,
			FilePath: "data/themes.json",
		},
		Session: SessionConfig{
			CookieName:  "gh_lookup_session",
			IdleTimeout: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}

	for name, raw := range map[string]string{"github.api_url": c.GitHub.APIURL, "github.web_url": c.GitHub.WebURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.GitHub.RequestTimeout <= 0 {
		errs = append(errs, errors.New("github.request_timeout must be positive"))
	}
	if c.GitHub.MaxConcurrent < 1 {
		errs = append(errs, fmt.Errorf("github.max_concurrent must be at least 1, got %d", c.GitHub.MaxConcurrent))
	}

	switch c.Theme.Store {
	case ThemeStoreMemory:
	case ThemeStoreFile:
		if c.Theme.FilePath == "" {
			errs = append(errs, errors.New("theme.file_path is required for the file store"))
		}
	case ThemeStoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("theme.store must be memory, file or redis, got %q", c.Theme.Store))
	}

	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("session.idle_timeout must be positive"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}
	return nil
}

// Load loads configuration from .env, the config file and the environment.
func Load() (*Config, error) {
	return NewLoader().Load("")
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
	envFiles    []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{"configs/config.yaml", "config.yaml"},
		envFiles:    []string{".env"},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// WithEnvFiles sets the dotenv files to read. Missing files are ignored.
func (l *Loader) WithEnvFiles(files []string) *Loader {
	l.envFiles = files
	return l
}

// Load builds the configuration: defaults, then the YAML file, then environment variables.
// An explicit path (or CONFIG_PATH) must exist; searched paths are optional.
func (l *Loader) Load(path string) (*Config, error) {
	l.loadEnvFiles()

	cfg := DefaultConfig()

	configPath := path
	explicit := path != ""
	if configPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
			explicit = true
		} else {
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && explicit {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	}

	if err := loadEnvToStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFiles loads dotenv files without overriding variables already set.
func (l *Loader) loadEnvFiles() {
	for _, f := range l.envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// loadEnvToStruct recursively overrides fields tagged `env:"NAME"` from the environment.
func loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}
		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

func setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
