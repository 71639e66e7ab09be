// Package config loads gitstat's settings.
//
// Settings come from a TOML file, by default $XDG_CONFIG_HOME/gitstat/config.toml.
// A missing default file is not an error: every field has a default. A few
// GITSTAT_* environment variables override the file, and the result is
// validated before use.
//
//	api_base_url = "https://api.github.com"
//	http_timeout = "10s"
//
//	[search]
//	debounce = "300ms"
//	page_size = 5
//
//	[cache]
//	backend = "redis"
//	ttl = "15m"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/gitstat/pkg/errors"
)

// Environment variables read by [Load].
const (
	EnvPath       = "GITSTAT_CONFIG"
	EnvAPIBaseURL = "GITSTAT_API_BASE_URL"
	EnvCacheKind  = "GITSTAT_CACHE_BACKEND"
	EnvRedisAddr  = "GITSTAT_REDIS_ADDR"
	EnvLogLevel   = "GITSTAT_LOG_LEVEL"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds every setting.
type Config struct {
	APIBaseURL  string        `toml:"api_base_url" validate:"required,url"`
	HTTPTimeout time.Duration `toml:"http_timeout" validate:"gt=0"`

	Search  Search  `toml:"search"`
	Profile Profile `toml:"profile"`
	Cache   Cache   `toml:"cache"`
	Redis   Redis   `toml:"redis"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`

	// Path is the file the config was read from, empty when none was.
	Path string `toml:"-"`
}

type Search struct {
	Debounce time.Duration `toml:"debounce" validate:"gt=0"`
	PageSize int           `toml:"page_size" validate:"gte=1,lte=100"`
}

type Profile struct {
	RepoLimit int `toml:"repo_limit" validate:"gte=1,lte=100"`
}

type Cache struct {
	Backend string        `toml:"backend" validate:"oneof=file memory redis none"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl" validate:"gt=0"`
}

type Redis struct {
	Addr   string `toml:"addr" validate:"omitempty,hostname_port"`
	DB     int    `toml:"db" validate:"gte=0,lte=15"`
	Prefix string `toml:"prefix"`
}

type Log struct {
	File       string `toml:"file"`
	Level      string `toml:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `toml:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `toml:"max_backups" validate:"gte=0"`
}

type Metrics struct {
	File string `toml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBaseURL:  "https://api.github.com",
		HTTPTimeout: 10 * time.Second,
		Search: Search{
			Debounce: 300 * time.Millisecond,
			PageSize: 5,
		},
		Profile: Profile{RepoLimit: 6},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     15 * time.Minute,
		},
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "gitstat:",
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/gitstat/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gitstat", "config.toml"), nil
}

// Load reads the config file at path. An empty path falls back to
// $GITSTAT_CONFIG and then to [DefaultPath]; only the default location may be
// missing. Environment overrides are applied and the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
			cfg.Path = path
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode rejects keys that do not map to a field.
func decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getEnv(EnvAPIBaseURL, cfg.APIBaseURL)
	cfg.Cache.Backend = getEnv(EnvCacheKind, cfg.Cache.Backend)
	cfg.Redis.Addr = getEnv(EnvRedisAddr, cfg.Redis.Addr)
	cfg.Log.Level = getEnv(EnvLogLevel, cfg.Log.Level)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report fields by their TOML names
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks every field. Failures are reported as one INVALID_CONFIG
// error listing each offending key.
func (c Config) Validate() error {
	var problems []string

	if err := validatorInstance().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config")
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s: failed %q (got %v)", tomlKey(fe.Namespace()), fe.Tag(), fe.Value()))
		}
	}
	if c.APIBaseURL != "" {
		if err := errors.ValidateURL(c.APIBaseURL); err != nil {
			problems = append(problems, "api_base_url: "+errors.UserMessage(err))
		}
	}
	if c.Cache.Backend == BackendRedis && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr: required when cache.backend is redis")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// tomlKey turns "Config.search.page_size" into "search.page_size".
func tomlKey(ns string) string {
	_, rest, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return rest
}
