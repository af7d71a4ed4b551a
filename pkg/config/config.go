package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const (
	configFileENV      = "CONFIG_FILE"
	defaultConfigFile  = "/config/locallibrary.yaml"
	environmentENV     = "ENVIRONMENT"
	environmentTest    = "test"
	requiredForTagName = "required_for"
)

type Config struct {
	DatabaseDriver            string        `koanf:"database_driver" default:"sqlite"`
	DatabaseFilePath          string        `koanf:"database_file_path" required_for:"sqlite"`
	DatabaseURL               string        `koanf:"database_url" required_for:"postgres"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	DatabaseMaxConns          int           `koanf:"database_max_conns" default:"8"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	Environment               string        `koanf:"environment" default:"development"`
	FanoutOperationTimeout    time.Duration `koanf:"fanout_operation_timeout" default:"5s"`
	Hostname                  string        `koanf:"hostname"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3000"`
}

// New loads the config file named by CONFIG_FILE, if it exists, then lets
// environment variables override it. Keys are the snake_case field names;
// the env form is the same in upper case.
func New() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config file %s", path)
		}
	}

	known := knownKeys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if cfg.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		cfg.Hostname = hostname
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewForTest returns a config for an in-memory SQLite database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = environmentTest
	cfg.FanoutOperationTimeout = time.Second
	cfg.Hostname = "test"
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

// IsTest reports whether test-only routes should be mounted.
func (cfg *Config) IsTest() bool {
	return cfg.Environment == environmentTest
}

func (cfg *Config) validate() error {
	switch cfg.DatabaseDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return errors.Errorf("invalid config: database_driver must be one of %s, %s or %s, got %q",
			DriverSQLite, DriverPostgres, DriverMemory, cfg.DatabaseDriver)
	}

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get(requiredForTagName) != cfg.DatabaseDriver {
			continue
		}
		if v.Field(i).IsZero() {
			key := toSnakeCase(f.Name)
			return errors.Errorf("missing required config: set %s or %s in the config file",
				strings.ToUpper(key), key)
		}
	}
	return nil
}

// knownKeys is the set of keys the environment may set.
func knownKeys() map[string]struct{} {
	t := reflect.TypeOf(Config{})
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		keys[t.Field(i).Tag.Get("koanf")] = struct{}{}
	}
	return keys
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
