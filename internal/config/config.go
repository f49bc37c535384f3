package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
)

// Config - настройки сервера. Порядок: значения по умолчанию, YAML-файл,
// переменные окружения, флаги командной строки.
type Config struct {
	Port        string        `yaml:"port"`
	Storage     string        `yaml:"storage"`
	DatabaseURL string        `yaml:"database_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	Admin       Admin         `yaml:"admin"`
	// SeedDemoData заполняет in-memory хранилище тестовыми данными.
	SeedDemoData bool `yaml:"seed_demo_data"`
}

// Admin описывает учётную запись администратора, создаваемую при старте,
// если её ещё нет. Пустой пароль отключает создание.
type Admin struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func Default() Config {
	return Config{
		Port:         "8080",
		Storage:      StorageInMemory,
		TokenTTL:     24 * time.Hour,
		BcryptCost:   10,
		LogLevel:     "info",
		SeedDemoData: true,
		Admin: Admin{
			Username: "admin",
			Email:    "admin@blog.local",
		},
	}
}

// Load читает файл (если path не пустой) поверх значений по умолчанию и
// применяет переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&c.Port, "PORT")
	setString(&c.Storage, "STORAGE")
	setString(&c.DatabaseURL, "DATABASE_URL", "FULL_URI")
	setString(&c.JWTSecret, "JWT_SECRET_KEY")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		c.BcryptCost = n
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q (in-memory or postgres)", c.Storage))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY must be set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port must be set"))
	}
	return errors.Join(errs...)
}
