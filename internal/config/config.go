package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Env           string        `yaml:"env"`
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Mentorship    Mentorship    `yaml:"mentorship"`
	Admin         AdminAccount  `yaml:"admin"`
}

// Mentorship tunes the request-to-learning lifecycle.
type Mentorship struct {
	MaxWorkload   int `yaml:"max_workload"`
	AssignRetries int `yaml:"assign_retries"`
}

// AdminAccount is the bootstrap administrator created by db_init when no
// account with that email exists yet.
type AdminAccount struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding the environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 24 * time.Hour

	cfg := &Config{
		Env:           getEnv("MENTOR_ENV", "development"),
		Addr:          getEnv("MENTOR_ADDR", ":8080"),
		JWTSecret:     getEnv("MENTOR_JWT_SECRET", insecureJWTSecret),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("MENTOR_DATABASE_PATH", "mentorship.db"),
		TokenDuration: tokenDuration,
		Mentorship: Mentorship{
			MaxWorkload:   getEnvInt("MENTOR_MAX_WORKLOAD", 5),
			AssignRetries: getEnvInt("MENTOR_ASSIGN_RETRIES", 3),
		},
		Admin: AdminAccount{
			Name:     getEnv("MENTOR_ADMIN_NAME", "Administrator"),
			Email:    getEnv("MENTOR_ADMIN_EMAIL", ""),
			Password: getEnv("MENTOR_ADMIN_PASSWORD", ""),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Env != "development" && c.JWTSecret == insecureJWTSecret {
		return fmt.Errorf("jwt_secret must be changed outside development (env=%q)", c.Env)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.APITimeout)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive, got %v", c.TokenDuration)
	}
	if c.Mentorship.MaxWorkload < 1 || c.Mentorship.MaxWorkload > 5 {
		return fmt.Errorf("mentorship.max_workload must be within 1..5, got %d", c.Mentorship.MaxWorkload)
	}
	if c.Mentorship.AssignRetries < 1 {
		return fmt.Errorf("mentorship.assign_retries must be at least 1, got %d", c.Mentorship.AssignRetries)
	}
	if c.Admin.Email != "" && len(c.Admin.Password) < 8 {
		return errors.New("admin.password must be at least 8 characters")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}
