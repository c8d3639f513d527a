package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garnizeh/mentorship/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Env:           "development",
		Addr:          ":8080",
		JWTSecret:     "supersecretkey",
		APITimeout:    5 * time.Second,
		DatabasePath:  "mentorship.db",
		TokenDuration: 1 * time.Hour,
		Mentorship:    config.Mentorship{MaxWorkload: 5, AssignRetries: 3},
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"empty secret", func(c *config.Config) { c.JWTSecret = "" }},
		{"empty addr", func(c *config.Config) { c.Addr = "" }},
		{"empty database path", func(c *config.Config) { c.DatabasePath = "" }},
		{"zero timeout", func(c *config.Config) { c.APITimeout = 0 }},
		{"negative token duration", func(c *config.Config) { c.TokenDuration = -time.Minute }},
		{"workload zero", func(c *config.Config) { c.Mentorship.MaxWorkload = 0 }},
		{"workload above five", func(c *config.Config) { c.Mentorship.MaxWorkload = 6 }},
		{"no retries", func(c *config.Config) { c.Mentorship.AssignRetries = 0 }},
		{"short admin password", func(c *config.Config) {
			c.Admin = config.AdminAccount{Email: "root@example.com", Password: "short"}
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected Validate to fail")
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MENTOR_ADDR", "")
	t.Setenv("MENTOR_JWT_SECRET", "")
	t.Setenv("MENTOR_DATABASE_PATH", "")
	t.Setenv("MENTOR_MAX_WORKLOAD", "")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != "supersecretkey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "supersecretkey")
	}
	if cfg.DatabasePath != "mentorship.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "mentorship.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 24*time.Hour)
	}
	if cfg.Mentorship.MaxWorkload != 5 {
		t.Fatalf("unexpected MaxWorkload: got %d want 5", cfg.Mentorship.MaxWorkload)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MENTOR_ADDR", ":7070")
	t.Setenv("MENTOR_MAX_WORKLOAD", "3")
	t.Setenv("MENTOR_ASSIGN_RETRIES", "not-a-number")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("unexpected Addr: got %q", cfg.Addr)
	}
	if cfg.Mentorship.MaxWorkload != 3 {
		t.Fatalf("unexpected MaxWorkload: got %d", cfg.Mentorship.MaxWorkload)
	}
	if cfg.Mentorship.AssignRetries != 3 {
		t.Fatalf("unparsable int should fall back to default, got %d", cfg.Mentorship.AssignRetries)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nmentorship:\n  max_workload: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.Mentorship.MaxWorkload != 2 {
		t.Fatalf("unexpected MaxWorkload: got %d want 2", cfg.Mentorship.MaxWorkload)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MENTOR_DOTENV_CHECK=loaded\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("MENTOR_DOTENV_CHECK", "")
	os.Unsetenv("MENTOR_DOTENV_CHECK")

	if err := config.LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("MENTOR_DOTENV_CHECK"); got != "loaded" {
		t.Fatalf("expected dotenv value to be loaded, got %q", got)
	}
}
