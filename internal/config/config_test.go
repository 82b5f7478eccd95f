package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: \"9090\"\n  mode: debug\ndatabase:\n  driver: sqlite\n  sqlite_path: test.db\ncurriculum:\n  sentences_per_lesson: 3\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AI_MODEL", "env-model")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != "9090" || cfg.Database.Driver != "sqlite" || cfg.Database.SQLitePath != "test.db" {
		t.Errorf("file values not loaded: %+v", cfg)
	}
	if cfg.AI.Model != "env-model" || cfg.JWT.Secret != "from-env" {
		t.Errorf("env overrides not applied: ai=%+v jwt=%+v", cfg.AI, cfg.JWT)
	}
	if cfg.Curriculum.SentencesPerLesson != 3 || cfg.Curriculum.MaxSentencesPerCall != 20 {
		t.Errorf("curriculum = %+v", cfg.Curriculum)
	}
	if cfg.AI.Timeout().Seconds() != 60 {
		t.Errorf("timeout = %v", cfg.AI.Timeout())
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Server.Port != "8080" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:     ServerConfig{Mode: "release"},
			Database:   DatabaseConfig{Driver: "postgres"},
			JWT:        JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Curriculum: CurriculumConfig{SentencesPerLesson: 5, MaxSentencesPerCall: 20},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	withLock := base()
	withLock.Redis.Enabled = true
	withLock.Curriculum.PopulateLockTTLSecond = 600
	if err := withLock.Validate(); err != nil {
		t.Fatalf("lock ttl above the model timeout rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"driver":       func(c *Config) { c.Database.Driver = "oracle" },
		"short secret": func(c *Config) { c.JWT.Secret = "short" },
		"no sentences": func(c *Config) { c.Curriculum.SentencesPerLesson = 0 },
		"small batch":  func(c *Config) { c.Curriculum.MaxSentencesPerCall = 2 },
		"short lock ttl": func(c *Config) {
			c.Redis.Enabled = true
			c.AI.TimeoutSeconds = 120
			c.Curriculum.PopulateLockTTLSecond = 60
		},
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
