package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"docfill/internal/access"
)

type Config struct {
	AI struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"` // openai-compatible endpoints only
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Watch struct {
		Inbox     string `yaml:"inbox"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"watch"`
	Convert struct {
		Soffice        string   `yaml:"soffice"`
		Unoconv        string   `yaml:"unoconv"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Formats        []string `yaml:"formats"`
	} `yaml:"convert"`
	Access struct {
		DefaultPlan string                 `yaml:"default_plan"`
		UserPlans   map[string]string      `yaml:"user_plans"`
		Plans       map[string]access.Plan `yaml:"plans"`
	} `yaml:"access"`
	Vessels struct {
		RegistryPath string `yaml:"registry_path"`
	} `yaml:"vessels"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.5-flash-lite"
	cfg.AI.TimeoutSeconds = 20
	cfg.Storage.Path = "docfill.db"
	cfg.Server.Addr = ":8080"
	cfg.Watch.Inbox = "inbox"
	cfg.Watch.OutputDir = "filled"
	cfg.Convert.Soffice = "soffice"
	cfg.Convert.Unoconv = "unoconv"
	cfg.Convert.TimeoutSeconds = 30
	cfg.Convert.Formats = []string{"docx", "pdf"}
	cfg.Access.DefaultPlan = "free"
	return &cfg
}

// Load builds the configuration: defaults, then the YAML file when a path
// is given, then environment variable overrides.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. YAML over defaults
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// 3. Override with environment variables if present
	if apiKey := os.Getenv("DOCFILL_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("DOCFILL_AI_PROVIDER"); provider != "" {
		cfg.AI.Provider = provider
	}
	if model := os.Getenv("DOCFILL_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}
	if baseURL := os.Getenv("DOCFILL_AI_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if dbPath := os.Getenv("DOCFILL_DB"); dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if addr := os.Getenv("DOCFILL_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if plan := os.Getenv("DOCFILL_DEFAULT_PLAN"); plan != "" {
		cfg.Access.DefaultPlan = plan
	}
	if timeout := os.Getenv("DOCFILL_AI_TIMEOUT_SECONDS"); timeout != "" {
		n, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid DOCFILL_AI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.AI.TimeoutSeconds = n
	}

	return cfg, nil
}
