// README: Config loader; defaults, then optional YAML file, then environment (env wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ModeParams struct {
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type AIConfig struct {
	Provider   string        `yaml:"provider"`
	OpenAIKey  string        `yaml:"-"`
	OpenAIURL  string        `yaml:"openai_base_url"`
	OpenAI     string        `yaml:"openai_model"`
	OpenAIText string        `yaml:"openai_text_model"`
	GeminiKey  string        `yaml:"-"`
	Gemini     string        `yaml:"gemini_model"`
	Timeout    time.Duration `yaml:"timeout"`
	Structured ModeParams    `yaml:"structured"`
	Text       ModeParams    `yaml:"text"`
}

type PipelineConfig struct {
	DefaultFormat string `yaml:"default_format"`
	CostPolicy    string `yaml:"cost_policy"`
	StrictDays    bool   `yaml:"strict_days"`
}

type Config struct {
	Env  string `yaml:"env"`
	HTTP struct {
		Addr        string   `yaml:"addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"http"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Quota    struct {
		PerMonth int `yaml:"per_month"`
	} `yaml:"quota"`
	RateLimit struct {
		PerMinute int `yaml:"per_minute"`
	} `yaml:"rate_limit"`
	Maps struct {
		APIKey      string `yaml:"-"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"maps"`
}

// Load reads .env files (if any), the optional ITINERARY_CONFIG_FILE and then the environment.
// Credentials are only ever taken from the environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("ITINERARY_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	var cfg Config
	cfg.Env = "dev"
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.CORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg.AI.Provider = "openai"
	cfg.AI.OpenAIURL = "https://api.openai.com"
	cfg.AI.OpenAI = "gpt-4o-mini"
	cfg.AI.Gemini = "gemini-2.0-flash"
	cfg.AI.Timeout = 120 * time.Second
	cfg.AI.Structured = ModeParams{Temperature: 0.7, MaxTokens: 4000}
	cfg.AI.Text = ModeParams{Temperature: 0.8, MaxTokens: 3000}
	cfg.Pipeline.DefaultFormat = "text"
	cfg.Pipeline.CostPolicy = "trust_model"
	cfg.RateLimit.PerMinute = 10
	cfg.Maps.Concurrency = 4
	return cfg
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envOrDefault("ITINERARY_ENV", cfg.Env)
	cfg.HTTP.Addr = envOrDefault("ITINERARY_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = envOrDefaultList("ITINERARY_CORS_ORIGINS", cfg.HTTP.CORSOrigins)
	cfg.DB.DSN = envOrDefault("ITINERARY_DB_DSN", cfg.DB.DSN)
	cfg.Redis.Addr = envOrDefault("ITINERARY_REDIS_ADDR", cfg.Redis.Addr)

	cfg.AI.Provider = strings.ToLower(envOrDefault("ITINERARY_AI_PROVIDER", cfg.AI.Provider))
	cfg.AI.OpenAIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.AI.OpenAIURL = strings.TrimRight(envOrDefault("OPENAI_BASE_URL", cfg.AI.OpenAIURL), "/")
	cfg.AI.OpenAI = envOrDefault("OPENAI_MODEL", cfg.AI.OpenAI)
	cfg.AI.OpenAIText = envOrDefault("OPENAI_TEXT_MODEL", cfg.AI.OpenAIText)
	cfg.AI.GeminiKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.AI.Gemini = envOrDefault("GEMINI_MODEL", cfg.AI.Gemini)
	cfg.AI.Timeout = envOrDefaultDuration("ITINERARY_AI_TIMEOUT", cfg.AI.Timeout)
	cfg.AI.Structured.MaxTokens = envOrDefaultInt("ITINERARY_STRUCTURED_MAX_TOKENS", cfg.AI.Structured.MaxTokens)
	cfg.AI.Text.MaxTokens = envOrDefaultInt("ITINERARY_TEXT_MAX_TOKENS", cfg.AI.Text.MaxTokens)
	cfg.AI.Structured.Temperature = envOrDefaultFloat32("ITINERARY_STRUCTURED_TEMPERATURE", cfg.AI.Structured.Temperature)
	cfg.AI.Text.Temperature = envOrDefaultFloat32("ITINERARY_TEXT_TEMPERATURE", cfg.AI.Text.Temperature)

	cfg.Pipeline.DefaultFormat = strings.ToLower(envOrDefault("ITINERARY_DEFAULT_FORMAT", cfg.Pipeline.DefaultFormat))
	cfg.Pipeline.CostPolicy = strings.ToLower(envOrDefault("ITINERARY_COST_POLICY", cfg.Pipeline.CostPolicy))
	cfg.Pipeline.StrictDays = envOrDefaultBool("ITINERARY_STRICT_DAYS", cfg.Pipeline.StrictDays)

	cfg.Quota.PerMonth = envOrDefaultInt("ITINERARY_QUOTA_PER_MONTH", cfg.Quota.PerMonth)
	cfg.RateLimit.PerMinute = envOrDefaultInt("ITINERARY_RATE_PER_MINUTE", cfg.RateLimit.PerMinute)
	cfg.Maps.APIKey = strings.TrimSpace(os.Getenv("ITINERARY_MAPS_API_KEY"))
	cfg.Maps.Concurrency = envOrDefaultInt("ITINERARY_MAPS_CONCURRENCY", cfg.Maps.Concurrency)
}

func (c Config) validate() error {
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown ITINERARY_AI_PROVIDER %q (want openai or gemini)", c.AI.Provider)
	}
	switch c.Pipeline.DefaultFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown ITINERARY_DEFAULT_FORMAT %q (want text or json)", c.Pipeline.DefaultFormat)
	}
	switch c.Pipeline.CostPolicy {
	case "trust_model", "recompute":
	default:
		return fmt.Errorf("unknown ITINERARY_COST_POLICY %q (want trust_model or recompute)", c.Pipeline.CostPolicy)
	}
	if c.AI.Structured.MaxTokens <= 0 || c.AI.Text.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat32(key string, def float32) float32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 32); err == nil {
			return float32(n)
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(key))); v != "" {
		return v == "1" || v == "true" || v == "yes" || v == "on"
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
