package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Default client list used when the clients table is empty, so the
// classifier prompt always has names to reason about.
var defaultKnownClients = []string{"Сайакал", "Анна", "Марков", "Ксения"}

type Config struct {
	TelegramBotToken string `yaml:"telegram_bot_token"`
	SupervisorID     int64  `yaml:"supervisor_telegram_id"`

	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	DBPath string `yaml:"db_path"`

	DefaultClients   []string `yaml:"default_clients"`
	DailySummaryCron string   `yaml:"daily_summary_cron"`
	Timezone         string   `yaml:"timezone"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	envOverrideInt64(&cfg.SupervisorID, "SUPERVISOR_TELEGRAM_ID")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.DailySummaryCron, "DAILY_SUMMARY_CRON")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if names := os.Getenv("DEFAULT_CLIENTS"); names != "" {
		cfg.DefaultClients = nil
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				cfg.DefaultClients = append(cfg.DefaultClients, name)
			}
		}
	}

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "anthropic"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./workbot.db"
	}
	if len(cfg.DefaultClients) == 0 {
		cfg.DefaultClients = defaultKnownClients
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	if cfg.TelegramBotToken == "" {
		log.Fatalf("Required config 'telegram_bot_token' is not set (via config.yaml or env var)")
	}
	if cfg.SupervisorID == 0 {
		log.Fatalf("Required config 'supervisor_telegram_id' is not set (via config.yaml or env var)")
	}

	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic' or 'openai', got '%s'", cfg.LLMProvider)
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Timezone = time.Local.String()
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		time.Local = loc
	}

	if cfg.DailySummaryCron != "" {
		if _, err := cron.ParseStandard(cfg.DailySummaryCron); err != nil {
			log.Fatalf("invalid daily_summary_cron '%s': %v", cfg.DailySummaryCron, err)
		}
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt64(field *int64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
