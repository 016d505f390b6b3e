package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultStaleReviewDays = 3

type Config struct {
	SlackBotToken string `yaml:"slack_bot_token"`
	SlackAppToken string `yaml:"slack_app_token"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`

	TeamName     string   `yaml:"team_name"`
	CabChannelID string   `yaml:"cab_channel_id"`
	CabMemberIDs []string `yaml:"cab_members"`

	// ReviewReminderSchedule is a standard 5-field cron expression; empty
	// disables the reminder job.
	ReviewReminderSchedule string `yaml:"review_reminder_schedule"`
	StaleReviewDays        int    `yaml:"stale_review_days"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	LLMModel        string `yaml:"llm_model"`

	Timezone string `yaml:"timezone"`
	Location *time.Location
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
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackAppToken, "SLACK_APP_TOKEN")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.TeamName, "TEAM_NAME")
	envOverride(&cfg.CabChannelID, "CAB_CHANNEL_ID")
	envOverrideList(&cfg.CabMemberIDs, "CAB_MEMBERS")
	envOverride(&cfg.ReviewReminderSchedule, "REVIEW_REMINDER_SCHEDULE")
	envOverrideInt(&cfg.StaleReviewDays, "STALE_REVIEW_DAYS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = "./cabbot.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.TeamName == "" {
		cfg.TeamName = "Change Advisory Board"
	}
	if cfg.StaleReviewDays <= 0 {
		cfg.StaleReviewDays = defaultStaleReviewDays
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Invalid timezone '%s': %v, using UTC", cfg.Timezone, err)
		loc = time.UTC
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.SlackBotToken == "" {
		return fmt.Errorf("slack_bot_token is required")
	}
	if c.SlackAppToken == "" {
		return fmt.Errorf("slack_app_token is required")
	}
	return nil
}

// LLMConfigured reports whether lessons-learned narratives can be generated.
func (c Config) LLMConfigured() bool {
	return c.AnthropicAPIKey != ""
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Printf("Invalid %s '%s': %v, keeping %d", key, v, err, *target)
			return
		}
		*target = n
	}
}

func envOverrideList(target *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*target = out
	}
}
