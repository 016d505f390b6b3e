package main

import (
	"log"
	"os"

	"github.com/slack-go/slack"
)

func main() {
	cfg := LoadConfig()

	store, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer store.Close()

	os.MkdirAll(cfg.ReportOutputDir, 0755)

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
		slack.OptionHTTPClient(externalHTTPClient),
	)

	StartReviewReminderScheduler(cfg, store, api)

	log.Println("Starting CAB Change Request Bot...")
	if err := StartSlackBot(cfg, store, api); err != nil {
		log.Fatalf("Slack bot error: %v", err)
	}
}
