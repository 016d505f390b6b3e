package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// StartReviewReminderScheduler starts a cron-based scheduler that nudges CAB
// members about requests stuck in review.
// The schedule is a standard 5-field cron expression (minute hour day-of-month month day-of-week).
// Examples: "0 9 * * *" (daily 9am), "0 9 * * 1-5" (weekdays 9am).
func StartReviewReminderScheduler(cfg Config, store *Store, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.ReviewReminderSchedule)
	if schedule == "" {
		log.Println("Review reminders disabled (review_reminder_schedule not set)")
		return
	}
	if len(cfg.CabMemberIDs) == 0 {
		log.Println("Review reminders disabled: no cab_members configured")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid review_reminder_schedule '%s': %v — reminders disabled", schedule, err)
		return
	}

	log.Printf("Review reminders scheduled (cron: %s) for %d CAB members, stale after %d days",
		schedule, len(cfg.CabMemberIDs), cfg.StaleReviewDays)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next review reminder at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)
			SendReviewReminders(cfg, store, api)
		}
	}()
}

// SendReviewReminders DMs each CAB member the list of requests awaiting a
// decision longer than the configured stale age.
func SendReviewReminders(cfg Config, store *Store, api *slack.Client) {
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.StaleReviewDays)
	stale, err := store.ListStaleReviews(cutoff)
	if err != nil {
		log.Printf("Review reminder query error: %v", err)
		return
	}
	if len(stale) == 0 {
		log.Println("Review reminder: nothing awaiting review")
		return
	}

	msg := BuildReviewReminderMessage(stale, cfg.StaleReviewDays)

	for _, userID := range cfg.CabMemberIDs {
		channel, _, _, err := api.OpenConversation(&slack.OpenConversationParameters{
			Users: []string{userID},
		})
		if err != nil {
			log.Printf("Error opening DM with %s: %v", userID, err)
			continue
		}
		if _, _, err := api.PostMessage(channel.ID, slack.MsgOptionText(msg, false)); err != nil {
			log.Printf("Error sending reminder to %s: %v", userID, err)
			continue
		}
		log.Printf("Review reminder sent to %s (%d stale)", userID, len(stale))
	}

	if cfg.CabChannelID != "" {
		if _, _, err := api.PostMessage(cfg.CabChannelID, slack.MsgOptionText(msg, false)); err != nil {
			log.Printf("Error posting reminder to channel %s: %v", cfg.CabChannelID, err)
		}
	}
}

func BuildReviewReminderMessage(stale []ChangeRequest, staleDays int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d change request(s) have been waiting for a CAB decision for over %d day(s):\n", len(stale), staleDays)
	for _, cr := range stale {
		age := int(time.Since(cr.UpdatedAt).Hours() / 24)
		fmt.Fprintf(&b, "• #%d %s — %s, waiting %dd (requested by %s)\n", cr.ID, cr.Title, cr.Status, age, cr.Requester)
	}
	b.WriteString("Use `/cab approve <id>` or `/cab reject <id>` to decide.")
	return b.String()
}
