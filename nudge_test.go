package main

import (
	"strings"
	"testing"
	"time"
)

func TestBuildReviewReminderMessage(t *testing.T) {
	stale := []ChangeRequest{
		{ID: 3, Title: "Rotate TLS certs", Status: StatusSubmitted, Requester: "Jo Bloggs",
			UpdatedAt: time.Now().UTC().Add(-5 * 24 * time.Hour)},
		{ID: 8, Title: "Upgrade payment gateway", Status: StatusUnderReview, Requester: "Sam Smith",
			UpdatedAt: time.Now().UTC().Add(-4 * 24 * time.Hour)},
	}
	msg := BuildReviewReminderMessage(stale, 3)

	for _, want := range []string{
		"2 change request(s) have been waiting for a CAB decision for over 3 day(s):",
		"#3 Rotate TLS certs — submitted, waiting 5d (requested by Jo Bloggs)",
		"#8 Upgrade payment gateway — under_review, waiting 4d (requested by Sam Smith)",
		"`/cab approve <id>`",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}
}
