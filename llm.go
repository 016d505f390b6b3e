package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

const lessonsSystemPrompt = `You are a change-management analyst writing the narrative section of a lessons-learned report.
Given a change request's final scores, the differences between the requester's submission and the CAB-revised assessment, and the execution outcome, write 2-4 short paragraphs:
what the CAB corrected and why that likely mattered, how estimates compared to reality, and one concrete recommendation for future submissions.
Plain prose, no headings, no bullet lists.`

// GenerateLessonsNarrative asks the LLM for a short narrative to append to a
// lessons-learned report. Returns "" without error when no API key is
// configured — the report is still useful without it.
func GenerateLessonsNarrative(cfg Config, cr *ChangeRequest) (string, error) {
	if !cfg.LLMConfigured() {
		return "", nil
	}
	model := cfg.LLMModel
	if model == "" {
		model = defaultAnthropicModel
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Change request #%d: %s\nFinal status: %s\n", cr.ID, cr.Title, cr.Status)
	if cr.Benefit != nil {
		fmt.Fprintf(&b, "Benefit score: %.1f\n", cr.Benefit.Score)
	}
	if cr.Effort != nil {
		fmt.Fprintf(&b, "Effort score: %.0f\n", cr.Effort.Score)
	}
	if cr.Risk != nil {
		fmt.Fprintf(&b, "Risk score: %.0f (%s)\n", cr.Risk.Score, cr.Risk.Level)
	}
	diffs := DiffWizardInputs(cr.OriginalInput, cr.WizardInput)
	if len(diffs) == 0 {
		b.WriteString("CAB revisions: none, submission accepted as-is.\n")
	} else {
		b.WriteString("CAB revisions:\n")
		for _, d := range diffs {
			fmt.Fprintf(&b, "- %s: %q -> %q\n", d.Field, d.Original, d.Revised)
		}
	}
	if sched := cr.Scheduling; sched != nil && sched.ActualStart != nil && sched.ActualEnd != nil {
		fmt.Fprintf(&b, "Planned window: %s to %s\nActual: %s to %s\n",
			sched.ScheduledStart.Format("2006-01-02 15:04"), sched.ScheduledEnd.Format("2006-01-02 15:04"),
			sched.ActualStart.Format("2006-01-02 15:04"), sched.ActualEnd.Format("2006-01-02 15:04"))
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: lessonsSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(b.String())),
		},
	})
	if err != nil {
		log.Printf("llm narrative error change=%d: %v", cr.ID, err)
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm narrative change=%d size=%d tokens_in=%d tokens_out=%d",
				cr.ID, len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}
