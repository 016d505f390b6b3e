package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

const changeHelpText = "CAB Change Request Bot commands:\n" +
	"• `/change submit <title> | {wizard json}` — Submit a change request\n" +
	"• `/change list [status]` — List requests (default: awaiting review)\n" +
	"• `/change show <id>` — Show one request with scores\n" +
	"• `/change schedule <id> <start> <end>` — Schedule an approved change (2006-01-02 or 2006-01-02T15:04)\n" +
	"• `/change start|complete|fail|cancel <id>` — Move a change through execution\n" +
	"• `/change lessons <id>` — Generate the lessons-learned report\n" +
	"• `/cab review <id>` — Pull a submission into CAB review\n" +
	"• `/cab approve <id> [{assessment json}] [comments]` — Approve with optional revised assessment\n" +
	"• `/cab reject <id> [comments]` — Reject (no scoring)"

func StartSlackBot(cfg Config, store *Store, api *slack.Client) error {
	client := socketmode.New(api)

	go func() {
		for evt := range client.Events {
			switch evt.Type {
			case socketmode.EventTypeSlashCommand:
				client.Ack(*evt.Request)
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				log.Printf("Slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
				go handleSlashCommand(api, store, cfg, cmd)
			}
		}
	}()

	log.Println("Slack bot connected via Socket Mode")
	return client.Run()
}

func handleSlashCommand(api *slack.Client, store *Store, cfg Config, cmd slack.SlashCommand) {
	switch cmd.Command {
	case "/change":
		handleChangeCommand(api, store, cfg, cmd)
	case "/cab":
		handleCabCommand(api, store, cfg, cmd)
	case "/help":
		respond(api, cmd, changeHelpText)
	}
}

func handleChangeCommand(api *slack.Client, store *Store, cfg Config, cmd slack.SlashCommand) {
	sub, rest := splitSubcommand(cmd.Text)
	switch sub {
	case "submit":
		handleSubmit(api, store, cmd, rest)
	case "list":
		handleList(api, store, cmd, rest)
	case "show":
		withChangeID(api, cmd, rest, func(id int64) (string, error) {
			cr, err := store.FindChangeByID(id)
			if err != nil {
				return "", err
			}
			return formatChangeDetail(cr), nil
		})
	case "schedule":
		handleSchedule(api, store, cmd, rest)
	case "start":
		withChangeID(api, cmd, rest, func(id int64) (string, error) {
			cr, err := StartChange(store, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Change #%d is now in progress.", cr.ID), nil
		})
	case "complete":
		handleFinish(api, store, cfg, cmd, rest, CompleteChange)
	case "fail":
		handleFinish(api, store, cfg, cmd, rest, FailChange)
	case "cancel":
		withChangeID(api, cmd, rest, func(id int64) (string, error) {
			cr, err := CancelChange(store, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Change #%d cancelled.", cr.ID), nil
		})
	case "lessons":
		handleLessons(api, store, cfg, cmd, rest)
	default:
		respond(api, cmd, changeHelpText)
	}
}

func handleCabCommand(api *slack.Client, store *Store, cfg Config, cmd slack.SlashCommand) {
	sub, rest := splitSubcommand(cmd.Text)
	switch sub {
	case "review":
		withChangeID(api, cmd, rest, func(id int64) (string, error) {
			cr, err := MarkUnderReview(store, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Change #%d is now under CAB review.", cr.ID), nil
		})
	case "approve", "reject":
		handleDecision(api, store, cmd, sub, rest)
	default:
		respond(api, cmd, changeHelpText)
	}
}

func handleSubmit(api *slack.Client, store *Store, cmd slack.SlashCommand, rest string) {
	title, input, err := parseSubmitArgs(rest)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	cr, err := SubmitChange(store, title, cmd.UserName, cmd.UserID, input)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	respond(api, cmd, fmt.Sprintf("Change request #%d submitted: %s. The CAB will review it.", cr.ID, cr.Title))
}

func handleList(api *slack.Client, store *Store, cmd slack.SlashCommand, rest string) {
	statuses := []Status{StatusSubmitted, StatusUnderReview}
	if st := strings.TrimSpace(rest); st != "" {
		statuses = []Status{Status(st)}
	}
	changes, err := store.ListChangesByStatus(statuses...)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	if len(changes) == 0 {
		respond(api, cmd, "No matching change requests.")
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d change request(s):\n", len(changes))
	for _, cr := range changes {
		fmt.Fprintf(&b, "• #%d %s — %s", cr.ID, cr.Title, cr.Status)
		if cr.Priority != "" {
			fmt.Fprintf(&b, ", priority %s", cr.Priority)
		}
		fmt.Fprintf(&b, " (by %s)\n", cr.Requester)
	}
	respond(api, cmd, b.String())
}

func handleSchedule(api *slack.Client, store *Store, cmd slack.SlashCommand, rest string) {
	id, start, end, err := parseScheduleArgs(rest)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	cr, err := ScheduleChange(store, id, start, end)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	respond(api, cmd, fmt.Sprintf("Change #%d scheduled %s → %s.",
		cr.ID, start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04")))
}

func handleDecision(api *slack.Client, store *Store, cmd slack.SlashCommand, decision, rest string) {
	idStr, remainder := splitSubcommand(rest)
	id, err := parseChangeID(idStr)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	assessment, comments, err := parseAssessmentAndComments(remainder)
	if err != nil {
		respond(api, cmd, fmt.Sprintf("Could not parse the assessment JSON: %v", err))
		return
	}
	cr, err := DecideCabReview(store, store, id, decision, assessment, comments, cmd.UserID)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	if decision == "reject" {
		respond(api, cmd, fmt.Sprintf("Change #%d rejected.", cr.ID))
		return
	}
	respond(api, cmd, fmt.Sprintf(
		"Change #%d approved. Benefit %.1f, effort %.0f, risk %.0f (%s), priority %s.",
		cr.ID, snapScore(cr.Benefit), snapScore(cr.Effort), snapScore(cr.Risk), snapLevel(cr.Risk), cr.Priority))
}

func handleFinish(api *slack.Client, store *Store, cfg Config, cmd slack.SlashCommand, rest string, op func(ChangeStore, int64) (*ChangeRequest, error)) {
	withChangeID(api, cmd, rest, func(id int64) (string, error) {
		cr, err := op(store, id)
		if err != nil {
			return "", err
		}
		path, reportErr := generateLessonsReport(cfg, cr)
		msg := fmt.Sprintf("Change #%d is now %s.", cr.ID, cr.Status)
		if reportErr != nil {
			log.Printf("lessons report error change=%d: %v", cr.ID, reportErr)
		} else {
			msg += fmt.Sprintf(" Lessons-learned report: %s", path)
		}
		return msg, nil
	})
}

func handleLessons(api *slack.Client, store *Store, cfg Config, cmd slack.SlashCommand, rest string) {
	withChangeID(api, cmd, rest, func(id int64) (string, error) {
		cr, err := store.FindChangeByID(id)
		if err != nil {
			return "", err
		}
		path, err := generateLessonsReport(cfg, cr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Lessons-learned report for #%d: %s", cr.ID, path), nil
	})
}

func generateLessonsReport(cfg Config, cr *ChangeRequest) (string, error) {
	content := BuildLessonsReport(cr)
	if narrative, err := GenerateLessonsNarrative(cfg, cr); err == nil && narrative != "" {
		content += "## Narrative\n\n" + narrative + "\n"
	}
	return WriteLessonsReportFile(content, cfg.ReportOutputDir, cr)
}

func withChangeID(api *slack.Client, cmd slack.SlashCommand, rest string, fn func(int64) (string, error)) {
	id, err := parseChangeID(strings.TrimSpace(rest))
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	msg, err := fn(id)
	if err != nil {
		respond(api, cmd, userFacingError(err))
		return
	}
	respond(api, cmd, msg)
}

func respond(api *slack.Client, cmd slack.SlashCommand, text string) {
	_, err := api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("Error responding to %s in %s: %v", cmd.UserID, cmd.ChannelID, err)
	}
}

// userFacingError translates workflow errors into replies; anything
// unexpected is logged and reported generically.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "No change request with that id."
	case errors.Is(err, ErrInvalidState):
		return fmt.Sprintf("That operation is not allowed right now: %v", err)
	case errors.Is(err, ErrValidation):
		return fmt.Sprintf("Invalid request: %v", err)
	case errors.Is(err, ErrConfiguration):
		return "Scoring configuration is unavailable, try again later."
	default:
		log.Printf("Unexpected command error: %v", err)
		return "Something went wrong, please try again."
	}
}

func splitSubcommand(text string) (string, string) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", ""
	}
	parts := strings.SplitN(t, " ", 2)
	if len(parts) == 1 {
		return strings.ToLower(parts[0]), ""
	}
	return strings.ToLower(parts[0]), strings.TrimSpace(parts[1])
}

func parseChangeID(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: expected a change id, got %q", ErrValidation, s)
	}
	return id, nil
}

// parseSubmitArgs splits "/change submit <title> | {wizard json}". The JSON
// payload is optional; without it the request is scored from defaults once
// the CAB fills in an assessment.
func parseSubmitArgs(rest string) (string, WizardInput, error) {
	var input WizardInput
	title := rest
	if idx := strings.Index(rest, "|"); idx >= 0 {
		title = rest[:idx]
		payload := strings.TrimSpace(rest[idx+1:])
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), &input); err != nil {
				return "", WizardInput{}, fmt.Errorf("%w: wizard payload: %v", ErrValidation, err)
			}
		}
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", WizardInput{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return title, input, nil
}

// parseAssessmentAndComments splits an optional leading JSON object from the
// trailing free-text comments.
func parseAssessmentAndComments(rest string) (*CabAssessment, string, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, "", nil
	}
	if !strings.HasPrefix(rest, "{") {
		return nil, rest, nil
	}
	dec := json.NewDecoder(strings.NewReader(rest))
	var assessment CabAssessment
	if err := dec.Decode(&assessment); err != nil {
		return nil, "", err
	}
	comments := strings.TrimSpace(rest[dec.InputOffset():])
	return &assessment, comments, nil
}

var scheduleLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

func parseScheduleArgs(rest string) (int64, time.Time, time.Time, error) {
	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return 0, time.Time{}, time.Time{}, fmt.Errorf("%w: usage is schedule <id> <start> <end>", ErrValidation)
	}
	id, err := parseChangeID(fields[0])
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	start, err := parseScheduleTime(fields[1])
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	end, err := parseScheduleTime(fields[2])
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	// A date-only end means "through that whole day".
	if end.Equal(end.Truncate(24*time.Hour)) && len(fields[2]) == len("2006-01-02") {
		end = end.Add(24 * time.Hour)
	}
	return id, start, end, nil
}

func parseScheduleTime(s string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: could not parse time %q (use 2006-01-02 or 2006-01-02T15:04)", ErrValidation, s)
}

func snapScore(s *ScoreSnapshot) float64 {
	if s == nil {
		return 0
	}
	return s.Score
}

func snapLevel(s *ScoreSnapshot) string {
	if s == nil {
		return "unrated"
	}
	return s.Level
}

func formatChangeDetail(cr *ChangeRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s\nStatus: %s", cr.ID, cr.Title, cr.Status)
	if cr.Priority != "" {
		fmt.Fprintf(&b, " | Priority: %s", cr.Priority)
	}
	fmt.Fprintf(&b, "\nRequested by %s on %s\n", cr.Requester, cr.CreatedAt.Format("2006-01-02"))
	if cr.Benefit != nil {
		fmt.Fprintf(&b, "Benefit: %.1f", cr.Benefit.Score)
		if cr.Effort != nil {
			fmt.Fprintf(&b, " | Effort: %.0f", cr.Effort.Score)
		}
		if cr.Risk != nil {
			fmt.Fprintf(&b, " | Risk: %.0f (%s)", cr.Risk.Score, cr.Risk.Level)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("Not yet scored.\n")
	}
	if sched := cr.Scheduling; sched != nil {
		fmt.Fprintf(&b, "Scheduled %s → %s\n",
			sched.ScheduledStart.Format("2006-01-02 15:04"), sched.ScheduledEnd.Format("2006-01-02 15:04"))
	}
	return b.String()
}
