package main

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestSplitSubcommand(t *testing.T) {
	cases := []struct {
		in, sub, rest string
	}{
		{"submit Title | {}", "submit", "Title | {}"},
		{"  LIST  approved ", "list", "approved"},
		{"show", "show", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		sub, rest := splitSubcommand(c.in)
		if sub != c.sub || rest != c.rest {
			t.Errorf("splitSubcommand(%q) = (%q, %q), want (%q, %q)", c.in, sub, rest, c.sub, c.rest)
		}
	}
}

func TestParseChangeID(t *testing.T) {
	if id, err := parseChangeID("#12"); err != nil || id != 12 {
		t.Errorf("parseChangeID(#12) = %d, %v", id, err)
	}
	if id, err := parseChangeID(" 7 "); err != nil || id != 7 {
		t.Errorf("parseChangeID(7) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseChangeID(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("parseChangeID(%q): err = %v, want ErrValidation", bad, err)
		}
	}
}

func TestParseSubmitArgs(t *testing.T) {
	title, input, err := parseSubmitArgs(`Upgrade payment gateway | {"changeReasons":{"revenueImprovement":true},"complexity":6}`)
	if err != nil {
		t.Fatalf("parseSubmitArgs: %v", err)
	}
	if title != "Upgrade payment gateway" {
		t.Errorf("title = %q", title)
	}
	if !input.ChangeReasons.RevenueImprovement || input.Complexity != 6 {
		t.Errorf("input = %+v", input)
	}

	title, input, err = parseSubmitArgs("Just a title")
	if err != nil || title != "Just a title" || input.Complexity != 0 {
		t.Errorf("title-only parse: %q, %+v, %v", title, input, err)
	}

	if _, _, err := parseSubmitArgs("  | {}"); !errors.Is(err, ErrValidation) {
		t.Errorf("missing title: err = %v, want ErrValidation", err)
	}
	if _, _, err := parseSubmitArgs("Title | {not json"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad json: err = %v, want ErrValidation", err)
	}
}

func TestParseAssessmentAndComments(t *testing.T) {
	a, comments, err := parseAssessmentAndComments(`{"complexity": 7} looks fine to me`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a == nil || a.Complexity == nil || *a.Complexity != 7 {
		t.Fatalf("assessment = %+v", a)
	}
	if comments != "looks fine to me" {
		t.Fatalf("comments = %q", comments)
	}

	a, comments, err = parseAssessmentAndComments("plain comments only")
	if err != nil || a != nil || comments != "plain comments only" {
		t.Fatalf("comments-only parse: %+v, %q, %v", a, comments, err)
	}

	a, comments, err = parseAssessmentAndComments("   ")
	if err != nil || a != nil || comments != "" {
		t.Fatalf("empty parse: %+v, %q, %v", a, comments, err)
	}

	if _, _, err := parseAssessmentAndComments(`{"complexity": }`); err == nil {
		t.Fatal("malformed json must error")
	}
}

func TestParseAssessmentFactorBlock(t *testing.T) {
	a, _, err := parseAssessmentAndComments(
		`{"revenueImprovement":{"rawValue":"£50,000","rawTimeline":"6","explanation":"revised"}}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f := a.RevenueImprovement
	if f == nil || f.RawValue != "£50,000" || f.RawTimeline != "6" || f.Explanation != "revised" {
		t.Fatalf("factor block = %+v", f)
	}
}

func TestParseScheduleArgs(t *testing.T) {
	id, start, end, err := parseScheduleArgs("3 2026-09-14T22:00 2026-09-15T02:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != 3 {
		t.Errorf("id = %d", id)
	}
	if start.Hour() != 22 || end.Hour() != 2 {
		t.Errorf("window = %v -> %v", start, end)
	}

	// Date-only end means through that whole day.
	_, start, end, err = parseScheduleArgs("3 2026-09-14 2026-09-14")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !end.Equal(start.Add(24 * time.Hour)) {
		t.Errorf("date-only end should extend to midnight: %v -> %v", start, end)
	}

	if _, _, _, err := parseScheduleArgs("3 2026-09-14"); !errors.Is(err, ErrValidation) {
		t.Errorf("missing end: err = %v, want ErrValidation", err)
	}
	if _, _, _, err := parseScheduleArgs("3 tomorrow 2026-09-15"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad time: err = %v, want ErrValidation", err)
	}
}

func TestUserFacingError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{errors.New("boom"), "Something went wrong, please try again."},
		{ErrConfiguration, "Scoring configuration is unavailable, try again later."},
		{ErrNotFound, "No change request with that id."},
	}
	for _, c := range cases {
		if got := userFacingError(c.err); got != c.want {
			t.Errorf("userFacingError(%v) = %q, want %q", c.err, got, c.want)
		}
	}
	// Wrapped sentinels still translate.
	wrapped := fmt.Errorf("%w: title is required", ErrValidation)
	if got := userFacingError(wrapped); got == "Something went wrong, please try again." {
		t.Errorf("wrapped validation error not translated: %q", got)
	}
}
