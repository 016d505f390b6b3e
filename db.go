package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the sqlite handle and implements ChangeStore and
// ScoringConfigSource. Score factor blocks, wizard input and scheduling data
// persist as opaque JSON columns.
type Store struct {
	db *sql.DB
}

func InitDB(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS change_requests (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		title                 TEXT NOT NULL,
		requester             TEXT NOT NULL DEFAULT '',
		requester_id          TEXT NOT NULL DEFAULT '',
		status                TEXT NOT NULL DEFAULT 'submitted',
		priority              TEXT NOT NULL DEFAULT '',
		wizard_input          TEXT NOT NULL DEFAULT '{}',
		original_wizard_input TEXT NOT NULL DEFAULT '{}',
		scheduling_data       TEXT NOT NULL DEFAULT '',
		benefit_score         REAL,
		benefit_factors       TEXT NOT NULL DEFAULT '',
		benefit_calculated_at DATETIME,
		effort_score          REAL,
		effort_factors        TEXT NOT NULL DEFAULT '',
		effort_calculated_at  DATETIME,
		risk_score            REAL,
		risk_level            TEXT NOT NULL DEFAULT '',
		risk_factors          TEXT NOT NULL DEFAULT '',
		risk_calculated_at    DATETIME,
		created_at            DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_change_requests_status ON change_requests(status);

	CREATE TABLE IF NOT EXISTS review_votes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		change_id   INTEGER NOT NULL,
		reviewer_id TEXT NOT NULL,
		vote        TEXT NOT NULL,
		comments    TEXT NOT NULL DEFAULT '',
		review_data TEXT NOT NULL DEFAULT '',
		voted_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(change_id, reviewer_id) ON CONFLICT REPLACE
	);
	CREATE INDEX IF NOT EXISTS idx_review_votes_change ON review_votes(change_id);

	CREATE TABLE IF NOT EXISTS change_comments (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		change_id   INTEGER NOT NULL,
		user_id     TEXT NOT NULL DEFAULT '',
		comment     TEXT NOT NULL,
		is_internal INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_change_comments_change ON change_comments(change_id);

	CREATE TABLE IF NOT EXISTS scoring_configs (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		kind                 TEXT NOT NULL,
		factor               TEXT NOT NULL,
		value_for_100_points REAL NOT NULL DEFAULT 0,
		value_unit           TEXT NOT NULL DEFAULT '',
		time_decay_per_month REAL NOT NULL DEFAULT 0,
		scale                INTEGER NOT NULL DEFAULT 10,
		inverse              INTEGER NOT NULL DEFAULT 0,
		active               INTEGER NOT NULL DEFAULT 1,
		version              INTEGER NOT NULL DEFAULT 1,
		created_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(kind, factor, version)
	);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.seedScoringConfigs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// seedScoringConfigs installs the built-in configuration on first run so the
// active set is always queryable. Later versions are managed externally.
func (s *Store) seedScoringConfigs() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM scoring_configs`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	benefitStmt, err := tx.Prepare(
		`INSERT INTO scoring_configs (kind, factor, value_for_100_points, value_unit, time_decay_per_month)
		 VALUES ('benefit', ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer benefitStmt.Close()
	for factor, cfg := range DefaultBenefitConfigs() {
		if _, err := benefitStmt.Exec(factor, cfg.ValueFor100Points, cfg.ValueUnit, cfg.TimeDecayPerMonth); err != nil {
			return err
		}
	}

	effortStmt, err := tx.Prepare(
		`INSERT INTO scoring_configs (kind, factor, scale, inverse) VALUES ('effort', ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer effortStmt.Close()
	for factor, cfg := range DefaultEffortConfigs() {
		if _, err := effortStmt.Exec(factor, cfg.Scale, boolToInt(cfg.Inverse)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ActiveBenefitConfigs reads the currently-active benefit configuration,
// falling back to the built-in defaults if the table has been emptied.
func (s *Store) ActiveBenefitConfigs() (map[string]BenefitConfig, error) {
	rows, err := s.db.Query(
		`SELECT factor, value_for_100_points, value_unit, time_decay_per_month
		 FROM scoring_configs WHERE kind = 'benefit' AND active = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make(map[string]BenefitConfig)
	for rows.Next() {
		var factor string
		var cfg BenefitConfig
		if err := rows.Scan(&factor, &cfg.ValueFor100Points, &cfg.ValueUnit, &cfg.TimeDecayPerMonth); err != nil {
			return nil, err
		}
		configs[factor] = cfg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return DefaultBenefitConfigs(), nil
	}
	return configs, nil
}

func (s *Store) ActiveEffortConfigs() (map[string]EffortConfig, error) {
	rows, err := s.db.Query(
		`SELECT factor, scale, inverse FROM scoring_configs WHERE kind = 'effort' AND active = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make(map[string]EffortConfig)
	for rows.Next() {
		var factor string
		var scale, inverse int
		if err := rows.Scan(&factor, &scale, &inverse); err != nil {
			return nil, err
		}
		configs[factor] = EffortConfig{Scale: scale, Inverse: inverse != 0}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return DefaultEffortConfigs(), nil
	}
	return configs, nil
}

const changeColumns = `id, title, requester, requester_id, status, priority,
	wizard_input, original_wizard_input, scheduling_data,
	benefit_score, benefit_factors, benefit_calculated_at,
	effort_score, effort_factors, effort_calculated_at,
	risk_score, risk_level, risk_factors, risk_calculated_at,
	created_at, updated_at`

func (s *Store) InsertChangeRequest(cr *ChangeRequest) (int64, error) {
	inputJSON, err := json.Marshal(cr.WizardInput)
	if err != nil {
		return 0, err
	}
	originalJSON, err := json.Marshal(cr.OriginalInput)
	if err != nil {
		return 0, err
	}
	status := cr.Status
	if status == "" {
		status = StatusSubmitted
	}
	res, err := s.db.Exec(
		`INSERT INTO change_requests (title, requester, requester_id, status, priority, wizard_input, original_wizard_input)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cr.Title, cr.Requester, cr.RequesterID, string(status), cr.Priority, string(inputJSON), string(originalJSON),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) FindChangeByID(id int64) (*ChangeRequest, error) {
	row := s.db.QueryRow(`SELECT `+changeColumns+` FROM change_requests WHERE id = ?`, id)
	cr, err := scanChange(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("change %d: %w", id, ErrNotFound)
	}
	return cr, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChange(row rowScanner) (*ChangeRequest, error) {
	var cr ChangeRequest
	var status, inputJSON, originalJSON, schedJSON string
	var benefitScore, effortScore, riskScore sql.NullFloat64
	var benefitFactors, effortFactors, riskFactors, riskLevel string
	var benefitAt, effortAt, riskAt sql.NullTime

	err := row.Scan(
		&cr.ID, &cr.Title, &cr.Requester, &cr.RequesterID, &status, &cr.Priority,
		&inputJSON, &originalJSON, &schedJSON,
		&benefitScore, &benefitFactors, &benefitAt,
		&effortScore, &effortFactors, &effortAt,
		&riskScore, &riskLevel, &riskFactors, &riskAt,
		&cr.CreatedAt, &cr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cr.Status = Status(status)
	if err := json.Unmarshal([]byte(inputJSON), &cr.WizardInput); err != nil {
		return nil, fmt.Errorf("change %d: corrupt wizard input: %w", cr.ID, err)
	}
	if err := json.Unmarshal([]byte(originalJSON), &cr.OriginalInput); err != nil {
		return nil, fmt.Errorf("change %d: corrupt original input: %w", cr.ID, err)
	}
	if schedJSON != "" {
		var sched SchedulingData
		if err := json.Unmarshal([]byte(schedJSON), &sched); err != nil {
			return nil, fmt.Errorf("change %d: corrupt scheduling data: %w", cr.ID, err)
		}
		cr.Scheduling = &sched
	}

	cr.Benefit = scanSnapshot(benefitScore, "", benefitFactors, benefitAt)
	cr.Effort = scanSnapshot(effortScore, "", effortFactors, effortAt)
	cr.Risk = scanSnapshot(riskScore, riskLevel, riskFactors, riskAt)
	return &cr, nil
}

func scanSnapshot(score sql.NullFloat64, level, factorsJSON string, at sql.NullTime) *ScoreSnapshot {
	if !score.Valid {
		return nil
	}
	snap := &ScoreSnapshot{Score: score.Float64, Level: level}
	if at.Valid {
		snap.CalculatedAt = at.Time
	}
	if factorsJSON != "" {
		// A corrupt factor blob loses the breakdown, never the score.
		_ = json.Unmarshal([]byte(factorsJSON), &snap.Factors)
	}
	return snap
}

// SaveChangeRequest applies a partial update; nil fields stay untouched.
func (s *Store) SaveChangeRequest(id int64, upd ChangeUpdate) (*ChangeRequest, error) {
	sets, args, err := updateClauses(upd)
	if err != nil {
		return nil, err
	}
	args = append(args, id)
	res, err := s.db.Exec(
		`UPDATE change_requests SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("change %d: %w", id, ErrNotFound)
	}
	return s.FindChangeByID(id)
}

func updateClauses(upd ChangeUpdate) ([]string, []any, error) {
	var sets []string
	var args []any

	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *upd.Priority)
	}
	if upd.WizardInput != nil {
		b, err := json.Marshal(upd.WizardInput)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, "wizard_input = ?")
		args = append(args, string(b))
	}
	if upd.Scheduling != nil {
		b, err := json.Marshal(upd.Scheduling)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, "scheduling_data = ?")
		args = append(args, string(b))
	}
	if upd.Benefit != nil {
		b, err := json.Marshal(upd.Benefit.Factors)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, "benefit_score = ?", "benefit_factors = ?", "benefit_calculated_at = ?")
		args = append(args, upd.Benefit.Score, string(b), upd.Benefit.CalculatedAt)
	}
	if upd.Effort != nil {
		b, err := json.Marshal(upd.Effort.Factors)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, "effort_score = ?", "effort_factors = ?", "effort_calculated_at = ?")
		args = append(args, upd.Effort.Score, string(b), upd.Effort.CalculatedAt)
	}
	if upd.Risk != nil {
		b, err := json.Marshal(upd.Risk.Factors)
		if err != nil {
			return nil, nil, err
		}
		sets = append(sets, "risk_score = ?", "risk_level = ?", "risk_factors = ?", "risk_calculated_at = ?")
		args = append(args, upd.Risk.Score, upd.Risk.Level, string(b), upd.Risk.CalculatedAt)
	}

	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	return sets, args, nil
}

func (s *Store) AppendReviewVote(changeID int64, reviewerID, vote, comments, reviewData string) error {
	_, err := s.db.Exec(
		`INSERT INTO review_votes (change_id, reviewer_id, vote, comments, review_data)
		 VALUES (?, ?, ?, ?, ?)`,
		changeID, reviewerID, vote, comments, reviewData,
	)
	return err
}

func (s *Store) AppendComment(changeID int64, userID, text string, internal bool) error {
	_, err := s.db.Exec(
		`INSERT INTO change_comments (change_id, user_id, comment, is_internal)
		 VALUES (?, ?, ?, ?)`,
		changeID, userID, text, boolToInt(internal),
	)
	return err
}

// ApplyCabDecision persists one CAB decision atomically: the vote upsert
// (last vote from a reviewer wins via the unique index), the change-row
// update and the optional comment either all land or none do.
func (s *Store) ApplyCabDecision(changeID int64, d CabDecision) (*ChangeRequest, error) {
	upd := ChangeUpdate{
		Status:      &d.NewStatus,
		WizardInput: d.MergedInput,
		Benefit:     d.Benefit,
		Effort:      d.Effort,
		Risk:        d.Risk,
	}
	if d.Priority != "" {
		upd.Priority = &d.Priority
	}
	sets, args, err := updateClauses(upd)
	if err != nil {
		return nil, err
	}
	args = append(args, changeID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO review_votes (change_id, reviewer_id, vote, comments, review_data)
		 VALUES (?, ?, ?, ?, ?)`,
		changeID, d.ReviewerID, d.Vote, d.Comments, d.ReviewData,
	); err != nil {
		return nil, err
	}

	res, err := tx.Exec(`UPDATE change_requests SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("change %d: %w", changeID, ErrNotFound)
	}

	if d.Comments != "" {
		if _, err := tx.Exec(
			`INSERT INTO change_comments (change_id, user_id, comment, is_internal)
			 VALUES (?, ?, ?, 0)`,
			changeID, d.ReviewerID, d.Comments,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.FindChangeByID(changeID)
}

func (s *Store) ListChangesByStatus(statuses ...Status) ([]ChangeRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(statuses)-1) + "?"
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}
	rows, err := s.db.Query(
		`SELECT `+changeColumns+` FROM change_requests
		 WHERE status IN (`+placeholders+`) ORDER BY created_at, id`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChangeRequest
	for rows.Next() {
		cr, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

// ListStaleReviews returns review-eligible requests untouched since the
// cutoff, oldest first, for the reviewer reminder job.
func (s *Store) ListStaleReviews(olderThan time.Time) ([]ChangeRequest, error) {
	rows, err := s.db.Query(
		`SELECT `+changeColumns+` FROM change_requests
		 WHERE status IN ('submitted', 'under_review') AND updated_at < ?
		 ORDER BY updated_at, id`,
		olderThan,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChangeRequest
	for rows.Next() {
		cr, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cr)
	}
	return out, rows.Err()
}

// ReviewVote is one recorded CAB vote, at most one per reviewer per change.
type ReviewVote struct {
	ID         int64
	ChangeID   int64
	ReviewerID string
	Vote       string
	Comments   string
	ReviewData string
	VotedAt    time.Time
}

func (s *Store) ListReviewVotes(changeID int64) ([]ReviewVote, error) {
	rows, err := s.db.Query(
		`SELECT id, change_id, reviewer_id, vote, comments, review_data, voted_at
		 FROM review_votes WHERE change_id = ? ORDER BY voted_at, id`,
		changeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewVote
	for rows.Next() {
		var v ReviewVote
		if err := rows.Scan(&v.ID, &v.ChangeID, &v.ReviewerID, &v.Vote, &v.Comments, &v.ReviewData, &v.VotedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
