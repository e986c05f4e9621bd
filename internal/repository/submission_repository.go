package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/safehaven/peer-support-core/internal/model"
)

// SubmissionRepo persists submissions together with their classification
// results. The two are written in a single transaction so no entry is ever
// queryable — by a counselor or the public feed — without its classification.
type SubmissionRepo struct{ DB *sql.DB }

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{DB: db} }

// QueueItem is a held or under-review submission joined with its
// classification, as served to counselors.
type QueueItem struct {
	ID             string            `json:"id"`
	AuthorID       uint64            `json:"author_id"`
	SchoolID       uint64            `json:"school_id"`
	Text           string            `json:"text"`
	State          model.ReviewState `json:"state"`
	TimeSensitive  bool              `json:"time_sensitive"`
	SafetyLevel    model.SafetyLevel `json:"safety_level"`
	Score          int               `json:"score"`
	MatchedSignals []string          `json:"matched_signals"`
	Urgency        model.Urgency     `json:"urgency"`
	CreatedAt      time.Time         `json:"created_at"`
}

// FeedEntry is a published submission as shown on the anonymous public feed.
// The author is deliberately absent.
type FeedEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateWithClassification inserts the submission and its classification
// atomically. MatchedSignals are stored as a JSON array to preserve their
// order.
func (r *SubmissionRepo) CreateWithClassification(ctx context.Context, sub model.Submission, cls model.ClassificationResult) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO submissions (id, author_id, school_id, text, state, time_sensitive) VALUES (?,?,?,?,?,?)",
		sub.ID, sub.AuthorID, sub.SchoolID, sub.Text, sub.State, sub.TimeSensitive); err != nil {
		return err
	}

	signals, err := json.Marshal(cls.MatchedSignals)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO classifications (submission_id, safety_level, score, matched_signals, urgency, requires_intervention, hide_from_public) VALUES (?,?,?,?,?,?,?)",
		sub.ID, cls.Level.String(), cls.Score, signals, cls.Urgency.String(), cls.RequiresIntervention, cls.HideFromPublic); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID loads a submission row.
func (r *SubmissionRepo) GetByID(ctx context.Context, id string) (model.Submission, error) {
	var (
		s           model.Submission
		disposition sql.NullString
		resolvedBy  sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, author_id, school_id, text, state, time_sensitive, disposition, resolved_by, created_at, updated_at FROM submissions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.AuthorID, &s.SchoolID, &s.Text, &s.State, &s.TimeSensitive, &disposition, &resolvedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Submission{}, ErrNotFound
		}
		return model.Submission{}, err
	}
	if disposition.Valid {
		d := disposition.String
		s.Disposition = &d
	}
	if resolvedBy.Valid {
		rb := uint64(resolvedBy.Int64)
		s.ResolvedBy = &rb
	}
	return s, nil
}

// ListQueue returns held and under-review submissions for one school,
// time-sensitive entries first, oldest first within each group.
func (r *SubmissionRepo) ListQueue(ctx context.Context, schoolID uint64) ([]QueueItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.author_id, s.school_id, s.text, s.state, s.time_sensitive,
		       c.safety_level, c.score, c.matched_signals, c.urgency, s.created_at
		FROM submissions s
		JOIN classifications c ON c.submission_id = s.id
		WHERE s.school_id = ? AND s.state IN ('HELD','UNDER_REVIEW')
		ORDER BY s.time_sensitive DESC, s.created_at ASC`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]QueueItem, 0, 16)
	for rows.Next() {
		var (
			it      QueueItem
			level   string
			urgency string
			signals []byte
		)
		if err := rows.Scan(&it.ID, &it.AuthorID, &it.SchoolID, &it.Text, &it.State, &it.TimeSensitive,
			&level, &it.Score, &signals, &urgency, &it.CreatedAt); err != nil {
			return nil, err
		}
		lv, err := model.ParseSafetyLevel(level)
		if err != nil {
			return nil, err
		}
		it.SafetyLevel = lv
		it.Urgency = urgencyFromString(urgency)
		if len(signals) > 0 {
			if err := json.Unmarshal(signals, &it.MatchedSignals); err != nil {
				return nil, err
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListPublished returns the most recent published entries for a school's
// public feed.
func (r *SubmissionRepo) ListPublished(ctx context.Context, schoolID uint64, limit int) ([]FeedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, text, created_at FROM submissions WHERE school_id=? AND state='PUBLISHED' ORDER BY created_at DESC LIMIT ?",
		schoolID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]FeedEntry, 0, limit)
	for rows.Next() {
		var e FeedEntry
		if err := rows.Scan(&e.ID, &e.Text, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Open transitions a held submission to UNDER_REVIEW. Any other current
// state yields ErrInvalidState; a missing row yields ErrNotFound.
func (r *SubmissionRepo) Open(ctx context.Context, id string) error {
	return r.transition(ctx,
		"UPDATE submissions SET state='UNDER_REVIEW' WHERE id=? AND state='HELD'", id)
}

// Resolve closes an under-review submission permanently. RESOLVED is
// terminal: re-resolving, or resolving from any state other than
// UNDER_REVIEW, is rejected with ErrInvalidState.
func (r *SubmissionRepo) Resolve(ctx context.Context, id string, counselorID uint64, disposition string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE submissions SET state='RESOLVED', disposition=?, resolved_by=? WHERE id=? AND state='UNDER_REVIEW'",
		disposition, counselorID, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// ExpireStale moves held submissions older than the cutoff to EXPIRED and
// returns how many rows changed.
func (r *SubmissionRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE submissions SET state='EXPIRED' WHERE state='HELD' AND created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SubmissionRepo) transition(ctx context.Context, query, id string) error {
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, res, id)
}

// checkAffected distinguishes "row missing" from "row in the wrong state"
// after a guarded UPDATE matched nothing.
func (r *SubmissionRepo) checkAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var state string
	err = r.DB.QueryRowContext(ctx, "SELECT state FROM submissions WHERE id=? LIMIT 1", id).Scan(&state)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInvalidState
}

func urgencyFromString(s string) model.Urgency {
	switch s {
	case "critical":
		return model.UrgencyCritical
	case "high":
		return model.UrgencyHigh
	case "medium":
		return model.UrgencyMedium
	}
	return model.UrgencyLow
}
