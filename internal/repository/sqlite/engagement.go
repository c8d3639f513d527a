package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Assign approves the request, takes mentor capacity and creates the learning
// process in one transaction. Both updates are conditional on the state the
// caller observed, so of two racing assignments at most one commits.
func (r *SQLiteRepo) Assign(ctx context.Context, a repository.Assignment) (*models.LearningProcess, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("mint learning id: %w", err)
	}
	at := toMillis(a.At)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin assign: %w", mapErr(err))
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE training_requests SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		string(models.RequestApproved), at, a.RequestID, string(models.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("approve request: %w", mapErr(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("request %s: %w", a.RequestID, repository.ErrStale)
	}

	res, err = tx.ExecContext(ctx, `UPDATE mentors SET workload = workload + 1, updated = ? WHERE id = ? AND workload < ?`,
		at, a.MentorID, a.MaxWorkload)
	if err != nil {
		return nil, fmt.Errorf("take mentor capacity: %w", mapErr(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("mentor %s: %w", a.MentorID, repository.ErrStale)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO learning_processes (id, request_id, user_id, mentor_id, topic, status, start_date, plan, version, updated)
		SELECT ?, id, user_id, ?, topic, ?, ?, '[]', 1, ? FROM training_requests WHERE id = ?`,
		id, a.MentorID, string(models.LearningActive), at, at, a.RequestID)
	if err != nil {
		err = mapErr(err)
		if errors.Is(err, repository.ErrConstraint) {
			return nil, fmt.Errorf("learning for request %s: %w", a.RequestID, repository.ErrStale)
		}
		return nil, fmt.Errorf("create learning: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit assign: %w", mapErr(err))
	}

	r.logger.Debug("assignment committed", "request_id", a.RequestID, "mentor_id", a.MentorID, "learning_id", id)
	return r.GetLearning(ctx, id)
}

// Complete closes an active learning process and releases the mentor's
// capacity in one transaction.
func (r *SQLiteRepo) Complete(ctx context.Context, id string, fb models.Feedback, at time.Time) (*models.LearningProcess, error) {
	fbJSON, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	ms := toMillis(at)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin complete: %w", mapErr(err))
	}
	defer func() { _ = tx.Rollback() }()

	var mentorID string
	if err := tx.QueryRowContext(ctx, `SELECT mentor_id FROM learning_processes WHERE id = ?`, id).Scan(&mentorID); err != nil {
		return nil, mapErr(err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE learning_processes SET status = ?, end_date = ?, feedback = ?, version = version + 1, updated = ? WHERE id = ? AND status = ?`,
		string(models.LearningCompleted), ms, string(fbJSON), ms, id, string(models.LearningActive))
	if err != nil {
		return nil, fmt.Errorf("complete learning: %w", mapErr(err))
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("learning %s: %w", id, repository.ErrStale)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE mentors SET workload = MAX(workload - 1, 0), updated = ? WHERE id = ?`, ms, mentorID); err != nil {
		return nil, fmt.Errorf("release mentor capacity: %w", mapErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit complete: %w", mapErr(err))
	}

	r.logger.Debug("completion committed", "learning_id", id, "mentor_id", mentorID)
	return r.GetLearning(ctx, id)
}
