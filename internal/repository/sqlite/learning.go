package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

const learningColumns = `id, request_id, user_id, mentor_id, topic, status, start_date, end_date, plan, notes, feedback, version, updated`

func (r *SQLiteRepo) GetLearning(ctx context.Context, id string) (*models.LearningProcess, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+learningColumns+` FROM learning_processes WHERE id = ?`, id)
	return scanLearning(row)
}

func (r *SQLiteRepo) ListLearningsByUser(ctx context.Context, userID string) ([]models.LearningProcess, error) {
	return r.listLearnings(ctx, `SELECT `+learningColumns+` FROM learning_processes WHERE user_id = ? ORDER BY start_date DESC, id DESC`, userID)
}

func (r *SQLiteRepo) ListLearnings(ctx context.Context, mentorID string) ([]models.LearningProcess, error) {
	if mentorID == "" {
		return r.listLearnings(ctx, `SELECT `+learningColumns+` FROM learning_processes ORDER BY start_date DESC, id DESC`)
	}
	return r.listLearnings(ctx, `SELECT `+learningColumns+` FROM learning_processes WHERE mentor_id = ? ORDER BY start_date DESC, id DESC`, mentorID)
}

func (r *SQLiteRepo) listLearnings(ctx context.Context, q string, args ...any) ([]models.LearningProcess, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list learnings: %w", mapErr(err))
	}
	defer rows.Close()

	out := []models.LearningProcess{}
	for rows.Next() {
		lp, err := scanLearning(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *lp)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePlan(ctx context.Context, id string, plan []models.PlanItem, version int64, at time.Time) (*models.LearningProcess, error) {
	if plan == nil {
		plan = []models.PlanItem{}
	}
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}

	res, err := r.conn.Exec(ctx, `UPDATE learning_processes SET plan = ?, version = version + 1, updated = ? WHERE id = ? AND version = ? AND status = ?`,
		string(planJSON), toMillis(at), id, version, string(models.LearningActive))
	if err != nil {
		return nil, fmt.Errorf("update plan: %w", mapErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.GetLearning(ctx, id); err != nil {
			return nil, err
		}
		return nil, repository.ErrStale
	}

	return r.GetLearning(ctx, id)
}

func (r *SQLiteRepo) UpdateNotes(ctx context.Context, id string, notes string, at time.Time) (*models.LearningProcess, error) {
	res, err := r.conn.Exec(ctx, `UPDATE learning_processes SET notes = ?, version = version + 1, updated = ? WHERE id = ?`, notes, toMillis(at), id)
	if err != nil {
		return nil, fmt.Errorf("update notes: %w", mapErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}

	return r.GetLearning(ctx, id)
}

func scanLearning(s scanner) (*models.LearningProcess, error) {
	var (
		lp                models.LearningProcess
		status            string
		start, updated    int64
		end               sql.NullInt64
		planJSON          string
		notes, feedbackJS sql.NullString
	)
	if err := s.Scan(&lp.ID, &lp.RequestID, &lp.UserID, &lp.MentorID, &lp.Topic, &status, &start, &end, &planJSON, &notes, &feedbackJS, &lp.Version, &updated); err != nil {
		return nil, mapErr(err)
	}

	lp.Status = models.LearningStatus(status)
	lp.StartDate = fromMillis(start)
	lp.UpdatedAt = fromMillis(updated)
	if end.Valid {
		t := fromMillis(end.Int64)
		lp.EndDate = &t
	}
	lp.Notes = stringPtr(notes)

	lp.Plan = []models.PlanItem{}
	if err := json.Unmarshal([]byte(planJSON), &lp.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan of %s: %w", lp.ID, err)
	}
	if feedbackJS.Valid {
		var fb models.Feedback
		if err := json.Unmarshal([]byte(feedbackJS.String), &fb); err != nil {
			return nil, fmt.Errorf("unmarshal feedback of %s: %w", lp.ID, err)
		}
		lp.Feedback = &fb
	}

	return &lp, nil
}
