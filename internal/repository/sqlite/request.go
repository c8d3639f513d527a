package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

const requestColumns = `id, user_id, topic, description, status, created, updated`

func (r *SQLiteRepo) CreateRequest(ctx context.Context, tr *models.TrainingRequest) error {
	if tr == nil {
		return fmt.Errorf("request is nil")
	}

	id, err := newID()
	if err != nil {
		return fmt.Errorf("mint request id: %w", err)
	}
	now := time.Now().UTC()
	if tr.Status == "" {
		tr.Status = models.RequestPending
	}

	_, err = r.conn.Exec(ctx, `INSERT INTO training_requests (`+requestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, tr.UserID, tr.Topic, tr.Description, string(tr.Status), toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("insert request: %w", mapErr(err))
	}

	tr.ID = id
	tr.CreatedAt = fromMillis(toMillis(now))
	tr.UpdatedAt = tr.CreatedAt
	return nil
}

func (r *SQLiteRepo) GetRequest(ctx context.Context, id string) (*models.TrainingRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+requestColumns+` FROM training_requests WHERE id = ?`, id)
	return scanRequest(row)
}

func (r *SQLiteRepo) ListRequestsByUser(ctx context.Context, userID string) ([]models.TrainingRequest, error) {
	return r.listRequests(ctx, `SELECT `+requestColumns+` FROM training_requests WHERE user_id = ? ORDER BY created DESC, id DESC`, userID)
}

func (r *SQLiteRepo) ListRequests(ctx context.Context, status models.RequestStatus) ([]models.TrainingRequest, error) {
	if status == "" {
		return r.listRequests(ctx, `SELECT `+requestColumns+` FROM training_requests ORDER BY created DESC, id DESC`)
	}
	return r.listRequests(ctx, `SELECT `+requestColumns+` FROM training_requests WHERE status = ? ORDER BY created DESC, id DESC`, string(status))
}

func (r *SQLiteRepo) listRequests(ctx context.Context, q string, args ...any) ([]models.TrainingRequest, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", mapErr(err))
	}
	defer rows.Close()

	out := []models.TrainingRequest{}
	for rows.Next() {
		tr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tr)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) RejectRequest(ctx context.Context, id string, at time.Time) (*models.TrainingRequest, error) {
	res, err := r.conn.Exec(ctx, `UPDATE training_requests SET status = ?, updated = ? WHERE id = ? AND status = ?`,
		string(models.RequestRejected), toMillis(at), id, string(models.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", mapErr(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := r.GetRequest(ctx, id); err != nil {
			return nil, err
		}
		return nil, repository.ErrStale
	}

	return r.GetRequest(ctx, id)
}

func scanRequest(s scanner) (*models.TrainingRequest, error) {
	var (
		tr               models.TrainingRequest
		status           string
		created, updated int64
	)
	if err := s.Scan(&tr.ID, &tr.UserID, &tr.Topic, &tr.Description, &status, &created, &updated); err != nil {
		return nil, mapErr(err)
	}

	tr.Status = models.RequestStatus(status)
	tr.CreatedAt = fromMillis(created)
	tr.UpdatedAt = fromMillis(updated)
	return &tr, nil
}
