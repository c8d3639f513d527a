package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
)

const mentorColumns = `id, name, job_title, experience, workload, email, telegram, avatar, created, updated`

func (r *SQLiteRepo) CreateMentor(ctx context.Context, m *models.Mentor) error {
	if m == nil {
		return fmt.Errorf("mentor is nil")
	}

	id, err := newID()
	if err != nil {
		return fmt.Errorf("mint mentor id: %w", err)
	}
	now := time.Now().UTC()

	_, err = r.conn.Exec(ctx, `INSERT INTO mentors (`+mentorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.Name, m.JobTitle, m.Experience, m.Workload, m.Email, nullString(m.Telegram), nullString(m.Avatar), toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("insert mentor: %w", mapErr(err))
	}

	m.ID = id
	m.CreatedAt = fromMillis(toMillis(now))
	m.UpdatedAt = m.CreatedAt
	return nil
}

func (r *SQLiteRepo) GetMentor(ctx context.Context, id string) (*models.Mentor, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+mentorColumns+` FROM mentors WHERE id = ?`, id)
	m, err := scanMentor(row)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteRepo) ListMentors(ctx context.Context, belowWorkload int) ([]models.Mentor, error) {
	q := `SELECT ` + mentorColumns + ` FROM mentors`
	var args []any
	if belowWorkload > 0 {
		q += ` WHERE workload < ?`
		args = append(args, belowWorkload)
	}
	q += ` ORDER BY name, id`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", mapErr(err))
	}
	defer rows.Close()

	out := []models.Mentor{}
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMentor(s scanner) (*models.Mentor, error) {
	var (
		m                models.Mentor
		telegram, avatar sql.NullString
		created, updated int64
	)
	if err := s.Scan(&m.ID, &m.Name, &m.JobTitle, &m.Experience, &m.Workload, &m.Email, &telegram, &avatar, &created, &updated); err != nil {
		return nil, mapErr(err)
	}

	m.Telegram = stringPtr(telegram)
	m.Avatar = stringPtr(avatar)
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(updated)
	return &m, nil
}
