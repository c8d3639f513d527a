package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
)

const userColumns = `id, name, email, password_hash, role, department, job_title, telegram, created, updated`

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}

	id, err := newID()
	if err != nil {
		return fmt.Errorf("mint user id: %w", err)
	}
	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err = r.conn.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.Department), nullString(u.JobTitle), nullString(u.Telegram), toMillis(now), toMillis(now))
	if err != nil {
		return fmt.Errorf("insert user: %w", mapErr(err))
	}

	u.ID = id
	u.CreatedAt = fromMillis(toMillis(now))
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (r *SQLiteRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u                     models.User
		role                  string
		dept, title, telegram sql.NullString
		created, updated      int64
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &dept, &title, &telegram, &created, &updated); err != nil {
		return nil, mapErr(err)
	}

	u.Role = models.Role(role)
	u.Department = stringPtr(dept)
	u.JobTitle = stringPtr(title)
	u.Telegram = stringPtr(telegram)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}
