package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const userColumns = `id, name, email, created_at, updated_at`

func (r *Queries) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, dbTime(now), dbTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *Queries) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound("user", id, err)
	}
	return u, nil
}

func (r *Queries) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Queries) UpdateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Email, dbTime(now), user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := checkAffected(result, "user", user.ID); err != nil {
		return err
	}
	user.UpdatedAt = now
	return nil
}

func (r *Queries) DeleteUser(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkAffected(result, "user", id)
}

// EmailTaken reports whether another user already holds email.
func (r *Queries) EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error) {
	var taken bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id <> ?)`, email, exceptUserID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return taken, nil
}
