package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestColumns = `id, requester_id, description, created`

func (r *Queries) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO requests (requester_id, description, created) VALUES (?, ?, ?)`,
		req.RequesterID, req.Description, dbTime(req.Created))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	return nil
}

func (r *Queries) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	req := &models.ItemRequest{}
	err := r.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id).
		Scan(&req.ID, &req.RequesterID, &req.Description, &req.Created)
	if err != nil {
		return nil, notFound("request", id, err)
	}
	return req, nil
}

func (r *Queries) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	return r.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE requester_id = ? ORDER BY created DESC, id DESC`,
		requesterID)
}

// ListRequestsExcluding pages through everybody else's requests, newest first.
func (r *Queries) ListRequestsExcluding(ctx context.Context, userID int64, limit, offset int) ([]*models.ItemRequest, error) {
	return r.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE requester_id <> ?
         ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (r *Queries) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.ItemRequest
	for rows.Next() {
		req := &models.ItemRequest{}
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.Description, &req.Created); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
