package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, request_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var requestID sql.NullInt64
	err := s.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.Available,
		&requestID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		item.RequestID = &id
	}
	return item, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (r *Queries) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Queries) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.OwnerID, item.Name, item.Description, item.Available, nullableID(item.RequestID), dbTime(now), dbTime(now))
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (r *Queries) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(r.q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("item", id, err)
	}
	return item, nil
}

func (r *Queries) UpdateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	result, err := r.q.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, dbTime(now), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if err := checkAffected(result, "item", item.ID); err != nil {
		return err
	}
	item.UpdatedAt = now
	return nil
}

func (r *Queries) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(result, "item", id)
}

func (r *Queries) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`, ownerID)
}

// ListItemsByRequests returns items created in answer to any of the requests, newest id first.
func (r *Queries) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(requestIDs)
	return r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE request_id IN (`+in+`) ORDER BY id DESC`, args...)
}

// SearchAvailableItems matches text as a case-insensitive substring of name or description.
// Both sides are folded with strings.ToLower so non-ASCII letters compare too.
func (r *Queries) SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error) {
	needle := strings.ToLower(text)
	return r.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items
         WHERE available = 1 AND (instr(ulower(name), ?) > 0 OR instr(ulower(description), ?) > 0)
         ORDER BY id`, needle, needle)
}
