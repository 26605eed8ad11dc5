package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (r *Queries) CreateComment(ctx context.Context, c *models.Comment) error {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO comments (item_id, author_id, text, created) VALUES (?, ?, ?, ?)`,
		c.ItemID, c.AuthorID, c.Text, dbTime(c.Created))
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	return nil
}

func (r *Queries) ListCommentsForItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(itemIDs)
	rows, err := r.q.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created
         FROM comments c JOIN users u ON u.id = c.author_id
         WHERE c.item_id IN (`+in+`)
         ORDER BY c.created, c.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
