package models

import "time"

type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	OwnerID     int64     `json:"owner_id" yaml:"owner_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	RequestID   *int64    `json:"request_id,omitempty" yaml:"request_id"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// ItemRequest is an open ask for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
}

type Comment struct {
	ID         int64     `json:"id"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Created    time.Time `json:"created"`
}
