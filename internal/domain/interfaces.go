package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

// Repository is the entity store. Implementations return database.ErrNotFound
// for missing rows and database.ErrDuplicateEmail for unique email violations.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	EmailTaken(ctx context.Context, email string, exceptUserID int64) (bool, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)

	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	ListRequestsExcluding(ctx context.Context, userID int64, limit, offset int) ([]*models.ItemRequest, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)
	ListApprovedBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
	HasOverlappingBooking(ctx context.Context, itemID int64, start, end time.Time) (bool, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsForItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

// Store runs each public operation as one transaction over the Repository.
type Store interface {
	WithTx(ctx context.Context, fn func(repo Repository) error) error
	PingContext(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
