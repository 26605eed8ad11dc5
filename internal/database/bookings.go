package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.item_id, i.name, i.owner_id, b.booker_id, u.name,
                              b.start_time, b.end_time, b.status, b.version, b.created_at, b.updated_at
                       FROM bookings b
                       JOIN items i ON i.id = b.item_id
                       JOIN users u ON u.id = b.booker_id`

func scanBooking(s rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := s.Scan(&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID, &b.BookerID, &b.BookerName,
		&b.Start, &b.End, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !b.Status.Valid() {
		return nil, fmt.Errorf("booking %d has unknown status %q", b.ID, b.Status)
	}
	return b, nil
}

func (r *Queries) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CreateBooking stores b with version 1. Denormalized names are not written.
func (r *Queries) CreateBooking(ctx context.Context, b *models.Booking) error {
	now := time.Now().UTC()
	if b.Status == "" {
		b.Status = models.StatusWaiting
	}
	if !b.Status.Valid() {
		return fmt.Errorf("failed to create booking: unknown status %q", b.Status)
	}
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO bookings (item_id, booker_id, start_time, end_time, status, version, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		b.ItemID, b.BookerID, dbTime(b.Start), dbTime(b.End), b.Status, dbTime(now), dbTime(now))
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	b.Version = 1
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (r *Queries) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(r.q.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, notFound("booking", id, err)
	}
	return b, nil
}

// UpdateBookingStatusWithVersion changes the status only if nobody else did since fromVersion was read.
func (r *Queries) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status models.BookingStatus) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		status, dbTime(time.Now()), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns the bookings of a booker or of an owner's items
// matching filter.State at filter.Now, newest start first.
func (r *Queries) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.BookerID != 0 {
		conds = append(conds, "b.booker_id = ?")
		args = append(args, filter.BookerID)
	}
	if filter.OwnerID != 0 {
		conds = append(conds, "i.owner_id = ?")
		args = append(args, filter.OwnerID)
	}

	now := dbTime(filter.Now)
	switch filter.State {
	case models.StateAll, "":
	case models.StateCurrent:
		conds = append(conds, "b.start_time <= ? AND b.end_time > ?")
		args = append(args, now, now)
	case models.StatePast:
		conds = append(conds, "b.end_time < ?")
		args = append(args, now)
	case models.StateFuture:
		conds = append(conds, "b.start_time > ?")
		args = append(args, now)
	case models.StateWaiting:
		conds = append(conds, "b.status = ?")
		args = append(args, models.StatusWaiting)
	case models.StateRejected:
		conds = append(conds, "b.status = ?")
		args = append(args, models.StatusRejected)
	default:
		return nil, &models.UnknownStateError{Value: string(filter.State)}
	}

	query := bookingSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY b.start_time DESC, b.id DESC"
	return r.queryBookings(ctx, query, args...)
}

func (r *Queries) ListApprovedBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(itemIDs)
	args = append(args, models.StatusApproved)
	return r.queryBookings(ctx,
		bookingSelect+` WHERE b.item_id IN (`+in+`) AND b.status = ? ORDER BY b.start_time`, args...)
}

// HasFinishedApprovedBooking reports whether bookerID used itemID under an approved booking that ended before now.
func (r *Queries) HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings
                       WHERE item_id = ? AND booker_id = ? AND status = ? AND end_time < ?)`,
		itemID, bookerID, models.StatusApproved, dbTime(now)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return ok, nil
}

// HasOverlappingBooking checks live (waiting or approved) bookings against [start, end).
func (r *Queries) HasOverlappingBooking(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings
                       WHERE item_id = ? AND status IN (?, ?) AND start_time < ? AND end_time > ?)`,
		itemID, models.StatusWaiting, models.StatusApproved, dbTime(end), dbTime(start)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return ok, nil
}
