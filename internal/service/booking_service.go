package service

import (
	"context"
	"errors"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService drives the booking lifecycle: WAITING on creation, then
// APPROVED or REJECTED by the item owner.
type BookingService struct {
	store     domain.Store
	publisher domain.EventPublisher
	clock     Clock
	policy    config.BookingConfig
	logger    *zerolog.Logger
}

func NewBookingService(
	store domain.Store,
	publisher domain.EventPublisher,
	clock Clock,
	policy config.BookingConfig,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock
	}
	return &BookingService{
		store:     store,
		publisher: publisher,
		clock:     clock,
		policy:    policy,
		logger:    logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, in models.BookingInput) (*models.BookingView, error) {
	if in.ItemID == nil {
		return nil, invalidArgument("itemId must be set")
	}
	if in.Start == nil || in.End == nil || in.Start.IsZero() || in.End.IsZero() {
		return nil, invalidArgument("start and end must be set")
	}
	itemID := *in.ItemID
	start, end := in.Start.UTC(), in.End.UTC()

	var booking *models.Booking
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, bookerID); err != nil {
			return lookup(err, "user", bookerID)
		}
		item, err := repo.GetItem(ctx, itemID)
		if err != nil {
			return lookup(err, "item", itemID)
		}

		if !start.Before(end) {
			return ErrInvalidInterval
		}
		if s.policy.RequireFutureStart && start.Before(s.clock()) {
			return ErrStartInPast
		}
		if !item.Available {
			return ErrItemUnavailable
		}
		if s.policy.RejectOverlaps {
			overlaps, err := repo.HasOverlappingBooking(ctx, itemID, start, end)
			if err != nil {
				return err
			}
			if overlaps {
				return ErrOverlap
			}
		}

		b := &models.Booking{
			ItemID:   itemID,
			BookerID: bookerID,
			Start:    start,
			End:      end,
			Status:   models.StatusWaiting,
		}
		if err := repo.CreateBooking(ctx, b); err != nil {
			return err
		}
		booking, err = repo.GetBooking(ctx, b.ID)
		return err
	})
	if err != nil {
		if KindOf(err) == KindInvalidArgument {
			s.logger.Warn().Err(err).Int64("item_id", itemID).Int64("user_id", bookerID).Msg("Booking rejected")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", itemID).
		Int64("booker_id", bookerID).
		Time("start", booking.Start).
		Time("end", booking.End).
		Msg("Booking created")
	publish(s.publisher, s.logger, events.EventBookingCreated, bookingPayload(booking, bookerID))

	view := models.ToBookingView(booking)
	return &view, nil
}

// ApproveBooking records the owner's decision. A booking that was already
// decided can be decided again unless the redecision policy is off.
func (s *BookingService) ApproveBooking(ctx context.Context, callerID, bookingID int64, approved bool) (*models.BookingView, error) {
	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}

	var booking *models.Booking
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return lookup(err, "booking", bookingID)
		}
		if b.OwnerID != callerID {
			return ErrNotItemOwner
		}
		if !s.policy.Redecision() && b.Status != models.StatusWaiting {
			return ErrAlreadyDecided
		}

		if err := repo.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, status); err != nil {
			if errors.Is(err, database.ErrConcurrentModification) {
				return ErrConcurrentUpdate
			}
			return err
		}
		booking, err = repo.GetBooking(ctx, b.ID)
		return err
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			s.logger.Warn().Err(err).Int64("booking_id", bookingID).Int64("user_id", callerID).Msg("Booking decision rejected")
		}
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("owner_id", callerID).
		Str("status", string(booking.Status)).
		Msg("Booking decided")
	publish(s.publisher, s.logger, eventType, bookingPayload(booking, callerID))

	view := models.ToBookingView(booking)
	return &view, nil
}

// GetBooking is visible to the booker and the item owner only.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingView, error) {
	var booking *models.Booking
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		b, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return lookup(err, "booking", bookingID)
		}
		if b.BookerID != callerID && b.OwnerID != callerID {
			return ErrBookingAccess
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := models.ToBookingView(booking)
	return &view, nil
}

func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state string) ([]models.BookingView, error) {
	bookings, err := s.list(ctx, bookerID, state, func(f *models.BookingFilter) { f.BookerID = bookerID })
	if err != nil {
		return nil, err
	}
	return models.ToBookingViews(bookings), nil
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state string) ([]models.BookingView, error) {
	bookings, err := s.list(ctx, ownerID, state, func(f *models.BookingFilter) { f.OwnerID = ownerID })
	if err != nil {
		return nil, err
	}
	return models.ToBookingViews(bookings), nil
}

// OwnerBookings is ListByOwner without the view mapping, for exports.
func (s *BookingService) OwnerBookings(ctx context.Context, ownerID int64, state string) ([]*models.Booking, error) {
	return s.list(ctx, ownerID, state, func(f *models.BookingFilter) { f.OwnerID = ownerID })
}

func (s *BookingService) list(ctx context.Context, userID int64, rawState string, scope func(*models.BookingFilter)) ([]*models.Booking, error) {
	state, err := models.ParseBookingState(rawState)
	if err != nil {
		return nil, unknownState(rawState)
	}

	filter := models.BookingFilter{State: state, Now: s.clock()}
	scope(&filter)

	var bookings []*models.Booking
	err = s.store.WithTx(ctx, func(repo domain.Repository) error {
		if _, err := repo.GetUser(ctx, userID); err != nil {
			return lookup(err, "user", userID)
		}
		bookings, err = repo.ListBookings(ctx, filter)
		return err
	})
	return bookings, err
}

func bookingPayload(b *models.Booking, changedBy int64) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:   b.ID,
		ItemID:      b.ItemID,
		OwnerID:     b.OwnerID,
		BookerID:    b.BookerID,
		Status:      string(b.Status),
		Start:       b.Start,
		End:         b.End,
		ChangedByID: changedBy,
	}
}
