package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBookingService_CreateBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)

	start := baseTime.Add(24 * time.Hour)
	b := env.booking(t, booker.ID, drill.ID, start, start.Add(2*time.Hour))

	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusWaiting, b.Status)
	assert.Equal(t, drill.ID, b.Item.ID)
	assert.Equal(t, "Drill", b.Item.Name)
	assert.Equal(t, booker.ID, b.Booker.ID)
	assert.True(t, b.Start.Equal(start))
	env.publisher.AssertCalled(t, "PublishJSON", events.EventBookingCreated, mock.Anything)

	got, err := env.bookings.GetBooking(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestBookingService_CreateBooking_Rejections(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)
	broken := env.item(t, owner.ID, "Broken saw", false)
	start := baseTime.Add(time.Hour)

	tests := []struct {
		name   string
		booker int64
		input  models.BookingInput
		kind   Kind
		is     error
	}{
		{"unknown user", 999, models.BookingInput{ItemID: idPtr(drill.ID), Start: ts(start), End: ts(start.Add(time.Hour))}, KindNotFound, nil},
		{"unknown item", booker.ID, models.BookingInput{ItemID: idPtr(999), Start: ts(start), End: ts(start.Add(time.Hour))}, KindNotFound, nil},
		{"start equals end", booker.ID, models.BookingInput{ItemID: idPtr(drill.ID), Start: ts(start), End: ts(start)}, KindInvalidArgument, ErrInvalidInterval},
		{"end before start", booker.ID, models.BookingInput{ItemID: idPtr(drill.ID), Start: ts(start), End: ts(start.Add(-time.Hour))}, KindInvalidArgument, ErrInvalidInterval},
		{"unavailable item", booker.ID, models.BookingInput{ItemID: idPtr(broken.ID), Start: ts(start), End: ts(start.Add(time.Hour))}, KindInvalidArgument, ErrItemUnavailable},
		{"missing item id", booker.ID, models.BookingInput{Start: ts(start), End: ts(start.Add(time.Hour))}, KindInvalidArgument, nil},
		{"missing end", booker.ID, models.BookingInput{ItemID: idPtr(drill.ID), Start: ts(start)}, KindInvalidArgument, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.bookings.CreateBooking(context.Background(), tt.booker, tt.input)
			requireKind(t, err, tt.kind)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}

	list, err := env.bookings.ListByOwner(context.Background(), owner.ID, "ALL")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBookingService_PastStartAllowedByDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)

	b := env.booking(t, booker.ID, drill.ID, baseTime.Add(-48*time.Hour), baseTime.Add(-24*time.Hour))
	assert.Equal(t, models.StatusWaiting, b.Status)
}

func TestBookingService_RequireFutureStart(t *testing.T) {
	env := newTestEnvWithPolicy(t, config.BookingConfig{RequireFutureStart: true})
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)

	_, err := env.bookings.CreateBooking(context.Background(), booker.ID, models.BookingInput{
		ItemID: idPtr(drill.ID),
		Start:  ts(baseTime.Add(-time.Minute)),
		End:    ts(baseTime.Add(time.Hour)),
	})
	requireKind(t, err, KindInvalidArgument)
	assert.ErrorIs(t, err, ErrStartInPast)

	env.booking(t, booker.ID, drill.ID, baseTime.Add(time.Minute), baseTime.Add(time.Hour))
}

func TestBookingService_OverlapsAllowedByDefault(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	drill := env.item(t, owner.ID, "Drill", true)

	start := baseTime.Add(time.Hour)
	first := env.approved(t, owner.ID, alice.ID, drill.ID, start, start.Add(4*time.Hour))
	second := env.booking(t, bob.ID, drill.ID, start.Add(time.Hour), start.Add(2*time.Hour))

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.StatusWaiting, second.Status)
}

func TestBookingService_RejectOverlaps(t *testing.T) {
	env := newTestEnvWithPolicy(t, config.BookingConfig{RejectOverlaps: true})
	owner := env.user(t, "owner")
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	drill := env.item(t, owner.ID, "Drill", true)

	start := baseTime.Add(time.Hour)
	env.booking(t, alice.ID, drill.ID, start, start.Add(4*time.Hour))

	_, err := env.bookings.CreateBooking(context.Background(), bob.ID, models.BookingInput{
		ItemID: idPtr(drill.ID),
		Start:  ts(start.Add(time.Hour)),
		End:    ts(start.Add(2 * time.Hour)),
	})
	requireKind(t, err, KindInvalidArgument)
	assert.ErrorIs(t, err, ErrOverlap)

	// adjacent windows do not overlap
	env.booking(t, bob.ID, drill.ID, start.Add(4*time.Hour), start.Add(5*time.Hour))
}

func TestBookingService_ApproveBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)
	start := baseTime.Add(time.Hour)

	b := env.booking(t, booker.ID, drill.ID, start, start.Add(time.Hour))

	approved, err := env.bookings.ApproveBooking(ctx, owner.ID, b.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	env.publisher.AssertCalled(t, "PublishJSON", events.EventBookingApproved, mock.Anything)

	rejected, err := env.bookings.ApproveBooking(ctx, owner.ID, b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	env.publisher.AssertCalled(t, "PublishJSON", events.EventBookingRejected, mock.Anything)
}

func TestBookingService_ApproveBooking_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	stranger := env.user(t, "stranger")
	drill := env.item(t, owner.ID, "Drill", true)
	start := baseTime.Add(time.Hour)
	b := env.booking(t, booker.ID, drill.ID, start, start.Add(time.Hour))

	_, err := env.bookings.ApproveBooking(ctx, booker.ID, b.ID, true)
	requireKind(t, err, KindForbidden)
	assert.ErrorIs(t, err, ErrNotItemOwner)

	_, err = env.bookings.ApproveBooking(ctx, stranger.ID, b.ID, true)
	requireKind(t, err, KindForbidden)

	_, err = env.bookings.ApproveBooking(ctx, owner.ID, 999, true)
	requireKind(t, err, KindNotFound)

	got, err := env.bookings.GetBooking(ctx, booker.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, got.Status)
}

func TestBookingService_RedecisionDisabled(t *testing.T) {
	env := newTestEnvWithPolicy(t, config.BookingConfig{AllowRedecision: boolPtr(false)})
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)
	start := baseTime.Add(time.Hour)

	b := env.approved(t, owner.ID, booker.ID, drill.ID, start, start.Add(time.Hour))

	_, err := env.bookings.ApproveBooking(ctx, owner.ID, b.ID, false)
	requireKind(t, err, KindInvalidArgument)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

type conflictStore struct {
	*database.DB
}

func (s conflictStore) WithTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	return s.DB.WithTx(ctx, func(repo domain.Repository) error {
		return fn(conflictRepo{repo})
	})
}

// conflictRepo loses every optimistic status update.
type conflictRepo struct {
	domain.Repository
}

func (conflictRepo) UpdateBookingStatusWithVersion(context.Context, int64, int64, models.BookingStatus) error {
	return database.ErrConcurrentModification
}

func TestBookingService_ApproveBooking_ConcurrentUpdate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)
	start := baseTime.Add(time.Hour)
	b := env.booking(t, booker.ID, drill.ID, start, start.Add(time.Hour))

	logger := zerolog.Nop()
	racing := NewBookingService(conflictStore{env.db}, env.publisher, func() time.Time { return baseTime }, config.BookingConfig{}, &logger)

	_, err := racing.ApproveBooking(context.Background(), owner.ID, b.ID, true)
	requireKind(t, err, KindConflict)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestBookingService_GetBookingAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	stranger := env.user(t, "stranger")
	drill := env.item(t, owner.ID, "Drill", true)
	start := baseTime.Add(time.Hour)
	b := env.booking(t, booker.ID, drill.ID, start, start.Add(time.Hour))

	for _, caller := range []int64{owner.ID, booker.ID} {
		got, err := env.bookings.GetBooking(ctx, caller, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := env.bookings.GetBooking(ctx, stranger.ID, b.ID)
	requireKind(t, err, KindForbidden)
	assert.ErrorIs(t, err, ErrBookingAccess)

	_, err = env.bookings.GetBooking(ctx, owner.ID, 999)
	requireKind(t, err, KindNotFound)
	assert.Equal(t, "booking with id=999 not found", err.Error())
}

func bookingIDs(views []models.BookingView) []int64 {
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestBookingService_StateFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	other := env.user(t, "other")
	drill := env.item(t, owner.ID, "Drill", true)
	ladder := env.item(t, owner.ID, "Ladder", true)

	past := env.approved(t, owner.ID, booker.ID, drill.ID, baseTime.Add(-72*time.Hour), baseTime.Add(-48*time.Hour))
	current := env.approved(t, owner.ID, booker.ID, ladder.ID, baseTime.Add(-time.Hour), baseTime.Add(time.Hour))
	future := env.booking(t, booker.ID, drill.ID, baseTime.Add(24*time.Hour), baseTime.Add(48*time.Hour))
	rejected := env.booking(t, booker.ID, ladder.ID, baseTime.Add(72*time.Hour), baseTime.Add(96*time.Hour))
	_, err := env.bookings.ApproveBooking(ctx, owner.ID, rejected.ID, false)
	require.NoError(t, err)

	want := map[string][]int64{
		"ALL":      {rejected.ID, future.ID, current.ID, past.ID},
		"CURRENT":  {current.ID},
		"PAST":     {past.ID},
		"FUTURE":   {rejected.ID, future.ID},
		"WAITING":  {future.ID},
		"REJECTED": {rejected.ID},
	}

	for state, ids := range want {
		t.Run(state, func(t *testing.T) {
			byBooker, err := env.bookings.ListByBooker(ctx, booker.ID, state)
			require.NoError(t, err)
			assert.Equal(t, ids, bookingIDs(byBooker))

			byOwner, err := env.bookings.ListByOwner(ctx, owner.ID, state)
			require.NoError(t, err)
			assert.Equal(t, ids, bookingIDs(byOwner))

			none, err := env.bookings.ListByBooker(ctx, other.ID, state)
			require.NoError(t, err)
			assert.Empty(t, none)

			none, err = env.bookings.ListByOwner(ctx, booker.ID, state)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}

	t.Run("time states partition ALL", func(t *testing.T) {
		seen := make(map[int64]int)
		for _, state := range []string{"CURRENT", "PAST", "FUTURE"} {
			list, err := env.bookings.ListByOwner(ctx, owner.ID, state)
			require.NoError(t, err)
			for _, id := range bookingIDs(list) {
				seen[id]++
			}
		}
		assert.Len(t, seen, len(want["ALL"]))
		for id, n := range seen {
			assert.Equal(t, 1, n, "booking %d matched more than one time state", id)
		}
	})

	t.Run("blank and lower case states", func(t *testing.T) {
		all, err := env.bookings.ListByBooker(ctx, booker.ID, "")
		require.NoError(t, err)
		assert.Equal(t, want["ALL"], bookingIDs(all))

		cur, err := env.bookings.ListByBooker(ctx, booker.ID, "current")
		require.NoError(t, err)
		assert.Equal(t, want["CURRENT"], bookingIDs(cur))
	})
}

func TestBookingService_StateFiltersFollowClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	drill := env.item(t, owner.ID, "Drill", true)

	b := env.approved(t, owner.ID, booker.ID, drill.ID, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))

	list, err := env.bookings.ListByBooker(ctx, booker.ID, "FUTURE")
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, bookingIDs(list))

	env.now = baseTime.Add(90 * time.Minute)
	list, err = env.bookings.ListByBooker(ctx, booker.ID, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, bookingIDs(list))

	env.now = baseTime.Add(3 * time.Hour)
	list, err = env.bookings.ListByBooker(ctx, booker.ID, "PAST")
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, bookingIDs(list))
}

func TestBookingService_ListRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	booker := env.user(t, "booker")

	_, err := env.bookings.ListByBooker(ctx, booker.ID, "BOGUS")
	requireKind(t, err, KindInvalidArgument)
	assert.True(t, errors.Is(err, ErrUnknownState))
	assert.Equal(t, "Unknown state: BOGUS", err.Error())

	_, err = env.bookings.ListByOwner(ctx, booker.ID, "SOMETIMES")
	requireKind(t, err, KindInvalidArgument)

	_, err = env.bookings.ListByBooker(ctx, 999, "ALL")
	requireKind(t, err, KindNotFound)

	_, err = env.bookings.ListByOwner(ctx, 999, "ALL")
	requireKind(t, err, KindNotFound)
}
