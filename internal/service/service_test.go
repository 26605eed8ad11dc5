package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type testEnv struct {
	db        *database.DB
	publisher *mockPublisher
	now       time.Time

	users    *UserService
	items    *ItemService
	requests *RequestService
	bookings *BookingService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPolicy(t, config.BookingConfig{})
}

func newTestEnvWithPolicy(t *testing.T, policy config.BookingConfig) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &mockPublisher{}
	pub.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Maybe()

	env := &testEnv{db: db, publisher: pub, now: baseTime}
	clock := func() time.Time { return env.now }

	env.users = NewUserService(db, &logger)
	env.items = NewItemService(db, pub, clock, &logger)
	env.requests = NewRequestService(db, pub, clock, &logger)
	env.bookings = NewBookingService(db, pub, clock, policy, &logger)
	return env
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func idPtr(id int64) *int64   { return &id }

func ts(t time.Time) *models.Timestamp {
	v := models.NewTimestamp(t)
	return &v
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), models.UserInput{
		Name:  strPtr(name),
		Email: strPtr(name + "@example.com"),
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) item(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	it, err := e.items.AddItem(context.Background(), ownerID, models.ItemInput{
		Name:        strPtr(name),
		Description: strPtr(name + " for rent"),
		Available:   boolPtr(available),
	})
	require.NoError(t, err)
	return it
}

func (e *testEnv) booking(t *testing.T, bookerID, itemID int64, start, end time.Time) *models.BookingView {
	t.Helper()
	b, err := e.bookings.CreateBooking(context.Background(), bookerID, models.BookingInput{
		ItemID: idPtr(itemID),
		Start:  ts(start),
		End:    ts(end),
	})
	require.NoError(t, err)
	return b
}

func (e *testEnv) approved(t *testing.T, ownerID, bookerID, itemID int64, start, end time.Time) *models.BookingView {
	t.Helper()
	b := e.booking(t, bookerID, itemID, start, end)
	v, err := e.bookings.ApproveBooking(context.Background(), ownerID, b.ID, true)
	require.NoError(t, err)
	return v
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}
