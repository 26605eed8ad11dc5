package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingState(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		for _, raw := range []string{"all", "All", "ALL", " current ", "Past", "future", "waiting", "REJECTED"} {
			state, err := ParseBookingState(raw)
			require.NoError(t, err, raw)
			assert.Contains(t, BookingStates, state)
		}
	})

	t.Run("EmptyMeansAll", func(t *testing.T) {
		state, err := ParseBookingState("")
		require.NoError(t, err)
		assert.Equal(t, StateAll, state)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseBookingState("UNSUPPORTED_STATUS")
		require.Error(t, err)
		var unknown *UnknownStateError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", err.Error())
	})
}

func TestBookingStateMatches(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := &Booking{Start: now.Add(-3 * time.Hour), End: now.Add(-2 * time.Hour), Status: StatusApproved}
	current := &Booking{Start: now.Add(-time.Hour), End: now.Add(time.Hour), Status: StatusWaiting}
	future := &Booking{Start: now.Add(time.Hour), End: now.Add(2 * time.Hour), Status: StatusRejected}
	startsNow := &Booking{Start: now, End: now.Add(time.Hour), Status: StatusApproved}

	assert.True(t, StatePast.Matches(past, now))
	assert.True(t, StateCurrent.Matches(current, now))
	assert.True(t, StateFuture.Matches(future, now))
	assert.True(t, StateCurrent.Matches(startsNow, now))
	assert.False(t, StateFuture.Matches(startsNow, now))

	assert.True(t, StateWaiting.Matches(current, now))
	assert.True(t, StateRejected.Matches(future, now))
	assert.False(t, StateWaiting.Matches(past, now))

	for _, b := range []*Booking{past, current, future, startsNow} {
		assert.True(t, StateAll.Matches(b, now))
	}
}

func TestTimestampJSON(t *testing.T) {
	t.Run("Marshal", func(t *testing.T) {
		ts := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 999, time.FixedZone("X", 3*3600)))
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `"2025-01-02T00:04:05"`, string(data))
	})

	t.Run("MarshalZero", func(t *testing.T) {
		data, err := json.Marshal(Timestamp{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("UnmarshalLayouts", func(t *testing.T) {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2025-01-02T03:04:05"`), &ts))
		assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), ts.Time)

		require.NoError(t, json.Unmarshal([]byte(`"2025-01-02T03:04:05+01:00"`), &ts))
		assert.Equal(t, time.Date(2025, 1, 2, 2, 4, 5, 0, time.UTC), ts.Time)
	})

	t.Run("UnmarshalInvalid", func(t *testing.T) {
		var ts Timestamp
		assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &ts))
		assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
	})
}

func TestViews(t *testing.T) {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	reqID := int64(7)

	t.Run("BookingView", func(t *testing.T) {
		b := &Booking{
			ID: 1, ItemID: 2, ItemName: "Drill", BookerID: 3, BookerName: "Bob",
			Start: created, End: created.Add(time.Hour), Status: StatusWaiting,
		}
		data, err := json.Marshal(ToBookingView(b))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"id": 1,
			"start": "2025-03-01T08:00:00",
			"end": "2025-03-01T09:00:00",
			"status": "WAITING",
			"item": {"id": 2, "name": "Drill"},
			"booker": {"id": 3, "name": "Bob"}
		}`, string(data))
	})

	t.Run("ItemWithBookings", func(t *testing.T) {
		view := ItemWithBookingsView{
			ItemView:    ToItemView(&Item{ID: 5, OwnerID: 1, Name: "Saw", Description: "Hand saw", Available: true, RequestID: &reqID}),
			LastBooking: ToBookingRef(&Booking{ID: 9, BookerID: 4}),
			NextBooking: ToBookingRef(nil),
			Comments:    ToCommentViews([]*Comment{{ID: 1, Text: "ok", AuthorName: "Ann", Created: created}}),
		}
		data, err := json.Marshal(view)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"id": 5, "name": "Saw", "description": "Hand saw", "available": true, "ownerId": 1, "requestId": 7,
			"lastBooking": {"id": 9, "bookerId": 4},
			"nextBooking": null,
			"comments": [{"id": 1, "text": "ok", "authorName": "Ann", "created": "2025-03-01T08:00:00"}]
		}`, string(data))
	})

	t.Run("RequestView", func(t *testing.T) {
		view := ToRequestView(&ItemRequest{ID: 7, RequesterID: 2, Description: "need a ladder", Created: created}, nil)
		assert.Equal(t, int64(2), view.Requester)
		assert.NotNil(t, view.Items)
		assert.Empty(t, view.Items)
	})
}
