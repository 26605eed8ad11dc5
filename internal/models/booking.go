package models

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled is part of the stored vocabulary but no operation produces it.
	StatusCanceled BookingStatus = "CANCELED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// Booking is a reservation of an item for the half-open window [Start, End).
// ItemName, OwnerID and BookerName are denormalized from the joined rows.
type Booking struct {
	ID         int64         `json:"id"`
	ItemID     int64         `json:"item_id"`
	ItemName   string        `json:"item_name"`
	OwnerID    int64         `json:"owner_id"`
	BookerID   int64         `json:"booker_id"`
	BookerName string        `json:"booker_name"`
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Status     BookingStatus `json:"status"`
	Version    int64         `json:"version"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BookingState classifies bookings relative to a point in time and/or status.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// BookingStates lists every filter value in a stable order.
var BookingStates = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseBookingState is case-insensitive; an empty value means ALL.
func ParseBookingState(s string) (BookingState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StateAll, nil
	}
	state := BookingState(strings.ToUpper(s))
	for _, known := range BookingStates {
		if state == known {
			return state, nil
		}
	}
	return "", &UnknownStateError{Value: s}
}

// Matches reports whether b belongs to the filter at instant now. It mirrors
// the WHERE clauses ListBookings builds for the same state.
func (s BookingState) Matches(b *Booking, now time.Time) bool {
	switch s {
	case StateAll:
		return true
	case StateCurrent:
		return !b.Start.After(now) && now.Before(b.End)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == StatusWaiting
	case StateRejected:
		return b.Status == StatusRejected
	}
	return false
}

type UnknownStateError struct {
	Value string
}

func (e *UnknownStateError) Error() string {
	return "Unknown state: " + e.Value
}

// BookingFilter selects bookings either by booker or by item owner.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
}
