package events

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// SubscribeBookingAudit writes one log line per booking lifecycle event so
// decisions can be traced without a broker.
func SubscribeBookingAudit(bus *EventBus, logger *zerolog.Logger) {
	handler := func(event *Event) error {
		var p BookingEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		logger.Info().
			Str("event_type", event.Type).
			Int64("booking_id", p.BookingID).
			Int64("item_id", p.ItemID).
			Int64("booker_id", p.BookerID).
			Int64("owner_id", p.OwnerID).
			Str("status", p.Status).
			Int64("changed_by", p.ChangedByID).
			Msg("Booking audit")
		return nil
	}
	for _, eventType := range []string{EventBookingCreated, EventBookingApproved, EventBookingRejected} {
		bus.Subscribe(eventType, handler)
	}
}
