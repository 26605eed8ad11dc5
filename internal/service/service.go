package service

import (
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// Clock supplies "now" to state filters, comment checks and request stamps.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// publish runs after commit; a failing subscriber never fails the operation.
func publish(pub domain.EventPublisher, logger *zerolog.Logger, eventType string, payload interface{}) {
	if pub == nil {
		return
	}
	if err := pub.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
