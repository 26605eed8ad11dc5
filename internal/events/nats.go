package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher is the subset of *nats.Conn the forwarder needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ConnectNATS dials the broker and keeps reconnecting in the background.
func ConnectNATS(url, name string, logger *zerolog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

// NATSForwarder republishes bus events on "<prefix>.<event type>".
type NATSForwarder struct {
	conn   Publisher
	prefix string
	logger *zerolog.Logger
}

func NewNATSForwarder(conn Publisher, prefix string, logger *zerolog.Logger) *NATSForwarder {
	return &NATSForwarder{conn: conn, prefix: prefix, logger: logger}
}

func (f *NATSForwarder) Subject(eventType string) string {
	return f.prefix + "." + eventType
}

// Handle is an EventHandler.
func (f *NATSForwarder) Handle(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	subject := f.Subject(event.Type)
	if err := f.conn.Publish(subject, data); err != nil {
		f.logger.Warn().Err(err).Str("subject", subject).Msg("Failed to forward event")
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}
