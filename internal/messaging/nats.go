// Package messaging announces recorded circle actions on NATS so that
// organisers and other travellers' devices can be told about them. Nothing
// in this service consumes the events; delivery is best effort.
package messaging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects for circle events. Payload is the JSON record.
const (
	SubjectMatchRequest = "circle.match_request"
	SubjectJoinRequest  = "circle.join_request"
	SubjectCircleSaved  = "circle.saved"
	SubjectTribeCreated = "tribe.created"
)

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Nop discards every event. Used when NATS is not configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(string, []byte) error { return nil }

// PublishJSON marshals v and publishes it. Failures are logged and returned;
// callers treat them as non-fatal because the record is already stored.
func PublishJSON(p Publisher, subject string, v interface{}) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("messaging: marshal %s: %w", subject, err)
	}
	if err := p.Publish(subject, data); err != nil {
		log.Printf("[nats] publish %s failed: %v", subject, err)
		return fmt.Errorf("messaging: publish %s: %w", subject, err)
	}
	return nil
}

// NATSClient wraps the NATS connection with helper methods for pub/sub.
type NATSClient struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// NATSConfig holds NATS connection settings. The env tags let it be
// embedded in a service configuration parsed with caarlos0/env.
type NATSConfig struct {
	// URL of the server; empty disables events in circled.
	URL string `env:"CIRCLE_NATS_URL"`
	// Name identifies the client in the server's connection list.
	Name          string        `env:"CIRCLE_NATS_NAME" envDefault:"travel-circle"`
	ReconnectWait time.Duration `env:"CIRCLE_NATS_RECONNECT_WAIT" envDefault:"2s"`
	// MaxReconnects of -1 retries forever.
	MaxReconnects int `env:"CIRCLE_NATS_MAX_RECONNECTS" envDefault:"-1"`
}

// Enabled reports whether a server URL is configured.
func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

func (c NATSConfig) options() []nats.Option {
	return []nats.Option{
		nats.Name(c.Name),
		nats.ReconnectWait(c.ReconnectWait),
		nats.MaxReconnects(c.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}
}

// NewNATSClient connects to the configured server. It fails when no URL is
// set or the first connection attempt fails.
func NewNATSClient(config NATSConfig) (*NATSClient, error) {
	if !config.Enabled() {
		return nil, errors.New("messaging: nats url is not configured")
	}

	nc, err := nats.Connect(config.URL, config.options()...)
	if err != nil {
		return nil, fmt.Errorf("messaging: connect %s: %w", config.URL, err)
	}
	log.Printf("[nats] connected to %s as %s", nc.ConnectedUrl(), config.Name)

	return &NATSClient{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *NATSClient) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *NATSClient) Subscribe(subject string, handler func(data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// Close drains the connection, which also drains every subscription and
// flushes events that are still buffered.
func (c *NATSClient) Close() {
	c.mu.Lock()
	n := len(c.subs)
	c.subs = make(map[string]*nats.Subscription)
	c.mu.Unlock()

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] drain: %v", err)
	}
	log.Printf("[nats] client closed (%d subscriptions)", n)
}
