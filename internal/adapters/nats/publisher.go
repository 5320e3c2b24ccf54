package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// Subjects used between the service and the host UI.
const (
	SubjectUIAll      = "placeroute.ui.>"
	SubjectUIInput    = "placeroute.ui.input"
	SubjectUIPlaces   = "placeroute.ui.places"
	SubjectUIMessage  = "placeroute.ui.message"
	SubjectInput      = "placeroute.input"

	streamUI = "PLACEROUTE_UI"
)

// Publisher implements ports.HostUI by publishing UIEvents on JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and makes sure the UI stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      streamUI,
		Subjects:  []string{SubjectUIAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.MemoryStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

func (p *Publisher) RequestInput(ctx context.Context, req domain.InputRequest) error {
	return p.publish(ctx, domain.UIEvent{Type: domain.EventInputRequest, Request: &req})
}

func (p *Publisher) UpdatePlaces(ctx context.Context, places []domain.Place) error {
	if places == nil {
		places = []domain.Place{}
	}
	return p.publish(ctx, domain.UIEvent{Type: domain.EventPlaces, Places: places})
}

func (p *Publisher) ShowMessage(ctx context.Context, msg string) error {
	return p.publish(ctx, domain.UIEvent{Type: domain.EventMessage, Message: msg})
}

func (p *Publisher) publish(ctx context.Context, ev domain.UIEvent) error {
	ev.Time = p.now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectFor(ev.Type), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// SubjectFor maps an event type onto its subject.
func SubjectFor(t domain.UIEventType) string {
	switch t {
	case domain.EventInputRequest:
		return SubjectUIInput
	case domain.EventPlaces:
		return SubjectUIPlaces
	default:
		return SubjectUIMessage
	}
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("placeroute"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
