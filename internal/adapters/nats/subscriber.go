package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// InputHandler receives answers from the host UI.
type InputHandler func(ctx context.Context, tag domain.InputTag, content string) error

// inputReply is sent back when the request carried a reply subject.
type inputReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// Subscriber feeds host UI answers published on SubjectInput into the
// controller.
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber wraps an existing connection.
func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

// SubscribeInput registers handler in a queue group so only one instance
// answers each message.
func (s *Subscriber) SubscribeInput(ctx context.Context, handler InputHandler) error {
	sub, err := s.conn.QueueSubscribe(SubjectInput, "placeroute-input", func(msg *nats.Msg) {
		reply := handleInput(ctx, msg.Data, handler)
		if msg.Reply == "" {
			return
		}
		data, _ := json.Marshal(reply)
		if err := msg.Respond(data); err != nil {
			slog.Warn("nats input reply failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectInput, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

func handleInput(ctx context.Context, data []byte, handler InputHandler) inputReply {
	var in domain.InputResponse
	if err := json.Unmarshal(data, &in); err != nil {
		return inputReply{Error: "invalid JSON", Code: "BAD_REQUEST"}
	}
	if err := handler(ctx, in.Tag, in.Content); err != nil {
		slog.Warn("nats input rejected", "tag", in.Tag, "error", err)
		code := "INTERNAL_ERROR"
		switch {
		case errors.Is(err, domain.ErrNotFound):
			code = "NOT_FOUND"
		case errors.Is(err, domain.ErrValidation):
			code = "VALIDATION_ERROR"
		}
		return inputReply{Error: err.Error(), Code: code}
	}
	return inputReply{OK: true}
}

// SubscribeUI forwards every UIEvent payload to fn. Used by the WebSocket
// relay; the returned func unsubscribes.
func (s *Subscriber) SubscribeUI(fn func(data []byte)) (func(), error) {
	sub, err := s.conn.Subscribe(SubjectUIAll, func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", SubjectUIAll, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
