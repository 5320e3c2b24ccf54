package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/placeroute/internal/adapters/postgres"
	"github.com/samirrijal/placeroute/internal/adapters/valkey"
	"github.com/samirrijal/placeroute/internal/core/usecases"
)

// UIFeed delivers serialized UIEvents to the WebSocket relay. The returned
// func cancels the subscription.
type UIFeed interface {
	SubscribeUI(fn func(data []byte)) (func(), error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Controller *usecases.Controller
	Feed       UIFeed
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
