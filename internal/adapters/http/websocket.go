package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/usecases"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/metrics"
	"github.com/samirrijal/placeroute/internal/pkg/telemetry"
)

// WebSocketHandler returns a handler that relays UI events to the client and
// feeds the client's answers back into the controller.
// Clients send JSON: {"tag":"add_new_place","content":"Guggenheim Bilbao"}
func WebSocketHandler(feed UIFeed, ctrl *usecases.Controller) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		rid, _ := c.Locals("requestid").(string)
		ctx := wsContext(rid, remoteAddr)
		log := logging.FromContext(ctx)
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex

		// Helper: thread-safe write
		writeRaw := func(data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return writeRaw(data)
		}

		if feed != nil {
			cancel, err := feed.SubscribeUI(func(data []byte) {
				_ = writeRaw(data)
			})
			if err != nil {
				log.Error("ws subscribe failed", "error", err)
				return
			}
			defer cancel()
		}

		// Send the current list so the client starts in sync
		if ctrl != nil {
			_ = writeJSON(domain.UIEvent{
				Type:   domain.EventPlaces,
				Places: ctrl.Places(),
				Time:   time.Now().UTC(),
			})
		}

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			if reply := handleWSInput(ctx, ctrl, msg); reply != nil {
				_ = writeJSON(reply)
			}
		}

		log.Info("ws client disconnected")
	}
}

// wsContext carries a connection-scoped logger, tagged with the upgrade
// request's ID, into every controller call made for the connection.
func wsContext(requestID, remoteAddr string) context.Context {
	l := slog.Default().With("remote", remoteAddr)
	if requestID != "" {
		l = l.With("request_id", requestID)
	}
	return logging.WithLogger(context.Background(), l)
}

// handleWSInput dispatches one client message and returns the error reply
// to send back, or nil.
func handleWSInput(ctx context.Context, ctrl *usecases.Controller, msg []byte) map[string]string {
	var in domain.InputResponse
	if err := json.Unmarshal(msg, &in); err != nil || in.Tag == "" {
		return map[string]string{"error": "expected {\"tag\":...,\"content\":...}"}
	}
	if ctrl == nil {
		return map[string]string{"error": "controller not available"}
	}

	ctx, span := telemetry.Tracer().Start(ctx, "ws.input", trace.WithAttributes(
		attribute.String("input.tag", string(in.Tag)),
	))
	defer span.End()

	if err := ctrl.HandleInput(ctx, in.Tag, in.Content); err != nil {
		span.RecordError(err)
		logging.FromContext(ctx).Warn("ws input rejected", "tag", in.Tag, "error", err)
		return map[string]string{"error": err.Error(), "tag": string(in.Tag)}
	}
	return nil
}
