package http

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/usecases"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/tsp"
)

// ctxUI remembers the context of the last message shown.
type ctxUI struct {
	lastCtx context.Context
	lastMsg string
}

func (u *ctxUI) RequestInput(ctx context.Context, req domain.InputRequest) error { return nil }
func (u *ctxUI) UpdatePlaces(ctx context.Context, places []domain.Place) error   { return nil }
func (u *ctxUI) ShowMessage(ctx context.Context, msg string) error {
	u.lastCtx, u.lastMsg = ctx, msg
	return nil
}

func TestHandleWSInput_CarriesConnectionLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ui := &ctxUI{}
	ctrl := usecases.NewController(nil, usecases.NewGeoResolver(nil, 0), usecases.NewRouteOptimizer(tsp.OpenPath), nil, ui, 8)
	p := domain.Place{Name: "Moyua", Longitude: -2.935, Latitude: 43.263}
	if _, err := ctrl.AddPlace(context.Background(), p, -1); err != nil {
		t.Fatal(err)
	}

	ctx := wsContext("req-42", "10.0.0.7:5000")
	msg := []byte(`{"tag":"delete_place","content":"` + p.Record() + `"}`)
	if reply := handleWSInput(ctx, ctrl, msg); reply != nil {
		t.Fatalf("unexpected reply %v", reply)
	}

	if ui.lastMsg != "Delete place: Moyua" || ui.lastCtx == nil {
		t.Fatalf("expected delete message, got %q", ui.lastMsg)
	}
	logging.FromContext(ui.lastCtx).Info("from controller")
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, `"remote":"10.0.0.7:5000"`) {
		t.Errorf("controller did not log with the connection logger: %s", out)
	}
}

func TestHandleWSInput_Errors(t *testing.T) {
	ctrl := usecases.NewController(nil, usecases.NewGeoResolver(nil, 0), usecases.NewRouteOptimizer(tsp.OpenPath), nil, nil, 8)
	ctx := wsContext("", "10.0.0.7:5000")

	if reply := handleWSInput(ctx, ctrl, []byte(`{not json`)); reply == nil || reply["error"] == "" {
		t.Errorf("expected error reply for bad JSON, got %v", reply)
	}
	if reply := handleWSInput(ctx, ctrl, []byte(`{"content":"x"}`)); reply == nil {
		t.Error("expected error reply without tag")
	}
	reply := handleWSInput(ctx, ctrl, []byte(`{"tag":"launch_rocket"}`))
	if reply == nil || reply["tag"] != "launch_rocket" {
		t.Errorf("expected unknown tag reply, got %v", reply)
	}
	if reply := handleWSInput(ctx, nil, []byte(`{"tag":"sort_places"}`)); reply == nil {
		t.Error("expected error reply without controller")
	}
}
