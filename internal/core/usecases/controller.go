package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/core/registry"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/metrics"
)

const (
	promptSelectAddress = "Select address to add: "
	msgFetchAddress     = "Fetch address list..."
)

type inputHandler func(ctx context.Context, content string) error

// Controller wires user intents to the registry, the resolver and the
// optimizer. It is the single writer of the registry: every mutation goes
// through mu.
type Controller struct {
	mu        sync.Mutex
	registry  *registry.Registry
	pending   *domain.Place
	resolver  *GeoResolver
	optimizer *RouteOptimizer
	store     ports.PlaceStore
	ui        ports.HostUI

	maxOptimize int
	handlers    map[domain.InputTag]inputHandler
	inflight    sync.WaitGroup
}

// NewController creates a Controller. store and ui may be nil; a nil ui
// drops every notification.
func NewController(
	reg *registry.Registry,
	resolver *GeoResolver,
	optimizer *RouteOptimizer,
	store ports.PlaceStore,
	ui ports.HostUI,
	maxOptimize int,
) *Controller {
	if reg == nil {
		reg = registry.New()
	}
	if ui == nil {
		ui = noopUI{}
	}
	c := &Controller{
		registry:    reg,
		resolver:    resolver,
		optimizer:   optimizer,
		store:       store,
		ui:          ui,
		maxOptimize: maxOptimize,
	}
	c.handlers = map[domain.InputTag]inputHandler{
		domain.TagAddNewPlace:    c.handleAddNewPlace,
		domain.TagSelectAddress:  c.handleSelectAddress,
		domain.TagInsertPosition: c.handleInsertPosition,
		domain.TagDeletePlace:    c.handleDeletePlace,
		domain.TagSortPlaces:     c.handleSortPlaces,
		domain.TagSavePlaces:     c.handleSavePlaces,
		domain.TagLoadPlaces:     c.handleLoadPlaces,
	}
	return c
}

// HandleInput dispatches an answer from the host UI to the handler
// registered for tag.
func (c *Controller) HandleInput(ctx context.Context, tag domain.InputTag, content string) error {
	h, ok := c.handlers[tag]
	if !ok {
		return fmt.Errorf("%w: input tag %q", domain.ErrNotFound, tag)
	}
	return h(ctx, content)
}

// Wait blocks until every in-flight address lookup has reported back.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Places returns a snapshot of the current list.
func (c *Controller) Places() []domain.Place {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Places()
}

// Resolve looks up candidates synchronously.
func (c *Controller) Resolve(ctx context.Context, query string) []domain.GeocodeCandidate {
	return c.resolver.Resolve(ctx, query)
}

// AddPlace inserts p at position (registry.Append or any negative value
// appends) and returns the index it landed at.
func (c *Controller) AddPlace(ctx context.Context, p domain.Place, position int) (int, error) {
	c.mu.Lock()
	idx, err := c.registry.Insert(p, position)
	snapshot := c.registry.Places()
	c.mu.Unlock()
	if err != nil {
		return 0, err
	}
	c.publish(ctx, snapshot)
	return idx, nil
}

// RemovePlace removes the first place with the same record as p.
func (c *Controller) RemovePlace(ctx context.Context, p domain.Place) bool {
	c.mu.Lock()
	removed := c.registry.Remove(p)
	snapshot := c.registry.Places()
	c.mu.Unlock()
	if removed {
		c.publish(ctx, snapshot)
	}
	return removed
}

// Reorder applies a full permutation of the current indices.
func (c *Controller) Reorder(ctx context.Context, order []int) error {
	c.mu.Lock()
	err := c.registry.ReplaceOrder(order)
	snapshot := c.registry.Places()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.publish(ctx, snapshot)
	return nil
}

// Optimize reorders the list into the shortest route and returns its summary.
func (c *Controller) Optimize(ctx context.Context) (domain.RouteSummary, error) {
	c.mu.Lock()
	places := c.registry.Places()
	if c.maxOptimize > 0 && len(places) > c.maxOptimize {
		c.mu.Unlock()
		return domain.RouteSummary{}, fmt.Errorf("%w: %d places, limit %d", domain.ErrTooManyPlaces, len(places), c.maxOptimize)
	}
	order, err := c.optimizer.Optimize(ctx, places)
	if err == nil {
		err = c.registry.ReplaceOrder(order)
	}
	snapshot := c.registry.Places()
	c.mu.Unlock()
	if err != nil {
		return domain.RouteSummary{}, err
	}

	c.publish(ctx, snapshot)
	return c.optimizer.Summarize(snapshot), nil
}

// Route summarizes the list in its current order.
func (c *Controller) Route() domain.RouteSummary {
	return c.optimizer.Summarize(c.Places())
}

// Save writes the serialized list to the store and returns the record count.
func (c *Controller) Save(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, domain.ErrNoStore
	}
	c.mu.Lock()
	records := c.registry.Serialize()
	c.mu.Unlock()

	if err := c.store.SaveRecords(ctx, records); err != nil {
		return 0, fmt.Errorf("save places: %w", err)
	}
	return len(records), nil
}

// Load replaces the list with the stored records and returns how many were kept.
func (c *Controller) Load(ctx context.Context) (int, error) {
	if c.store == nil {
		return 0, domain.ErrNoStore
	}
	records, err := c.store.LoadRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("load places: %w", err)
	}

	c.mu.Lock()
	kept := c.registry.Load(records)
	c.pending = nil
	snapshot := c.registry.Places()
	c.mu.Unlock()

	if dropped := len(records) - kept; dropped > 0 {
		logging.FromContext(ctx).Debug("dropped unreadable records", "dropped", dropped)
	}
	c.publish(ctx, snapshot)
	return kept, nil
}

// --- input handlers ---

func (c *Controller) handleAddNewPlace(ctx context.Context, content string) error {
	c.message(ctx, msgFetchAddress)

	done := c.resolver.ResolveAsync(ctx, content)
	bg := context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		res := <-done
		if res.Empty() {
			c.message(bg, "No address match "+res.Query)
			return
		}
		options := make([]string, len(res.Candidates))
		for i, cand := range res.Candidates {
			options[i] = cand.Record()
		}
		c.ask(bg, domain.InputRequest{
			Tag:     domain.TagSelectAddress,
			Prompt:  promptSelectAddress,
			Kind:    domain.InputList,
			Options: options,
		})
	}()
	return nil
}

func (c *Controller) handleSelectAddress(ctx context.Context, content string) error {
	p, err := domain.ParseRecord(content)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPlace, err)
	}
	c.message(ctx, "Add new place: "+p.Name)

	c.mu.Lock()
	if c.registry.Len() == 0 {
		_, err = c.registry.Insert(p, registry.Append)
		snapshot := c.registry.Places()
		c.mu.Unlock()
		if err != nil {
			return err
		}
		c.publish(ctx, snapshot)
		return nil
	}
	c.pending = &p
	n := c.registry.Len()
	c.mu.Unlock()

	c.ask(ctx, domain.InputRequest{
		Tag:    domain.TagInsertPosition,
		Prompt: fmt.Sprintf("Insert position (0-%d, empty to append): ", n),
		Kind:   domain.InputString,
	})
	return nil
}

func (c *Controller) handleInsertPosition(ctx context.Context, content string) error {
	position := registry.Append
	if v, err := strconv.Atoi(strings.TrimSpace(content)); err == nil {
		position = v
	}

	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return domain.ErrNoPendingPlace
	}
	p := *c.pending
	c.pending = nil
	_, err := c.registry.Insert(p, position)
	snapshot := c.registry.Places()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.publish(ctx, snapshot)
	return nil
}

func (c *Controller) handleDeletePlace(ctx context.Context, content string) error {
	p, err := domain.ParseRecord(content)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidPlace, err)
	}
	if c.RemovePlace(ctx, p) {
		c.message(ctx, "Delete place: "+p.Name)
	}
	return nil
}

func (c *Controller) handleSortPlaces(ctx context.Context, _ string) error {
	summary, err := c.Optimize(ctx)
	if err != nil {
		c.message(ctx, "Sort failed: "+err.Error())
		return err
	}
	c.message(ctx, fmt.Sprintf("Sorted %d places, %.1f km", len(summary.Places), summary.TotalMeters/1000))
	return nil
}

func (c *Controller) handleSavePlaces(ctx context.Context, _ string) error {
	n, err := c.Save(ctx)
	if err != nil {
		c.message(ctx, "Save failed: "+err.Error())
		return err
	}
	c.message(ctx, fmt.Sprintf("Saved %d places", n))
	return nil
}

func (c *Controller) handleLoadPlaces(ctx context.Context, _ string) error {
	n, err := c.Load(ctx)
	if err != nil {
		c.message(ctx, "Load failed: "+err.Error())
		return err
	}
	c.message(ctx, fmt.Sprintf("Loaded %d places", n))
	return nil
}

// --- host UI notifications; failures are logged, never returned ---

func (c *Controller) publish(ctx context.Context, places []domain.Place) {
	metrics.RegistryPlaces.Set(float64(len(places)))
	if err := c.ui.UpdatePlaces(ctx, places); err != nil {
		logging.FromContext(ctx).Warn("ui update places failed", "error", err)
	}
}

func (c *Controller) message(ctx context.Context, msg string) {
	if err := c.ui.ShowMessage(ctx, msg); err != nil {
		logging.FromContext(ctx).Warn("ui message failed", "error", err)
	}
}

func (c *Controller) ask(ctx context.Context, req domain.InputRequest) {
	if err := c.ui.RequestInput(ctx, req); err != nil {
		logging.FromContext(ctx).Warn("ui input request failed", "tag", req.Tag, "error", err)
	}
}

type noopUI struct{}

func (noopUI) RequestInput(context.Context, domain.InputRequest) error { return nil }
func (noopUI) UpdatePlaces(context.Context, []domain.Place) error      { return nil }
func (noopUI) ShowMessage(context.Context, string) error               { return nil }
