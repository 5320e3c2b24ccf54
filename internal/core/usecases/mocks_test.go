package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
)

// --- Mock GeocodeProvider ---

type mockProvider struct {
	name      string
	available bool
	queryFn   func(ctx context.Context, text string) ports.GeocodeResult

	mu    sync.Mutex
	calls []string
}

func (m *mockProvider) Name() string    { return m.name }
func (m *mockProvider) Available() bool { return m.available }

func (m *mockProvider) Query(ctx context.Context, text string) ports.GeocodeResult {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.queryFn != nil {
		return m.queryFn(ctx, text)
	}
	return ports.GeocodeResult{Outcome: ports.OutcomeEmpty}
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func found(c ...domain.GeocodeCandidate) func(context.Context, string) ports.GeocodeResult {
	return func(context.Context, string) ports.GeocodeResult {
		return ports.GeocodeResult{Outcome: ports.OutcomeFound, Candidates: c}
	}
}

func transportFailure(context.Context, string) ports.GeocodeResult {
	return ports.GeocodeResult{Outcome: ports.OutcomeTransportFailure, Err: errors.New("connection refused")}
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock PlaceStore ---

type mockStore struct {
	loadFn func(ctx context.Context) ([]string, error)
	saveFn func(ctx context.Context, records []string) error
}

func (m *mockStore) LoadRecords(ctx context.Context) ([]string, error) {
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) SaveRecords(ctx context.Context, records []string) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, records)
	}
	return nil
}

// --- Recording HostUI ---

type recordingUI struct {
	mu       sync.Mutex
	requests []domain.InputRequest
	updates  [][]domain.Place
	messages []string
}

func (r *recordingUI) RequestInput(ctx context.Context, req domain.InputRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return nil
}

func (r *recordingUI) UpdatePlaces(ctx context.Context, places []domain.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, places)
	return nil
}

func (r *recordingUI) ShowMessage(ctx context.Context, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingUI) countMessages(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m == msg {
			n++
		}
	}
	return n
}

func (r *recordingUI) lastRequest() (domain.InputRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		return domain.InputRequest{}, false
	}
	return r.requests[len(r.requests)-1], true
}
