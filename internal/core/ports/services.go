package ports

import (
	"context"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// GeocodeOutcome classifies a single provider call.
type GeocodeOutcome int

const (
	OutcomeFound GeocodeOutcome = iota
	OutcomeEmpty
	OutcomeTransportFailure
)

func (o GeocodeOutcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// GeocodeResult is what a provider hands back. Err is only set for
// OutcomeTransportFailure and never leaves the resolver.
type GeocodeResult struct {
	Outcome    GeocodeOutcome
	Candidates []domain.GeocodeCandidate
	Err        error
}

// GeocodeProvider turns a free-text query into candidates.
type GeocodeProvider interface {
	Name() string
	// Available reports whether the provider can be used, e.g. a key is configured.
	Available() bool
	Query(ctx context.Context, text string) GeocodeResult
}

// HostUI is the outbound side of the user interface.
type HostUI interface {
	RequestInput(ctx context.Context, req domain.InputRequest) error
	UpdatePlaces(ctx context.Context, places []domain.Place) error
	ShowMessage(ctx context.Context, msg string) error
}
