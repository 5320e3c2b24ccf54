// Package registry keeps the ordered place list of a session.
//
// A Registry is not safe for concurrent mutation. The controller owns the
// only writer and serializes Insert, Remove, ReplaceOrder and Load.
package registry

import (
	"fmt"
	"strings"

	"github.com/samirrijal/placeroute/internal/core/domain"
)

// Append as an insert position puts the place at the end of the list.
const Append = -1

// Registry is an ordered sequence of places. Order is the display and
// persistence order; duplicates are allowed.
type Registry struct {
	places []domain.Place
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Len returns the number of places.
func (r *Registry) Len() int {
	return len(r.places)
}

// Places returns a copy of the current sequence.
func (r *Registry) Places() []domain.Place {
	out := make([]domain.Place, len(r.places))
	copy(out, r.places)
	return out
}

// Load replaces the whole sequence with the records that parse. Blank and
// malformed records are dropped without error. It returns how many were kept.
func (r *Registry) Load(records []string) int {
	places := make([]domain.Place, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		p, err := domain.ParseRecord(rec)
		if err != nil {
			continue
		}
		places = append(places, p)
	}
	r.places = places
	return len(places)
}

// Serialize returns one record per place. An empty registry yields no records.
func (r *Registry) Serialize() []string {
	out := make([]string, 0, len(r.places))
	for _, p := range r.places {
		out = append(out, p.Record())
	}
	return out
}

// Insert adds p at position and returns the index it landed on. A negative
// position appends; positions past the end are clamped to the end.
func (r *Registry) Insert(p domain.Place, position int) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if position < 0 || position >= len(r.places) {
		r.places = append(r.places, p)
		return len(r.places) - 1, nil
	}
	r.places = append(r.places, domain.Place{})
	copy(r.places[position+1:], r.places[position:])
	r.places[position] = p
	return position, nil
}

// Remove deletes the first place whose record matches p. It reports whether
// anything was removed; a miss leaves the sequence untouched.
func (r *Registry) Remove(p domain.Place) bool {
	rec := p.Record()
	for i, existing := range r.places {
		if existing.Record() == rec {
			r.places = append(r.places[:i], r.places[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceOrder rearranges the places so that the new i-th place is the old
// order[i]-th. order must be a permutation of 0..Len()-1; otherwise the
// registry is left unchanged.
func (r *Registry) ReplaceOrder(order []int) error {
	if err := CheckPermutation(order, len(r.places)); err != nil {
		return err
	}
	reordered := make([]domain.Place, len(order))
	for i, idx := range order {
		reordered[i] = r.places[idx]
	}
	r.places = reordered
	return nil
}

// CheckPermutation verifies order holds each index of 0..n-1 exactly once.
func CheckPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("%w: length %d, want %d", domain.ErrInvalidPermutation, len(order), n)
	}
	seen := make([]bool, n)
	for i, idx := range order {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: index %d at position %d out of range", domain.ErrInvalidPermutation, idx, i)
		}
		if seen[idx] {
			return fmt.Errorf("%w: index %d repeated", domain.ErrInvalidPermutation, idx)
		}
		seen[idx] = true
	}
	return nil
}

// SplitRecords cuts raw persisted text into records, one per line. Windows
// line endings are accepted.
func SplitRecords(data string) []string {
	if data == "" {
		return nil
	}
	lines := strings.Split(data, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// JoinRecords is the inverse of SplitRecords. No records produce no text.
func JoinRecords(records []string) string {
	if len(records) == 0 {
		return ""
	}
	return strings.Join(records, "\n") + "\n"
}
