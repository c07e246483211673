// Package candidate supplies the travellers that can be recommended as
// companions. The scorer only sees the Provider interface, so the fixture
// list and the Redis index are interchangeable.
package candidate

import (
	"context"

	"github.com/safetrip/travel-circle/internal/matching"
)

// Filter narrows ListCandidates. The zero value matches everyone.
type Filter struct {
	Destination string   // exact destination; empty means any
	ExcludeIDs  []string // e.g. the current user
}

// Matches reports whether c passes the filter.
func (f Filter) Matches(c matching.Candidate) bool {
	if f.Destination != "" && c.Destination != f.Destination {
		return false
	}
	for _, id := range f.ExcludeIDs {
		if id == c.ID {
			return false
		}
	}
	return true
}

// Provider lists candidates in a stable source order.
type Provider interface {
	ListCandidates(ctx context.Context, filter Filter) ([]matching.Candidate, error)
}

// Find returns the candidate with the given id, or nil.
func Find(ctx context.Context, p Provider, id string) (*matching.Candidate, error) {
	all, err := p.ListCandidates(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// StaticProvider serves a fixed list.
type StaticProvider struct {
	candidates []matching.Candidate
}

// NewStaticProvider copies candidates into a provider.
func NewStaticProvider(candidates []matching.Candidate) *StaticProvider {
	return &StaticProvider{candidates: append([]matching.Candidate(nil), candidates...)}
}

// ListCandidates returns the matching candidates in list order.
func (p *StaticProvider) ListCandidates(ctx context.Context, filter Filter) ([]matching.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]matching.Candidate, 0, len(p.candidates))
	for _, c := range p.candidates {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}
