// Package companion recommends travel companions and records match
// requests sent to them.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/safetrip/travel-circle/internal/candidate"
	"github.com/safetrip/travel-circle/internal/matching"
	"github.com/safetrip/travel-circle/internal/messaging"
	"github.com/safetrip/travel-circle/internal/metrics"
	"github.com/safetrip/travel-circle/internal/store"
)

// StatusPending is the only status this service ever assigns.
const StatusPending = "pending"

// ErrCandidateNotFound is returned when a request names an unknown candidate.
var ErrCandidateNotFound = errors.New("companion: candidate not found")

// User identifies who is sending requests from this installation.
type User struct {
	ID   string
	Name string
}

// MatchRequest is a request to travel together, persisted under
// match_requests. It is never updated after being appended.
type MatchRequest struct {
	ID              string              `json:"id"`
	FromUser        string              `json:"fromUser"`
	ToUser          string              `json:"toUser"`
	ToUserID        string              `json:"toUserId"`
	Destination     string              `json:"destination"`
	Dates           matching.DateRange  `json:"dates"`
	Interests       []string            `json:"interests"`
	Budget          matching.BudgetTier `json:"budget"`
	MatchPercentage int                 `json:"matchPercentage"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// Service ranks candidates and appends match requests.
type Service struct {
	candidates candidate.Provider
	requests   *store.Sequence[MatchRequest]
	publisher  messaging.Publisher
	user       User
	filter     candidate.Filter
	sameDest   bool
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithSameDestinationOnly restricts recommendations to candidates going to
// the preferred destination instead of ranking everyone.
func WithSameDestinationOnly() Option {
	return func(s *Service) { s.sameDest = true }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a companion service.
func NewService(candidates candidate.Provider, backend store.Backend, publisher messaging.Publisher, user User, opts ...Option) *Service {
	if publisher == nil {
		publisher = messaging.Nop{}
	}
	s := &Service{
		candidates: candidates,
		requests:   store.NewSequence[MatchRequest](backend, store.KeyMatchRequests),
		publisher:  publisher,
		user:       user,
		filter:     candidate.Filter{ExcludeIDs: []string{user.ID}},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend ranks candidates for pref, best match first.
func (s *Service) Recommend(ctx context.Context, pref matching.Preference) ([]matching.MatchResult, error) {
	if err := pref.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	list, err := s.candidates.ListCandidates(ctx, s.filterFor(pref))
	if err != nil {
		return nil, fmt.Errorf("companion: list candidates: %w", err)
	}
	results := matching.Rank(pref, list)

	metrics.RecommendationsTotal.Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if len(results) > 0 {
		metrics.TopMatchPercentage.Observe(float64(results[0].MatchPercentage))
	}
	return results, nil
}

// RequestMatch records a match request from the current user to the
// candidate. The match percentage is recomputed from pref so that it
// reflects the preferences the request was sent with.
func (s *Service) RequestMatch(ctx context.Context, pref matching.Preference, candidateID string) (MatchRequest, error) {
	if err := pref.Validate(); err != nil {
		return MatchRequest{}, err
	}

	c, err := candidate.Find(ctx, s.candidates, candidateID)
	if err != nil {
		return MatchRequest{}, fmt.Errorf("companion: find candidate: %w", err)
	}
	if c == nil {
		return MatchRequest{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
	}

	result := matching.Evaluate(pref, *c)
	req := MatchRequest{
		ID:              store.NewID("match"),
		FromUser:        s.user.Name,
		ToUser:          c.Name,
		ToUserID:        c.ID,
		Destination:     pref.Destination,
		Dates:           pref.Dates,
		Interests:       pref.Interests,
		Budget:          pref.Budget,
		MatchPercentage: result.MatchPercentage,
		Status:          StatusPending,
		CreatedAt:       s.now().UTC(),
	}

	n, err := s.requests.Append(ctx, req)
	if err != nil {
		return MatchRequest{}, err
	}
	metrics.ObserveAppend(store.KeyMatchRequests, n)
	log.Printf("[companion] match request %s to %s (%d%%)", req.ID, req.ToUserID, req.MatchPercentage)

	_ = messaging.PublishJSON(s.publisher, messaging.SubjectMatchRequest, req)
	return req, nil
}

// MatchRequests lists recorded match requests, oldest first.
func (s *Service) MatchRequests(ctx context.Context) ([]MatchRequest, error) {
	return s.requests.List(ctx)
}

func (s *Service) filterFor(pref matching.Preference) candidate.Filter {
	f := s.filter
	if s.sameDest {
		f.Destination = pref.Destination
	}
	return f
}
