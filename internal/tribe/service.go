package tribe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/safetrip/travel-circle/internal/matching"
	"github.com/safetrip/travel-circle/internal/messaging"
	"github.com/safetrip/travel-circle/internal/metrics"
	"github.com/safetrip/travel-circle/internal/store"
)

// StatusPending is the status of every new join request. The organiser
// reviews requests elsewhere.
const StatusPending = "pending"

var (
	ErrGroupNotFound = errors.New("tribe: group not found")
	ErrGroupFull     = errors.New("tribe: sorry, this group is full")
	ErrInvalidGroup  = errors.New("tribe: invalid group")
)

// JoinRequest asks an organiser for a spot in a group. It is persisted
// under join_requests and never updated.
type JoinRequest struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"groupId"`
	GroupTitle string    `json:"groupTitle"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Status     string    `json:"status"`
	AppliedAt  time.Time `json:"appliedAt"`
}

// Draft is the Create a Tribe form.
type Draft struct {
	Title        string              `json:"title"`
	Dates        matching.DateRange  `json:"dates"`
	Activities   []string            `json:"activities"`
	Total        int                 `json:"total"`
	Open         int                 `json:"open"`
	Description  string              `json:"description"`
	Budget       matching.BudgetTier `json:"budget"`
	MeetingPoint string              `json:"meetingPoint"`
}

// Validate checks the draft before anything is stored.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidGroup)
	}
	if d.Total <= 0 {
		return fmt.Errorf("%w: total spots must be positive", ErrInvalidGroup)
	}
	if d.Open < 0 || d.Open > d.Total {
		return fmt.Errorf("%w: open spots must be between 0 and %d", ErrInvalidGroup, d.Total)
	}
	if d.Budget != "" {
		if _, err := matching.ParseBudgetTier(string(d.Budget)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidGroup, err)
		}
	}
	if err := d.Dates.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGroup, err)
	}
	return nil
}

// Member identifies who joins and creates groups from this installation.
type Member struct {
	ID   string
	Name string
}

// Service serves the group directory and records join requests.
type Service struct {
	fixtures  []Group
	created   *store.Sequence[Group]
	joins     *store.Sequence[JoinRequest]
	publisher messaging.Publisher
	member    Member
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithFixtures replaces the built-in groups.
func WithFixtures(groups []Group) Option {
	return func(s *Service) { s.fixtures = append([]Group(nil), groups...) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a tribe service acting on behalf of member.
func NewService(backend store.Backend, publisher messaging.Publisher, member Member, opts ...Option) *Service {
	if publisher == nil {
		publisher = messaging.Nop{}
	}
	s := &Service{
		fixtures:  Fixtures(),
		created:   store.NewSequence[Group](backend, store.KeyTravelGroups),
		joins:     store.NewSequence[JoinRequest](backend, store.KeyJoinRequests),
		publisher: publisher,
		member:    member,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Groups returns the fixture groups followed by created groups.
func (s *Service) Groups(ctx context.Context) ([]Group, error) {
	created, err := s.created.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(s.fixtures)+len(created))
	out = append(out, s.fixtures...)
	return append(out, created...), nil
}

// Group returns the group with the given id.
func (s *Service) Group(ctx context.Context, id string) (Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return Group{}, err
	}
	for _, g := range groups {
		if g.ID == id {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("%w: %s", ErrGroupNotFound, id)
}

// Join records a pending join request for the group. A full group is
// refused and nothing is written. Open spots are not decremented; the
// organiser decides.
func (s *Service) Join(ctx context.Context, groupID string) (JoinRequest, error) {
	g, err := s.Group(ctx, groupID)
	if err != nil {
		return JoinRequest{}, err
	}
	if g.Full() {
		metrics.ActionsRejected.WithLabelValues("group_full").Inc()
		return JoinRequest{}, fmt.Errorf("%w: %s", ErrGroupFull, g.Title)
	}

	req := JoinRequest{
		ID:         store.NewID("join"),
		GroupID:    g.ID,
		GroupTitle: g.Title,
		UserID:     s.member.ID,
		UserName:   s.member.Name,
		Status:     StatusPending,
		AppliedAt:  s.now().UTC(),
	}
	n, err := s.joins.Append(ctx, req)
	if err != nil {
		return JoinRequest{}, err
	}
	metrics.ObserveAppend(store.KeyJoinRequests, n)
	log.Printf("[tribe] join request %s for %s", req.ID, g.ID)

	_ = messaging.PublishJSON(s.publisher, messaging.SubjectJoinRequest, req)
	return req, nil
}

// JoinRequests lists recorded join requests, oldest first.
func (s *Service) JoinRequests(ctx context.Context) ([]JoinRequest, error) {
	return s.joins.List(ctx)
}

// Create adds a new group organised by the current member.
func (s *Service) Create(ctx context.Context, d Draft) (Group, error) {
	if err := d.Validate(); err != nil {
		metrics.ActionsRejected.WithLabelValues("invalid_group").Inc()
		return Group{}, err
	}

	created := s.now().UTC()
	activities := d.Activities
	if activities == nil {
		activities = []string{}
	}
	g := Group{
		ID:           store.NewID("group"),
		Title:        strings.TrimSpace(d.Title),
		Dates:        d.Dates,
		Activities:   activities,
		Total:        d.Total,
		Open:         d.Open,
		Description:  strings.TrimSpace(d.Description),
		Organizer:    s.member.Name,
		Budget:       d.Budget,
		MeetingPoint: strings.TrimSpace(d.MeetingPoint),
		CreatedAt:    &created,
	}
	n, err := s.created.Append(ctx, g)
	if err != nil {
		return Group{}, err
	}
	metrics.ObserveAppend(store.KeyTravelGroups, n)
	log.Printf("[tribe] created %s %q (%d/%d open)", g.ID, g.Title, g.Open, g.Total)

	_ = messaging.PublishJSON(s.publisher, messaging.SubjectTribeCreated, g)
	return g, nil
}
