// Package circle saves the family and friends a traveller registers as
// their travel circle.
package circle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/safetrip/travel-circle/internal/messaging"
	"github.com/safetrip/travel-circle/internal/metrics"
	"github.com/safetrip/travel-circle/internal/store"
)

// MaxMembers is the largest circle the member form offers.
const MaxMembers = 6

var (
	// ErrInvalidCount is returned when the member count is outside 1..MaxMembers.
	ErrInvalidCount = errors.New("circle: member count must be between 1 and 6")

	// ErrIncompleteMembers is returned when fewer members than declared
	// have both a name and a phone number.
	ErrIncompleteMembers = errors.New("circle: please fill in all member details (name and phone number)")
)

// Member is one person in a circle.
type Member struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Valid reports whether both name and phone are filled in.
func (m Member) Valid() bool {
	return strings.TrimSpace(m.Name) != "" && strings.TrimSpace(m.Phone) != ""
}

// Circle is a saved group of members, persisted under travel_circles.
type Circle struct {
	ID        string    `json:"id"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
	Count     int       `json:"count"`
}

// Service validates and appends circles.
type Service struct {
	circles   *store.Sequence[Circle]
	publisher messaging.Publisher
	now       func() time.Time
}

// NewService creates a circle service. A nil publisher disables events.
func NewService(backend store.Backend, publisher messaging.Publisher) *Service {
	if publisher == nil {
		publisher = messaging.Nop{}
	}
	return &Service{
		circles:   store.NewSequence[Circle](backend, store.KeyTravelCircles),
		publisher: publisher,
		now:       time.Now,
	}
}

// SetClock overrides time.Now.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Save stores a circle of count members. Only the first count rows of
// members are considered; rows beyond it are ignored and missing rows count
// as incomplete. Nothing is written unless every one of the count rows is
// valid.
func (s *Service) Save(ctx context.Context, count int, members []Member) (Circle, error) {
	if count < 1 || count > MaxMembers {
		metrics.ActionsRejected.WithLabelValues("invalid_count").Inc()
		return Circle{}, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if len(members) > count {
		members = members[:count]
	}

	valid := make([]Member, 0, count)
	for _, m := range members {
		if m.Valid() {
			valid = append(valid, Member{Name: strings.TrimSpace(m.Name), Phone: strings.TrimSpace(m.Phone)})
		}
	}
	if len(valid) != count {
		metrics.ActionsRejected.WithLabelValues("incomplete_members").Inc()
		return Circle{}, fmt.Errorf("%w: %d of %d complete", ErrIncompleteMembers, len(valid), count)
	}

	c := Circle{
		ID:        store.NewID("circle"),
		Members:   valid,
		CreatedAt: s.now().UTC(),
		Count:     len(valid),
	}
	n, err := s.circles.Append(ctx, c)
	if err != nil {
		return Circle{}, err
	}
	metrics.ObserveAppend(store.KeyTravelCircles, n)
	log.Printf("[circle] saved %s with %d members", c.ID, c.Count)

	_ = messaging.PublishJSON(s.publisher, messaging.SubjectCircleSaved, c)
	return c, nil
}

// Circles lists saved circles, oldest first.
func (s *Service) Circles(ctx context.Context) ([]Circle, error) {
	return s.circles.List(ctx)
}
