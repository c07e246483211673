// Package matching scores and ranks potential travel companions against a
// traveller's trip preferences. Everything in this package is pure: no I/O,
// no shared state, and every function is total over its inputs.
package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for trip dates (HTML date input format).
const DateLayout = "2006-01-02"

// ErrInvalidPreference wraps every validation failure of a Preference.
var ErrInvalidPreference = errors.New("matching: invalid preference")

// BudgetTier is the coarse spending level a traveller plans for.
type BudgetTier string

// Budget tiers offered by the preference form.
const (
	BudgetLow  BudgetTier = "Low"
	BudgetMid  BudgetTier = "Mid"
	BudgetHigh BudgetTier = "High"
)

// ParseBudgetTier validates a budget tier label.
func ParseBudgetTier(s string) (BudgetTier, error) {
	switch tier := BudgetTier(strings.TrimSpace(s)); tier {
	case BudgetLow, BudgetMid, BudgetHigh:
		return tier, nil
	default:
		return "", fmt.Errorf("matching: unknown budget tier %q", s)
	}
}

// DateRange is an inclusive pair of trip dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses two YYYY-MM-DD dates and checks their order.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return DateRange{}, fmt.Errorf("matching: parse start date: %w", err)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return DateRange{}, fmt.Errorf("matching: parse end date: %w", err)
	}
	r := DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate reports whether the range is ordered.
func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("matching: end date %s is before start date %s",
			r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}

// Label renders the range as "Oct 10-14" or "Oct 30-Nov 2".
func (r DateRange) Label() string {
	if r.Start.IsZero() {
		return ""
	}
	if r.Start.Month() == r.End.Month() {
		return fmt.Sprintf("%s %d-%d", r.Start.Format("Jan"), r.Start.Day(), r.End.Day())
	}
	return fmt.Sprintf("%s %d-%s %d", r.Start.Format("Jan"), r.Start.Day(), r.End.Format("Jan"), r.End.Day())
}

// Preference is what the traveller enters in the trip preference form.
type Preference struct {
	Destination string     `json:"destination"`
	Dates       DateRange  `json:"dates"`
	Budget      BudgetTier `json:"budget"`
	Interests   []string   `json:"interests"`
}

// Validate checks the fields the scorer relies on.
func (p Preference) Validate() error {
	if _, err := ParseBudgetTier(string(p.Budget)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreference, err)
	}
	if err := p.Dates.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreference, err)
	}
	return nil
}

// Candidate is a traveller who can be recommended as a companion.
type Candidate struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Interests   []string   `json:"interests"`
	Dates       DateRange  `json:"dates"`
	Budget      BudgetTier `json:"budget"`
	Destination string     `json:"destination"`
	Age         int        `json:"age,omitempty"`
	Experience  string     `json:"experience,omitempty"`
}

// ParseInterests splits the comma separated interest field, trimming
// whitespace and dropping empty and repeated entries. Order is preserved.
func ParseInterests(raw string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
