// Package tribe is the directory of open travel groups: the fixture tribes,
// the ones travellers create, and the join requests sent to them.
package tribe

import (
	"time"

	"github.com/safetrip/travel-circle/internal/matching"
)

// Group is a travel group that others can ask to join.
type Group struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Dates        matching.DateRange  `json:"dates"`
	Activities   []string            `json:"activities"`
	Total        int                 `json:"total"`
	Open         int                 `json:"open"`
	Description  string              `json:"description,omitempty"`
	Organizer    string              `json:"organizer,omitempty"`
	Budget       matching.BudgetTier `json:"budget,omitempty"`
	MeetingPoint string              `json:"meetingPoint,omitempty"`
	Includes     []string            `json:"includes,omitempty"`
	Requirements []string            `json:"requirements,omitempty"`
	CreatedAt    *time.Time          `json:"createdAt,omitempty"`
}

// Filled is the number of spots already taken.
func (g Group) Filled() int {
	return g.Total - g.Open
}

// Full reports whether no spots are open.
func (g Group) Full() bool {
	return g.Open <= 0
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

// Fixtures returns the built-in groups, in display order.
func Fixtures() []Group {
	return []Group{
		{
			ID:           "group_1",
			Title:        "Delhi Heritage Walk",
			Dates:        matching.DateRange{Start: day(time.October, 12), End: day(time.October, 14)},
			Activities:   []string{"Red Fort", "Humayun's Tomb", "India Gate", "Lotus Temple"},
			Total:        6,
			Open:         2,
			Description:  "Explore the rich heritage of Delhi with fellow history enthusiasts",
			Organizer:    "Rajesh Kumar",
			Budget:       matching.BudgetMid,
			MeetingPoint: "Red Fort Metro Station",
			Includes:     []string{"Guide", "Entry fees", "Transportation"},
			Requirements: []string{"Comfortable walking shoes", "Camera", "Water bottle"},
		},
		{
			ID:           "group_2",
			Title:        "Jaipur Food & Forts",
			Dates:        matching.DateRange{Start: day(time.October, 10), End: day(time.October, 13)},
			Activities:   []string{"Amber Fort", "Chokhi Dhani", "City Palace", "Jantar Mantar"},
			Total:        8,
			Open:         3,
			Description:  "Experience the royal city of Jaipur through its cuisine and magnificent forts",
			Organizer:    "Priya Sharma",
			Budget:       matching.BudgetHigh,
			MeetingPoint: "Jaipur Railway Station",
			Includes:     []string{"Guide", "Entry fees", "Meals", "Transportation"},
			Requirements: []string{"Traditional attire for palace visit", "Appetite for local food"},
		},
		{
			ID:           "group_3",
			Title:        "Rishikesh Adventure",
			Dates:        matching.DateRange{Start: day(time.October, 18), End: day(time.October, 20)},
			Activities:   []string{"Rafting", "Cliff Jumping", "Temple visits", "Yoga sessions"},
			Total:        10,
			Open:         4,
			Description:  "Adventure and spirituality combined in the yoga capital of the world",
			Organizer:    "Amit Singh",
			Budget:       matching.BudgetLow,
			MeetingPoint: "Rishikesh Bus Stand",
			Includes:     []string{"Equipment", "Accommodation", "Meals"},
			Requirements: []string{"Swimming skills", "Adventure spirit", "Yoga mat"},
		},
	}
}
