package candidate

import (
	"time"

	"github.com/safetrip/travel-circle/internal/matching"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

// Fixtures returns the sample travellers heading to Jaipur in October.
func Fixtures() []matching.Candidate {
	return []matching.Candidate{
		{
			ID:          "user_1",
			Name:        "Arjun",
			Interests:   []string{"Heritage", "Photography", "History"},
			Dates:       matching.DateRange{Start: day(time.October, 10), End: day(time.October, 14)},
			Budget:      matching.BudgetMid,
			Destination: "Jaipur",
			Age:         28,
			Experience:  "Experienced",
		},
		{
			ID:          "user_2",
			Name:        "Meera",
			Interests:   []string{"Food", "Markets", "Culture"},
			Dates:       matching.DateRange{Start: day(time.October, 11), End: day(time.October, 15)},
			Budget:      matching.BudgetHigh,
			Destination: "Jaipur",
			Age:         32,
			Experience:  "Beginner",
		},
		{
			ID:          "user_3",
			Name:        "Ravi",
			Interests:   []string{"Adventure", "Heritage", "Photography"},
			Dates:       matching.DateRange{Start: day(time.October, 9), End: day(time.October, 13)},
			Budget:      matching.BudgetLow,
			Destination: "Jaipur",
			Age:         25,
			Experience:  "Experienced",
		},
		{
			ID:          "user_4",
			Name:        "Priya",
			Interests:   []string{"Food", "Heritage", "Shopping"},
			Dates:       matching.DateRange{Start: day(time.October, 12), End: day(time.October, 16)},
			Budget:      matching.BudgetMid,
			Destination: "Jaipur",
			Age:         30,
			Experience:  "Intermediate",
		},
	}
}
