package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/matching"
	"github.com/safetrip/travel-circle/internal/tribe"
)

// preferenceForm mirrors the trip preference form. Interests is the raw
// comma separated field.
type preferenceForm struct {
	Destination string `json:"destination"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Budget      string `json:"budget"`
	Interests   string `json:"interests"`
}

func preferenceFromQuery(q url.Values) preferenceForm {
	return preferenceForm{
		Destination: q.Get("destination"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		Budget:      q.Get("budget"),
		Interests:   q.Get("interests"),
	}
}

// preference converts the form. Budget defaults to Mid like the form does;
// dates may be left out entirely but not half filled.
func (f preferenceForm) preference() (matching.Preference, error) {
	budget := matching.BudgetMid
	if strings.TrimSpace(f.Budget) != "" {
		b, err := matching.ParseBudgetTier(f.Budget)
		if err != nil {
			return matching.Preference{}, fmt.Errorf("%w: %v", matching.ErrInvalidPreference, err)
		}
		budget = b
	}

	var dates matching.DateRange
	if strings.TrimSpace(f.StartDate) != "" || strings.TrimSpace(f.EndDate) != "" {
		d, err := matching.ParseDateRange(f.StartDate, f.EndDate)
		if err != nil {
			return matching.Preference{}, fmt.Errorf("%w: %v", matching.ErrInvalidPreference, err)
		}
		dates = d
	}

	return matching.Preference{
		Destination: strings.TrimSpace(f.Destination),
		Dates:       dates,
		Budget:      budget,
		Interests:   matching.ParseInterests(f.Interests),
	}, nil
}

type matchRequestForm struct {
	Preference  preferenceForm `json:"preference"`
	CandidateID string         `json:"candidateId"`
}

type circleForm struct {
	Count   int             `json:"count"`
	Members []circle.Member `json:"members"`
}

// groupForm mirrors the Create a Tribe form. Activities is the raw comma
// separated field.
type groupForm struct {
	Title        string `json:"title"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Activities   string `json:"activities"`
	Total        int    `json:"total"`
	Open         int    `json:"open"`
	Description  string `json:"description"`
	Budget       string `json:"budget"`
	MeetingPoint string `json:"meetingPoint"`
}

func (f groupForm) draft() (tribe.Draft, error) {
	dates, err := matching.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return tribe.Draft{}, fmt.Errorf("%w: %v", tribe.ErrInvalidGroup, err)
	}
	return tribe.Draft{
		Title:        f.Title,
		Dates:        dates,
		Activities:   matching.ParseInterests(f.Activities),
		Total:        f.Total,
		Open:         f.Open,
		Description:  f.Description,
		Budget:       matching.BudgetTier(strings.TrimSpace(f.Budget)),
		MeetingPoint: f.MeetingPoint,
	}, nil
}

// groupView adds the display fields the directory shows for each group.
type groupView struct {
	tribe.Group
	Filled    int    `json:"filled"`
	DateLabel string `json:"dateLabel"`
}

func newGroupView(g tribe.Group) groupView {
	return groupView{Group: g, Filled: g.Filled(), DateLabel: g.Dates.Label()}
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	pref, err := preferenceFromQuery(r.URL.Query()).preference()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	results, err := s.companions.Recommend(r.Context(), pref)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRequestMatch(w http.ResponseWriter, r *http.Request) {
	var form matchRequestForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if strings.TrimSpace(form.CandidateID) == "" {
		writeServiceError(w, r, fmt.Errorf("%w: candidateId is required", errBadRequest))
		return
	}
	pref, err := form.Preference.preference()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := s.companions.RequestMatch(r.Context(), pref, form.CandidateID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListMatchRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.companions.MatchRequests(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleSaveCircle(w http.ResponseWriter, r *http.Request) {
	var form circleForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeServiceError(w, r, err)
		return
	}
	c, err := s.circles.Save(r.Context(), form.Count, form.Members)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCircles(w http.ResponseWriter, r *http.Request) {
	circles, err := s.circles.Circles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, circles)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.tribes.Groups(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, newGroupView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.tribes.Group(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGroupView(g))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var form groupForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := form.draft()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	g, err := s.tribes.Create(r.Context(), d)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGroupView(g))
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	req, err := s.tribes.Join(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleListJoinRequests(w http.ResponseWriter, r *http.Request) {
	joins, err := s.tribes.JoinRequests(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joins)
}
