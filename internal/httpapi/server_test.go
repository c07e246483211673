package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetrip/travel-circle/internal/candidate"
	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/companion"
	"github.com/safetrip/travel-circle/internal/matching"
	"github.com/safetrip/travel-circle/internal/ratelimit"
	"github.com/safetrip/travel-circle/internal/store"
	"github.com/safetrip/travel-circle/internal/tribe"
)

type countingLimiter struct {
	limit   int
	resetIn time.Duration
	seen    map[string]int
}

func (l *countingLimiter) Take(_ context.Context, id string, rule ratelimit.Rule) (ratelimit.Decision, error) {
	if l.seen == nil {
		l.seen = make(map[string]int)
	}
	key := rule.Key + id
	l.seen[key]++
	remaining := l.limit - l.seen[key]
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Decision{
		Allowed:   l.seen[key] <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetIn:   l.resetIn,
	}, nil
}

func newTestServer(t *testing.T, opts Options) (*Server, store.Backend) {
	t.Helper()
	backend := store.NewMemoryBackend()
	now := func() time.Time { return time.Date(2025, time.October, 4, 10, 0, 0, 0, time.UTC) }

	companions := companion.NewService(
		candidate.NewStaticProvider(candidate.Fixtures()),
		backend, nil,
		companion.User{ID: "current_user", Name: "Current User"},
		companion.WithClock(now),
	)
	circles := circle.NewService(backend, nil)
	tribes := tribe.NewService(backend, nil, tribe.Member{ID: "current_user", Name: "Current User"}, tribe.WithClock(now))
	return NewServer(companions, circles, tribes, opts), backend
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	w := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRecommendations(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, http.MethodGet,
		"/api/recommendations?destination=Jaipur&startDate=2025-10-10&endDate=2025-10-14&budget=High&interests=Heritage,%20Food", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []matching.MatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 4)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
	for _, r := range results {
		if r.Candidate.ID == "user_1" {
			assert.Equal(t, 81, r.MatchPercentage)
			assert.Equal(t, []string{"Heritage"}, r.SharedInterests)
		}
	}
}

func TestRecommendations_BadInput(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []string{
		"/api/recommendations?budget=Luxury",
		"/api/recommendations?startDate=2025-10-14&endDate=2025-10-10",
		"/api/recommendations?startDate=2025-10-14",
	}
	for _, target := range tests {
		w := do(t, srv, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "invalid_request", decodeError(t, w).Code, target)
	}
}

func TestMatchRequests(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	body := map[string]interface{}{
		"preference": map[string]string{
			"destination": "Jaipur",
			"startDate":   "2025-10-10",
			"endDate":     "2025-10-14",
			"budget":      "High",
			"interests":   "Heritage, Food",
		},
		"candidateId": "user_1",
	}
	w := do(t, srv, http.MethodPost, "/api/match-requests", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created companion.MatchRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Arjun", created.ToUser)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 81, created.MatchPercentage)

	w = do(t, srv, http.MethodGet, "/api/match-requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []companion.MatchRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestMatchRequests_Errors(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, http.MethodPost, "/api/match-requests", map[string]string{"candidateId": "user_99"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)

	w = do(t, srv, http.MethodPost, "/api/match-requests", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/match-requests", map[string]string{"unknown": "field"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/match-requests", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCircles(t *testing.T) {
	srv, backend := newTestServer(t, Options{})

	incomplete := map[string]interface{}{
		"count":   2,
		"members": []map[string]string{{"name": "Asha", "phone": "1"}, {"name": "Kabir"}},
	}
	w := do(t, srv, http.MethodPost, "/api/circles", incomplete)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_circle", decodeError(t, w).Code)

	raw, err := backend.Get(context.Background(), store.KeyTravelCircles)
	require.NoError(t, err)
	assert.Nil(t, raw, "incomplete form must not be saved")

	complete := map[string]interface{}{
		"count":   2,
		"members": []map[string]string{{"name": "Asha", "phone": "1"}, {"name": "Kabir", "phone": "2"}},
	}
	w = do(t, srv, http.MethodPost, "/api/circles", complete)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/circles", nil)
	var list []circle.Circle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Count)
}

func TestGroups(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var groups []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	require.Len(t, groups, 3)
	assert.Equal(t, "group_1", groups[0]["id"])
	assert.EqualValues(t, 4, groups[0]["filled"])
	assert.Equal(t, "Oct 12-14", groups[0]["dateLabel"])

	w = do(t, srv, http.MethodGet, "/api/groups/group_3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rishikesh Bus Stand")

	w = do(t, srv, http.MethodGet, "/api/groups/group_404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinAndCreateGroup(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, http.MethodPost, "/api/groups/group_2/join", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var join tribe.JoinRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &join))
	assert.Equal(t, "Jaipur Food & Forts", join.GroupTitle)

	full := map[string]interface{}{
		"title": "Sold Out Safari", "startDate": "2025-11-01", "endDate": "2025-11-03",
		"activities": "Jeep ride, Birding", "total": 4, "open": 0,
	}
	w = do(t, srv, http.MethodPost, "/api/groups", full)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, []interface{}{"Jeep ride", "Birding"}, created["activities"])

	id, _ := created["id"].(string)
	w = do(t, srv, http.MethodPost, "/api/groups/"+id+"/join", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "group_full", decodeError(t, w).Code)

	w = do(t, srv, http.MethodGet, "/api/join-requests", nil)
	var joins []tribe.JoinRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &joins))
	assert.Len(t, joins, 1, "a full group must not record a join request")

	invalid := map[string]interface{}{"title": "", "startDate": "2025-11-01", "endDate": "2025-11-03", "total": 4}
	w = do(t, srv, http.MethodPost, "/api/groups", invalid)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Options{Limiter: &countingLimiter{limit: 2, resetIn: 42500 * time.Millisecond}})

	for i := 0; i < 2; i++ {
		w := do(t, srv, http.MethodPost, "/api/groups/group_1/join", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(1-i), w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "43", w.Header().Get("X-RateLimit-Reset"))
		assert.Empty(t, w.Header().Get("Retry-After"))
	}
	w := do(t, srv, http.MethodPost, "/api/groups/group_1/join", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeError(t, w).Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "43", w.Header().Get("Retry-After"))

	// Reads are never limited.
	w = do(t, srv, http.MethodGet, "/api/join-requests", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Remaining"))
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{-time.Second, 1},
		{300 * time.Millisecond, 1},
		{time.Second, 1},
		{1001 * time.Millisecond, 2},
		{time.Minute, 60},
	}
	for _, tt := range tests {
		if got := seconds(tt.in); got != tt.want {
			t.Errorf("seconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/groups", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
