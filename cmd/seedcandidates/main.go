package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safetrip/travel-circle/internal/candidate"
	"github.com/safetrip/travel-circle/internal/matching"
)

type cfg struct {
	RedisAddr string
	File      string // JSON array of candidates; empty seeds the built-in travellers
	Reset     bool
}

func main() {
	var c cfg
	defaultAddr := os.Getenv("CIRCLE_REDIS_ADDR")
	if defaultAddr == "" {
		defaultAddr = "localhost:6379"
	}
	flag.StringVar(&c.RedisAddr, "redis", defaultAddr, "Redis address [env: CIRCLE_REDIS_ADDR]")
	flag.StringVar(&c.File, "file", "", "JSON file with an array of candidates (default: built-in travellers)")
	flag.BoolVar(&c.Reset, "reset", false, "Remove every indexed candidate before seeding")
	flag.Parse()

	candidates := candidate.Fixtures()
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			log.Fatalf("read %s: %v", c.File, err)
		}
		candidates, err = parseCandidates(data)
		if err != nil {
			log.Fatalf("parse %s: %v", c.File, err)
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis at %s: %v", c.RedisAddr, err)
	}

	provider := candidate.NewRedisProvider(rdb)
	if c.Reset {
		existing, err := provider.ListCandidates(ctx, candidate.Filter{})
		if err != nil {
			log.Fatalf("list candidates: %v", err)
		}
		for _, e := range existing {
			if err := provider.Remove(ctx, e.ID); err != nil {
				log.Fatalf("remove %s: %v", e.ID, err)
			}
		}
		log.Printf("[seed] removed %d candidates", len(existing))
	}

	seeded := 0
	for _, cand := range candidates {
		if err := provider.Put(ctx, cand); err != nil {
			log.Fatalf("put %s: %v", cand.ID, err)
		}
		seeded++
	}
	log.Printf("[seed] seeded %d candidates into %s", seeded, c.RedisAddr)
}

// candidateForm is one entry of the -file array. Dates use the same
// YYYY-MM-DD layout as the HTTP forms.
type candidateForm struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Interests   []string `json:"interests"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Budget      string   `json:"budget"`
	Destination string   `json:"destination"`
	Age         int      `json:"age,omitempty"`
	Experience  string   `json:"experience,omitempty"`
}

func (f candidateForm) candidate() (matching.Candidate, error) {
	if f.ID == "" {
		return matching.Candidate{}, errMissingID
	}
	budget, err := matching.ParseBudgetTier(f.Budget)
	if err != nil {
		return matching.Candidate{}, err
	}
	dates, err := matching.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return matching.Candidate{}, err
	}
	return matching.Candidate{
		ID:          f.ID,
		Name:        f.Name,
		Interests:   f.Interests,
		Dates:       dates,
		Budget:      budget,
		Destination: f.Destination,
		Age:         f.Age,
		Experience:  f.Experience,
	}, nil
}

// parseCandidates decodes a JSON array of candidate forms. Invalid entries
// are logged and skipped; a malformed document is an error.
func parseCandidates(data []byte) ([]matching.Candidate, error) {
	var forms []candidateForm
	if err := json.Unmarshal(data, &forms); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	out := make([]matching.Candidate, 0, len(forms))
	for i, f := range forms {
		cand, err := f.candidate()
		if err != nil {
			log.Printf("[seed] skipping entry %d (%q): %v", i, f.ID, err)
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

var errMissingID = errors.New("candidate id is required")
