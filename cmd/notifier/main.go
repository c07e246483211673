package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/safetrip/travel-circle/internal/config"
	"github.com/safetrip/travel-circle/internal/messaging"
)

var subjects = []string{
	messaging.SubjectMatchRequest,
	messaging.SubjectJoinRequest,
	messaging.SubjectCircleSaved,
	messaging.SubjectTribeCreated,
}

func main() {
	log.Println("Starting travel circle notifier...")

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	natsConfig := cfg.NATS

	natsClient, err := messaging.NewNATSClient(natsConfig)
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	for _, subject := range subjects {
		err := natsClient.Subscribe(subject, func(data []byte) {
			log.Printf("[notifier] %s", describe(subject, data))
		})
		if err != nil {
			log.Fatalf("failed to subscribe to %s: %v", subject, err)
		}
	}

	log.Printf("Travel circle notifier running")
	log.Printf("  nats_url: %s", natsConfig.URL)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	natsClient.Close()
	log.Println("Travel circle notifier stopped")
}

// describe renders an event as one log line for the organiser or traveller
// it concerns.
func describe(subject string, data []byte) string {
	var ev struct {
		ID              string `json:"id"`
		FromUser        string `json:"fromUser"`
		ToUser          string `json:"toUser"`
		MatchPercentage int    `json:"matchPercentage"`
		GroupTitle      string `json:"groupTitle"`
		UserName        string `json:"userName"`
		Count           int    `json:"count"`
		Title           string `json:"title"`
		Organizer       string `json:"organizer"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Sprintf("%s: unreadable payload: %v", subject, err)
	}

	switch subject {
	case messaging.SubjectMatchRequest:
		return fmt.Sprintf("%s: %s wants to travel with you (%d%% match) [%s]", ev.ToUser, ev.FromUser, ev.MatchPercentage, ev.ID)
	case messaging.SubjectJoinRequest:
		return fmt.Sprintf("organiser of %s: %s asked to join [%s]", ev.GroupTitle, ev.UserName, ev.ID)
	case messaging.SubjectCircleSaved:
		return fmt.Sprintf("circle %s saved with %d members", ev.ID, ev.Count)
	case messaging.SubjectTribeCreated:
		return fmt.Sprintf("new tribe %s by %s [%s]", ev.Title, ev.Organizer, ev.ID)
	default:
		return fmt.Sprintf("%s: %s", subject, data)
	}
}
