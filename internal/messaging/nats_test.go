package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

type recordingPublisher struct {
	subject string
	data    []byte
	err     error
}

func (r *recordingPublisher) Publish(subject string, data []byte) error {
	r.subject = subject
	r.data = data
	return r.err
}

func TestPublishJSON(t *testing.T) {
	p := &recordingPublisher{}
	payload := map[string]string{"id": "join_1", "groupId": "group_2"}

	if err := PublishJSON(p, SubjectJoinRequest, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.subject != SubjectJoinRequest {
		t.Errorf("expected subject %q, got %q", SubjectJoinRequest, p.subject)
	}
	if string(p.data) != `{"groupId":"group_2","id":"join_1"}` {
		t.Errorf("unexpected payload %s", p.data)
	}
}

func TestPublishJSON_PublishError(t *testing.T) {
	p := &recordingPublisher{err: errors.New("nats down")}
	if err := PublishJSON(p, SubjectCircleSaved, struct{}{}); err == nil {
		t.Error("expected error when publish fails")
	}
}

func TestPublishJSON_MarshalError(t *testing.T) {
	p := &recordingPublisher{}
	if err := PublishJSON(p, SubjectCircleSaved, make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
	if p.subject != "" {
		t.Error("nothing should be published when marshal fails")
	}
}

func TestPublishJSON_NilAndNop(t *testing.T) {
	if err := PublishJSON(nil, SubjectTribeCreated, 1); err != nil {
		t.Errorf("nil publisher: unexpected error %v", err)
	}
	if err := PublishJSON(Nop{}, SubjectTribeCreated, 1); err != nil {
		t.Errorf("nop publisher: unexpected error %v", err)
	}
}

func TestNATSConfig_Enabled(t *testing.T) {
	if (NATSConfig{}).Enabled() {
		t.Error("empty URL should be disabled")
	}
	if !(NATSConfig{URL: "nats://localhost:4222"}).Enabled() {
		t.Error("configured URL should be enabled")
	}
}

func TestNATSConfig_Options(t *testing.T) {
	cfg := NATSConfig{URL: "nats://localhost:4222", Name: "circle-test", ReconnectWait: time.Second, MaxReconnects: 3}
	opts := nats.GetDefaultOptions()
	for _, o := range cfg.options() {
		if err := o(&opts); err != nil {
			t.Fatalf("apply option: %v", err)
		}
	}
	if opts.Name != "circle-test" || opts.ReconnectWait != time.Second || opts.MaxReconnect != 3 {
		t.Errorf("unexpected options: name=%q wait=%v max=%d", opts.Name, opts.ReconnectWait, opts.MaxReconnect)
	}
}

func TestNewNATSClient_RequiresURL(t *testing.T) {
	if _, err := NewNATSClient(NATSConfig{Name: "circle-test"}); err == nil {
		t.Error("expected error for empty URL")
	}
}
