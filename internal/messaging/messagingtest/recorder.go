// Package messagingtest provides an in-process publisher for tests.
package messagingtest

import (
	"encoding/json"
	"sync"
)

// Message is one published payload.
type Message struct {
	Subject string
	Data    []byte
}

// Recorder keeps every published message. Set Err to make Publish fail.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

// Publish records the message and returns r.Err.
func (r *Recorder) Publish(subject string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Subject: subject, Data: append([]byte(nil), data...)})
	return r.Err
}

// Messages returns a copy of what was published so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Decode unmarshals the i-th message into v.
func (r *Recorder) Decode(i int, v interface{}) error {
	msgs := r.Messages()
	return json.Unmarshal(msgs[i].Data, v)
}
