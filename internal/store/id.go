package store

import "github.com/google/uuid"

// NewID returns a time-ordered record identifier such as
// "match_0192f0c4-7a3e-7c1d-9b4e-2f6a1c0d8e11". The UUIDv7 prefix encodes
// the creation millisecond, so ids sort by creation time.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + "_" + id.String()
}
