package model

import "github.com/google/uuid"

// NewID returns a random identifier carrying a readable entity prefix.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
