package providers

import (
	"time"

	"github.com/google/uuid"
)

// SystemClock reports wall-clock time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDProvider generates random 128-bit identifiers rendered as text.
// Collisions are left for the store's unique constraints to surface.
type UUIDProvider struct{}

func (UUIDProvider) GenerateId() string {
	return uuid.New().String()
}
