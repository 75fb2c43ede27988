package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random identifier without dashes (32 hex chars).
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
