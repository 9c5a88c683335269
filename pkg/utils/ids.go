package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateCalculationID creates the id a saved calculation is stored under
func GenerateCalculationID() string {
	return uuid.NewString()
}

// GenerateSessionID creates a short, human-readable id for a live editing session.
// Format: {prefix}-{8charHexUUID}
//
// Example:
//   - Input: prefix="ws"
//   - Output: "ws-a3f8e2b1"
func GenerateSessionID(prefix string) string {
	prefix = strings.Trim(prefix, "- ")
	if prefix == "" {
		return generateShortUUID()
	}
	return prefix + "-" + generateShortUUID()
}

// generateShortUUID creates an 8-character hex string from a UUID
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
