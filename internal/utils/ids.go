package utils

import "github.com/google/uuid"

// IsUUID reports whether s parses as a UUID, the only id shape the
// store ever assigns.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
