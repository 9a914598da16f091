package utils

import "github.com/google/uuid"

// GenerateUUID returns a random (v4) UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}
