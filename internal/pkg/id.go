package pkg

import "github.com/google/uuid"

// GenerateSessionID - returns a random session id.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsValidSessionID - reports whether id looks like an id from GenerateSessionID.
func IsValidSessionID(id string) bool {
	return uuid.Validate(id) == nil
}
