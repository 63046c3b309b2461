// Package inputval holds small, dependency-free checks for form and JSON input.
package inputval

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinPasswordLen is the shortest password accepted at sign-up or reset.
const MinPasswordLen = 8

// IsValidEmail performs a structural check of a bare address (no display
// name). Single-label domains such as "localhost" are accepted.
func IsValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return validDotted(s[:at]) && validDotted(s[at+1:])
}

// validDotted rejects leading, trailing, and consecutive dots.
func validDotted(part string) bool {
	if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
		return false
	}
	return !strings.Contains(part, "..")
}

// IsValidPassword reports whether pw meets the minimum length.
func IsValidPassword(pw string) bool {
	return len(pw) >= MinPasswordLen
}

// ObjectID parses a hex id, trimming whitespace. ok is false for empty or
// malformed input.
func ObjectID(s string) (primitive.ObjectID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
