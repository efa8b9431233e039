// Package pathutil parses route parameters and normalises request paths for metric labels.
package pathutil

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive int64 route parameter, typically r.PathValue("id").
// Only the canonical decimal form is accepted: no sign, no leading zeros.
//
//	id, err := ParseID(r.PathValue("id"))
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != s {
		return 0, ErrInvalidID
	}
	return id, nil
}
