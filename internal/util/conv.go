package util

import (
	"strconv"
)

// ParseOptionalUint returns nil for an empty string.
func ParseOptionalUint(s string) (*uint, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return nil, err
	}
	v := uint(id)
	return &v, nil
}
