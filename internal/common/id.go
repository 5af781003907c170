package common

import (
	"github.com/google/uuid"
)

// NewResourceID generates a unique resource ID with a "res_" prefix.
func NewResourceID() string {
	return "res_" + uuid.New().String()
}
