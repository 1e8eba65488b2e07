package common

import (
	"github.com/google/uuid"
)

// NewListingID generates a unique internal listing ID with the "lst_" prefix
// Format: lst_<uuid>
func NewListingID() string {
	return "lst_" + uuid.New().String()
}
