package core

import "github.com/google/uuid"

// NewID generates a UUID v7 so task and order ids sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
