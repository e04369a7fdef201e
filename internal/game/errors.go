package game

import "fmt"

var (
	// ErrSessionExists is returned when a character is already in the
	// world.
	ErrSessionExists = fmt.Errorf("session already exists")

	// ErrSessionNotFound is returned when a character is not in the
	// world.
	ErrSessionNotFound = fmt.Errorf("session not found")
)
