package domain

import "github.com/google/uuid"

// Contact is an emergency contact reachable by the caretaker notifier.
type Contact struct {
	ID uuid.UUID

	Name         string
	Phone        string
	Relationship string
	Email        string
}
