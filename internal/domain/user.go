// Package domain contains the core data types and fee rules for the book
// rental backend. It depends only on uuid and decimal and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a library member who can rent books.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}
