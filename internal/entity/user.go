package entity

import (
	"github.com/gofrs/uuid/v5"
)

// User is the authenticated caller as reported by the identity service.
// The session token itself is opaque to this service.
type User struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
}
