package entity

import (
	"time"
)

type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	GSTIN     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
