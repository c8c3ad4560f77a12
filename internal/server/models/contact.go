package models

import "time"

// Contact is a person, optionally linked to an account.
type Contact struct {
	Base
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	OwnerID   string     `json:"ownerId"`
	AccountID string     `json:"accountId"`
}
