package models

import "time"

// User is a member of an organization. FirstName and LastName are encrypted
// at rest.
type User struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"createdAt"`
}
