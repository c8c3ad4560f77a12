package models

// Lead is an unqualified prospect.
type Lead struct {
	Base
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	OwnerID   string `json:"ownerId"`
	ContactID string `json:"contactId"`
}
