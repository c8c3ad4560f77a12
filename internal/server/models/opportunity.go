package models

import "time"

// Opportunity is a potential deal with an account.
type Opportunity struct {
	Base
	Name      string     `json:"name"`
	Amount    string     `json:"amount"`
	Stage     string     `json:"stage"`
	CloseDate *time.Time `json:"closeDate,omitempty"`
	OwnerID   string     `json:"ownerId"`
	AccountID string     `json:"accountId"`
	ContactID string     `json:"contactId"`
}
