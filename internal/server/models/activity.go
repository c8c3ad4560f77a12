package models

import "time"

// Activity is a call, meeting or task, optionally tied to other records.
type Activity struct {
	Base
	Subject       string     `json:"subject"`
	Type          string     `json:"type"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	OwnerID       string     `json:"ownerId"`
	AccountID     string     `json:"accountId"`
	ContactID     string     `json:"contactId"`
	LeadID        string     `json:"leadId"`
	OpportunityID string     `json:"opportunityId"`
}

// Note is free text attached to a record. Body is encrypted at rest.
type Note struct {
	Base
	Body          string `json:"body"`
	OwnerID       string `json:"ownerId"`
	AccountID     string `json:"accountId"`
	ContactID     string `json:"contactId"`
	LeadID        string `json:"leadId"`
	OpportunityID string `json:"opportunityId"`
}
