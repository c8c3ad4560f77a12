package models

import "time"

// AuditType classifies an audit row.
type AuditType string

const (
	AuditInserted AuditType = "INSERTED"
	AuditUpdated  AuditType = "UPDATED"
	AuditDeleted  AuditType = "DELETED"
)

// AuditChain identifies one logical transaction. An audit id only groups
// rows written by the same user of the same organization.
type AuditChain struct {
	OrganizationID string
	OwnerID        string
	AuditID        string
}

// AuditRecord is one immutable row of the audit trail.
//
// Rows of one AuditChain are linked: Sequence counts up from 1 and
// PreviousID points at the row before. INSERTED and DELETED rows carry
// their own description only; UPDATED rows carry the description
// accumulated over the UPDATED rows of the chain. Exactly one of the entity
// references is set.
type AuditRecord struct {
	ID             string    `json:"id"`
	AuditID        string    `json:"auditId"`
	Sequence       int       `json:"sequence"`
	PreviousID     string    `json:"previousId,omitempty"`
	AuditType      AuditType `json:"auditType"`
	Description    string    `json:"description"`
	OwnerID        string    `json:"ownerId"`
	ModifiedBy     string    `json:"modifiedBy"`
	OrganizationID string    `json:"organizationId"`
	AccountID      string    `json:"accountId,omitempty"`
	ContactID      string    `json:"contactId,omitempty"`
	LeadID         string    `json:"leadId,omitempty"`
	OpportunityID  string    `json:"opportunityId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Chain returns the transaction r belongs to.
func (r *AuditRecord) Chain() AuditChain {
	return AuditChain{OrganizationID: r.OrganizationID, OwnerID: r.OwnerID, AuditID: r.AuditID}
}

// Entity returns the kind and id of the record this row belongs to.
func (r *AuditRecord) Entity() (EntityType, string) {
	switch {
	case r.AccountID != "":
		return EntityAccount, r.AccountID
	case r.ContactID != "":
		return EntityContact, r.ContactID
	case r.LeadID != "":
		return EntityLead, r.LeadID
	case r.OpportunityID != "":
		return EntityOpportunity, r.OpportunityID
	}
	return "", ""
}

// SetEntity points the row at exactly one record, clearing the others.
// It reports false for kinds that are not audited.
func (r *AuditRecord) SetEntity(kind EntityType, id string) bool {
	r.AccountID, r.ContactID, r.LeadID, r.OpportunityID = "", "", "", ""
	switch kind {
	case EntityAccount:
		r.AccountID = id
	case EntityContact:
		r.ContactID = id
	case EntityLead:
		r.LeadID = id
	case EntityOpportunity:
		r.OpportunityID = id
	default:
		return false
	}
	return true
}
