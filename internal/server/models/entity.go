// Package models defines server-side data models persisted in the tenant
// databases. String fields listed in an entity's audit schema as encrypted
// hold FieldCipher ciphertext once stored.
package models

import "time"

// EntityType names a kind of CRM record that carries a sequential business
// identifier.
type EntityType string

const (
	EntityAccount     EntityType = "account"
	EntityContact     EntityType = "contact"
	EntityLead        EntityType = "lead"
	EntityOpportunity EntityType = "opportunity"
	EntityActivity    EntityType = "activity"
	EntityNote        EntityType = "note"
	EntityUser        EntityType = "user"
)

type entityMeta struct {
	prefix string
	table  string
}

var entityTypes = map[EntityType]entityMeta{
	EntityAccount:     {prefix: "A", table: "accounts"},
	EntityContact:     {prefix: "C", table: "contacts"},
	EntityLead:        {prefix: "L", table: "leads"},
	EntityOpportunity: {prefix: "OPP", table: "opportunities"},
	EntityActivity:    {prefix: "AT", table: "activities"},
	EntityNote:        {prefix: "NT", table: "notes"},
	EntityUser:        {table: "users"},
}

// Prefix returns the identifier prefix, empty for kinds without business codes.
func (e EntityType) Prefix() string {
	return entityTypes[e].prefix
}

// Table returns the backing table name.
func (e EntityType) Table() string {
	return entityTypes[e].table
}

// CodeConstraint names the unique constraint guarding the business
// identifiers of e, empty for kinds without them.
func (e EntityType) CodeConstraint() string {
	if !e.Sequenced() {
		return ""
	}
	return e.Table() + "_code_key"
}

// Valid reports whether e is a known kind.
func (e EntityType) Valid() bool {
	_, ok := entityTypes[e]
	return ok
}

// Sequenced reports whether e is issued sequential business identifiers.
func (e EntityType) Sequenced() bool {
	return e.Prefix() != ""
}

// Base holds the bookkeeping columns every CRM record shares.
type Base struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	OrganizationID string     `json:"organizationId"`
	ModifiedBy     string     `json:"modifiedBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// Meta gives generic code access to the embedded Base.
func (b *Base) Meta() *Base {
	return b
}

// Deleted reports whether the record has been soft-deleted.
func (b *Base) Deleted() bool {
	return b.DeletedAt != nil
}
