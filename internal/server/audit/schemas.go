package audit

import (
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

// Bookkeeping columns (code, organization, modifiedBy, timestamps) are not
// listed and therefore never diffed.

var Accounts = &Schema[models.Account]{
	Entity:  models.EntityAccount,
	Label:   "account",
	Primary: []string{"name"},
	ID:      func(a *models.Account) string { return a.ID },
	Fields: []Field[models.Account]{
		{Name: "name", Kind: Plain, Str: func(a *models.Account) *string { return &a.Name }},
		{Name: "industry", Kind: Plain, Str: func(a *models.Account) *string { return &a.Industry }},
		{Name: "website", Kind: Plain, Str: func(a *models.Account) *string { return &a.Website }},
		{Name: "phone", Kind: Encrypted, Str: func(a *models.Account) *string { return &a.Phone }},
		{Name: "email", Kind: Encrypted, Str: func(a *models.Account) *string { return &a.Email }},
		{Name: "address", Kind: Encrypted, Str: func(a *models.Account) *string { return &a.Address }},
		{Name: "ownerId", Kind: Reference, Ref: models.EntityUser, Str: func(a *models.Account) *string { return &a.OwnerID }},
		{Name: "parentAccountId", Kind: Reference, Ref: models.EntityAccount, Str: func(a *models.Account) *string { return &a.ParentAccountID }},
	},
}

var Contacts = &Schema[models.Contact]{
	Entity:  models.EntityContact,
	Label:   "contact",
	Primary: []string{"firstName", "lastName"},
	ID:      func(c *models.Contact) string { return c.ID },
	Fields: []Field[models.Contact]{
		{Name: "firstName", Kind: Encrypted, Str: func(c *models.Contact) *string { return &c.FirstName }},
		{Name: "lastName", Kind: Encrypted, Str: func(c *models.Contact) *string { return &c.LastName }},
		{Name: "email", Kind: Encrypted, Str: func(c *models.Contact) *string { return &c.Email }},
		{Name: "phone", Kind: Encrypted, Str: func(c *models.Contact) *string { return &c.Phone }},
		{Name: "address", Kind: Encrypted, Str: func(c *models.Contact) *string { return &c.Address }},
		{Name: "title", Kind: Plain, Str: func(c *models.Contact) *string { return &c.Title }},
		{Name: "status", Kind: Plain, Str: func(c *models.Contact) *string { return &c.Status }},
		{Name: "birthday", Kind: Date, Time: func(c *models.Contact) *time.Time { return c.Birthday }},
		{Name: "ownerId", Kind: Reference, Ref: models.EntityUser, Str: func(c *models.Contact) *string { return &c.OwnerID }},
		{Name: "accountId", Kind: Reference, Ref: models.EntityAccount, Str: func(c *models.Contact) *string { return &c.AccountID }},
	},
}

var Leads = &Schema[models.Lead]{
	Entity:  models.EntityLead,
	Label:   "lead",
	Primary: []string{"firstName", "lastName"},
	ID:      func(l *models.Lead) string { return l.ID },
	Fields: []Field[models.Lead]{
		{Name: "firstName", Kind: Encrypted, Str: func(l *models.Lead) *string { return &l.FirstName }},
		{Name: "lastName", Kind: Encrypted, Str: func(l *models.Lead) *string { return &l.LastName }},
		{Name: "email", Kind: Encrypted, Str: func(l *models.Lead) *string { return &l.Email }},
		{Name: "phone", Kind: Encrypted, Str: func(l *models.Lead) *string { return &l.Phone }},
		{Name: "company", Kind: Plain, Str: func(l *models.Lead) *string { return &l.Company }},
		{Name: "source", Kind: Plain, Str: func(l *models.Lead) *string { return &l.Source }},
		{Name: "status", Kind: Plain, Str: func(l *models.Lead) *string { return &l.Status }},
		{Name: "ownerId", Kind: Reference, Ref: models.EntityUser, Str: func(l *models.Lead) *string { return &l.OwnerID }},
		{Name: "contactId", Kind: Reference, Ref: models.EntityContact, Str: func(l *models.Lead) *string { return &l.ContactID }},
	},
}

var Opportunities = &Schema[models.Opportunity]{
	Entity:  models.EntityOpportunity,
	Label:   "opportunity",
	Primary: []string{"name"},
	ID:      func(o *models.Opportunity) string { return o.ID },
	Fields: []Field[models.Opportunity]{
		{Name: "name", Kind: Plain, Str: func(o *models.Opportunity) *string { return &o.Name }},
		{Name: "amount", Kind: Plain, Str: func(o *models.Opportunity) *string { return &o.Amount }},
		{Name: "stage", Kind: Plain, Str: func(o *models.Opportunity) *string { return &o.Stage }},
		{Name: "closeDate", Kind: Date, Time: func(o *models.Opportunity) *time.Time { return o.CloseDate }},
		{Name: "ownerId", Kind: Reference, Ref: models.EntityUser, Str: func(o *models.Opportunity) *string { return &o.OwnerID }},
		{Name: "accountId", Kind: Reference, Ref: models.EntityAccount, Str: func(o *models.Opportunity) *string { return &o.AccountID }},
		{Name: "contactId", Kind: Reference, Ref: models.EntityContact, Str: func(o *models.Opportunity) *string { return &o.ContactID }},
	},
}

// Users and Notes are not audited; their schemas only drive encryption at
// rest and display names.

var Users = &Schema[models.User]{
	Entity:  models.EntityUser,
	Label:   "user",
	Primary: []string{"firstName", "lastName"},
	ID:      func(u *models.User) string { return u.ID },
	Fields: []Field[models.User]{
		{Name: "firstName", Kind: Encrypted, Str: func(u *models.User) *string { return &u.FirstName }},
		{Name: "lastName", Kind: Encrypted, Str: func(u *models.User) *string { return &u.LastName }},
		{Name: "email", Kind: Plain, Str: func(u *models.User) *string { return &u.Email }},
	},
}

var Notes = &Schema[models.Note]{
	Entity: models.EntityNote,
	Label:  "note",
	ID:     func(n *models.Note) string { return n.ID },
	Fields: []Field[models.Note]{
		{Name: "body", Kind: Encrypted, Str: func(n *models.Note) *string { return &n.Body }},
	},
}
