package audit

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/cryptox"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_SealOpen(t *testing.T) {
	c := newCipher(t)
	ct := &models.Contact{FirstName: "Zoë", LastName: "Łukasz", Email: "z@example.com", Title: "CFO"}

	require.NoError(t, Contacts.Seal(c, ct))
	assert.True(t, cryptox.IsEncrypted(ct.FirstName))
	assert.True(t, cryptox.IsEncrypted(ct.Email))
	assert.Empty(t, ct.Phone)
	assert.Equal(t, "CFO", ct.Title)

	failed := Contacts.Open(c, ct)
	assert.Empty(t, failed)
	assert.Equal(t, "Zoë", ct.FirstName)
	assert.Equal(t, "Łukasz", ct.LastName)
	assert.Equal(t, "z@example.com", ct.Email)
}

func TestSchema_SealEncryptsMarkerLookingInput(t *testing.T) {
	c := newCipher(t)
	ct := &models.Contact{FirstName: "enc:v1:Jane-real-name", LastName: "Doe"}

	require.NoError(t, Contacts.Seal(c, ct))
	assert.NotEqual(t, "enc:v1:Jane-real-name", ct.FirstName)
	assert.True(t, cryptox.IsEncrypted(ct.FirstName))

	plain, err := c.Decrypt(ct.FirstName)
	require.NoError(t, err)
	assert.Equal(t, "enc:v1:Jane-real-name", plain)

	assert.Empty(t, Contacts.Open(c, ct))
	assert.Equal(t, "enc:v1:Jane-real-name", ct.FirstName)
}

func TestSchema_ResealKeepsUnchangedUndecryptable(t *testing.T) {
	c := newCipher(t)
	stored := &models.Contact{FirstName: "enc:v1:broken", LastName: "enc:v1:broken-too", Email: "a@example.com"}

	next := *stored
	failed := Contacts.Open(c, &next)
	require.Equal(t, []string{"firstName", "lastName"}, failed)

	next.LastName = "Doe"
	require.NoError(t, Contacts.Reseal(c, &next, stored, failed))

	assert.Equal(t, "enc:v1:broken", next.FirstName)
	lastName, err := c.Decrypt(next.LastName)
	require.NoError(t, err)
	assert.Equal(t, "Doe", lastName)
	email, err := c.Decrypt(next.Email)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", email)
	assert.NotEqual(t, "a@example.com", next.Email)
}

func TestSchema_OpenKeepsUndecryptable(t *testing.T) {
	c := newCipher(t)
	u := &models.User{FirstName: "enc:v1:broken", LastName: "plain"}

	failed := Users.Open(c, u)
	assert.Equal(t, []string{"firstName"}, failed)
	assert.Equal(t, "enc:v1:broken", u.FirstName)
	assert.Equal(t, "plain", u.LastName)
}

func TestSchema_Display(t *testing.T) {
	c := newCipher(t)

	u := &models.User{FirstName: "Alice", LastName: "Smith"}
	require.NoError(t, Users.Seal(c, u))
	name, err := Users.Display(c, u)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", name)

	l := &models.Lead{LastName: "Solo"}
	require.NoError(t, Leads.Seal(c, l))
	name, err = Leads.Display(c, l)
	require.NoError(t, err)
	assert.Equal(t, "Solo", name)
}

func TestSchema_SnapshotDates(t *testing.T) {
	closeAt := time.Date(2025, 12, 31, 22, 0, 0, 0, time.FixedZone("E", 5*3600))
	o := &models.Opportunity{Base: models.Base{ID: "o1"}, Name: "Deal", CloseDate: &closeAt}

	snap := Opportunities.Snapshot(o)
	assert.Equal(t, models.EntityOpportunity, snap.Entity)
	assert.Equal(t, "o1", snap.ID)
	assert.Equal(t, []string{"Deal"}, snap.Primary)
	assert.Equal(t, "2025-12-31", snap.value("closeDate"))

	o.CloseDate = nil
	assert.Empty(t, Opportunities.Snapshot(o).value("closeDate"))
}

func TestSchema_Lookup(t *testing.T) {
	f, ok := Leads.Lookup("contactId")
	require.True(t, ok)
	assert.Equal(t, Reference, f.Kind)
	assert.Equal(t, models.EntityContact, f.Ref)

	_, ok = Leads.Lookup("nope")
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "plain", Plain.String())
	assert.Equal(t, "encrypted", Encrypted.String())
	assert.Equal(t, "reference", Reference.String())
	assert.Equal(t, "date", Date.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
