// Package audit turns entity mutations into human-readable, encrypted audit
// trail rows.
//
// Every audited entity kind is described by a Schema: a static table of its
// fields and how each one is compared and rendered. The Engine diffs two
// Snapshots taken through a Schema, decrypting encrypted fields for
// legibility, and encrypts the assembled description as a whole before it is
// stored.
package audit

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

// DateLayout is how Date fields appear in descriptions.
const DateLayout = "2006-01-02"

// Kind selects the comparison rule for a field.
type Kind int

const (
	// Plain fields are compared and rendered verbatim.
	Plain Kind = iota
	// Encrypted fields are stored as ciphertext and decrypted before comparing.
	Encrypted
	// Reference fields hold the id of another record and are rendered by its
	// display label.
	Reference
	// Date fields are rendered with DateLayout in UTC.
	Date
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Encrypted:
		return "encrypted"
	case Reference:
		return "reference"
	case Date:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Cipher is the field encryption primitive the package needs.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) (string, error)
}

// Field describes one diffable field of T. Str is set for every kind but
// Date, which uses Time.
type Field[T any] struct {
	Name string
	Kind Kind
	Ref  models.EntityType
	Str  func(*T) *string
	Time func(*T) *time.Time
}

// Schema is the static description of an entity kind.
type Schema[T any] struct {
	Entity models.EntityType
	// Label is the lower-case human name of the kind, e.g. "contact".
	Label string
	// Primary lists the fields joined with a space to name a record.
	Primary []string
	ID      func(*T) string
	Fields  []Field[T]
}

// Value is one field captured in a Snapshot. Raw is the stored form:
// ciphertext for Encrypted fields, an id for Reference fields and an
// already rendered date for Date fields. An empty Raw means the field is
// unset.
type Value struct {
	Name string
	Kind Kind
	Ref  models.EntityType
	Raw  string
}

// Snapshot is the schema-agnostic state of one record as stored.
type Snapshot struct {
	Entity  models.EntityType
	Label   string
	ID      string
	Primary []string
	Values  []Value
}

// Snapshot captures e. Encrypted fields must already be sealed.
func (s *Schema[T]) Snapshot(e *T) Snapshot {
	snap := Snapshot{
		Entity: s.Entity,
		Label:  s.Label,
		ID:     s.ID(e),
		Values: make([]Value, 0, len(s.Fields)),
	}
	for _, f := range s.Fields {
		snap.Values = append(snap.Values, Value{Name: f.Name, Kind: f.Kind, Ref: f.Ref, Raw: f.raw(e)})
	}
	for _, name := range s.Primary {
		snap.Primary = append(snap.Primary, snap.value(name))
	}
	return snap
}

// Seal encrypts the non-empty Encrypted fields of e in place. Every value is
// treated as cleartext, including one that already looks like ciphertext.
func (s *Schema[T]) Seal(c Cipher, e *T) error {
	return s.Reseal(c, e, nil, nil)
}

// Reseal is Seal for a record that was opened from stored. A field named in
// undecryptable that still holds its stored value is written back untouched.
func (s *Schema[T]) Reseal(c Cipher, e, stored *T, undecryptable []string) error {
	for _, f := range s.Fields {
		if f.Kind != Encrypted {
			continue
		}
		p := f.Str(e)
		if *p == "" {
			continue
		}
		if stored != nil && slices.Contains(undecryptable, f.Name) && *p == *f.Str(stored) {
			continue
		}
		v, err := c.Encrypt(*p)
		if err != nil {
			return fmt.Errorf("encrypt %s.%s: %w", s.Entity, f.Name, err)
		}
		*p = v
	}
	return nil
}

// Open decrypts the Encrypted fields of e in place. A field that fails to
// decrypt keeps its stored value and is reported in the returned slice.
func (s *Schema[T]) Open(c Cipher, e *T) (failed []string) {
	for _, f := range s.Fields {
		if f.Kind != Encrypted {
			continue
		}
		p := f.Str(e)
		v, err := c.Decrypt(*p)
		if err != nil {
			failed = append(failed, f.Name)
			continue
		}
		*p = v
	}
	return failed
}

// Display returns the decrypted display name of e.
func (s *Schema[T]) Display(c Cipher, e *T) (string, error) {
	return display(c, s.Snapshot(e).Primary)
}

// Lookup returns the field called name.
func (s *Schema[T]) Lookup(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

func (f Field[T]) raw(e *T) string {
	if f.Kind == Date {
		t := f.Time(e)
		if t == nil || t.IsZero() {
			return ""
		}
		return t.UTC().Format(DateLayout)
	}
	return *f.Str(e)
}

func (s Snapshot) value(name string) string {
	for _, v := range s.Values {
		if v.Name == name {
			return v.Raw
		}
	}
	return ""
}

func display(c Cipher, parts []string) (string, error) {
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		v, err := c.Decrypt(p)
		if err != nil {
			return "", err
		}
		if v = strings.TrimSpace(v); v != "" {
			words = append(words, v)
		}
	}
	return strings.Join(words, " "), nil
}
