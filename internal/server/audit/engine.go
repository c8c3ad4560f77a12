package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	null      = "null"
	arrow     = " --> "
	lineJoint = ", "
)

// Store persists audit rows. It must be bound to the transaction of the
// mutation being audited.
type Store interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
	// LatestByAuditID returns the highest-sequence row of chain, restricted
	// to rows of typ unless typ is empty, or common.ErrorNotFound.
	LatestByAuditID(ctx context.Context, chain models.AuditChain, typ models.AuditType) (*models.AuditRecord, error)
}

// Labeler resolves a referenced record to its decrypted display label.
// Unknown ids yield common.ErrorNotFound.
type Labeler interface {
	Label(ctx context.Context, kind models.EntityType, id string) (string, error)
}

// Actor is the user performing the mutation.
type Actor struct {
	UserID         string
	Email          string
	OrganizationID string
}

// Session binds one recording call to its transaction and logical action.
// Updates sharing an AuditID, actor and organization accumulate into a
// single description.
type Session struct {
	Store   Store
	Labels  Labeler
	Actor   Actor
	AuditID string
}

// Engine builds and stores audit rows.
type Engine struct {
	cipher  Cipher
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewEngine(c Cipher, logger logging.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		cipher:  c,
		logger:  logger.With("module", "audit"),
		metrics: m,
		tracer:  otel.Tracer("github.com/dmitrijs2005/crmkeeper/internal/server/audit"),
		now:     time.Now,
	}
}

// WithClock returns a copy of e stamping rows with now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	c := *e
	c.now = now
	return &c
}

// RecordInsert appends an INSERTED row for snap. Its description is the
// insert template alone, even inside a shared transaction.
func (e *Engine) RecordInsert(ctx context.Context, s Session, snap Snapshot) (*models.AuditRecord, error) {
	ctx, span := e.start(ctx, models.AuditInserted, snap)
	defer span.End()

	name := e.primary(ctx, snap)
	text := fmt.Sprintf("New %s created with name %s", snap.Label, name)

	rec, err := e.append(ctx, s, models.AuditInserted, snap, text)
	if err != nil {
		span.RecordError(err)
	}
	return rec, err
}

// RecordDelete appends a DELETED row for the soft-deleted snap.
func (e *Engine) RecordDelete(ctx context.Context, s Session, snap Snapshot) (*models.AuditRecord, error) {
	ctx, span := e.start(ctx, models.AuditDeleted, snap)
	defer span.End()

	name := e.primary(ctx, snap)
	text := fmt.Sprintf("%s %s deleted", capitalize(snap.Label), name)

	rec, err := e.append(ctx, s, models.AuditDeleted, snap, text)
	if err != nil {
		span.RecordError(err)
	}
	return rec, err
}

// RecordUpdate diffs before and after and appends an UPDATED row describing
// the changes. When nothing observable changed no row is written and both
// return values are nil.
func (e *Engine) RecordUpdate(ctx context.Context, s Session, before, after Snapshot) (*models.AuditRecord, error) {
	ctx, span := e.start(ctx, models.AuditUpdated, after)
	defer span.End()

	if before.Entity != after.Entity || before.ID != after.ID || len(before.Values) != len(after.Values) {
		return nil, fmt.Errorf("%w: snapshots of different records", common.ErrorInvalidEntity)
	}

	lines, err := e.diff(ctx, s.Labels, before, after)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	s = e.bind(s)
	header := fmt.Sprintf("%s %s changed from ", e.primary(ctx, before), after.Label)
	desc, err := e.accumulate(ctx, s, after, header, strings.Join(lines, lineJoint))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	rec, err := e.append(ctx, s, models.AuditUpdated, after, desc)
	if err != nil {
		span.RecordError(err)
	}
	return rec, err
}

// Describe decrypts the description of rec.
func (e *Engine) Describe(rec *models.AuditRecord) (string, error) {
	return e.cipher.Decrypt(rec.Description)
}

func (e *Engine) diff(ctx context.Context, labels Labeler, before, after Snapshot) ([]string, error) {
	var lines []string
	for i, nv := range after.Values {
		ov := before.Values[i]
		if ov.Name != nv.Name {
			return nil, fmt.Errorf("%w: field order mismatch at %s", common.ErrorInvalidEntity, nv.Name)
		}

		switch nv.Kind {
		case Reference:
			if ov.Raw == nv.Raw {
				continue
			}
			from, err := e.label(ctx, labels, nv.Ref, ov.Raw)
			if err != nil {
				return nil, err
			}
			to, err := e.label(ctx, labels, nv.Ref, nv.Raw)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line(nv.Name, from, to))

		case Encrypted:
			from, errFrom := e.cipher.Decrypt(ov.Raw)
			to, errTo := e.cipher.Decrypt(nv.Raw)
			if err := errors.Join(errFrom, errTo); err != nil {
				e.metrics.IncAuditFieldSkipped(string(after.Entity))
				e.logger.Warn(ctx, "skipping undecryptable field", "entity", after.Entity, "id", after.ID, "field", nv.Name)
				continue
			}
			if from == to {
				continue
			}
			lines = append(lines, line(nv.Name, orNull(from), orNull(to)))

		default:
			if ov.Raw == nv.Raw {
				continue
			}
			lines = append(lines, line(nv.Name, orNull(ov.Raw), orNull(nv.Raw)))
		}
	}
	return lines, nil
}

// bind gives s an audit id when the caller did not supply one.
func (e *Engine) bind(s Session) Session {
	if s.AuditID == "" {
		s.AuditID = uuid.NewString()
	}
	return s
}

func (s Session) chain() models.AuditChain {
	return models.AuditChain{OrganizationID: s.Actor.OrganizationID, OwnerID: s.Actor.UserID, AuditID: s.AuditID}
}

// accumulate extends the latest UPDATED description of the chain with text.
// header is prepended when the chain has no update yet or its last update
// belongs to another record. An unreadable base starts a new description.
func (e *Engine) accumulate(ctx context.Context, s Session, snap Snapshot, header, text string) (string, error) {
	prev, err := s.Store.LatestByAuditID(ctx, s.chain(), models.AuditUpdated)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return header + text, nil
	case err != nil:
		return "", fmt.Errorf("load audit %s: %w", s.AuditID, err)
	}

	base, err := e.cipher.Decrypt(prev.Description)
	if err != nil {
		e.metrics.IncAuditFieldSkipped(string(snap.Entity))
		e.logger.Warn(ctx, "audit base undecryptable, starting new description", "auditId", s.AuditID, "row", prev.ID)
		return header + text, nil
	}
	if kind, id := prev.Entity(); kind == snap.Entity && id == snap.ID {
		return base + lineJoint + text, nil
	}
	return base + lineJoint + header + text, nil
}

// append links a row carrying desc to the end of the session's chain.
func (e *Engine) append(ctx context.Context, s Session, typ models.AuditType, snap Snapshot, desc string) (*models.AuditRecord, error) {
	s = e.bind(s)
	rec := &models.AuditRecord{
		ID:             uuid.NewString(),
		AuditID:        s.AuditID,
		Sequence:       1,
		AuditType:      typ,
		OwnerID:        s.Actor.UserID,
		ModifiedBy:     s.Actor.Email,
		OrganizationID: s.Actor.OrganizationID,
		CreatedAt:      e.now().UTC(),
	}
	if !rec.SetEntity(snap.Entity, snap.ID) {
		return nil, fmt.Errorf("%w: %s is not audited", common.ErrorUnknownEntityType, snap.Entity)
	}

	prev, err := s.Store.LatestByAuditID(ctx, s.chain(), "")
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return nil, fmt.Errorf("load audit %s: %w", rec.AuditID, err)
	default:
		rec.Sequence = prev.Sequence + 1
		rec.PreviousID = prev.ID
	}

	rec.Description, err = e.cipher.Encrypt(desc)
	if err != nil {
		return nil, fmt.Errorf("encrypt audit description: %w", err)
	}

	if err := s.Store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert audit: %w", err)
	}

	e.metrics.IncAuditRecord(string(snap.Entity), string(typ))
	e.logger.Debug(ctx, "audit recorded", "entity", snap.Entity, "id", snap.ID,
		"auditId", rec.AuditID, "type", typ, "sequence", rec.Sequence)
	return rec, nil
}

func (e *Engine) label(ctx context.Context, labels Labeler, kind models.EntityType, id string) (string, error) {
	if id == "" {
		return null, nil
	}
	if labels == nil {
		return id, nil
	}
	l, err := labels.Label(ctx, kind, id)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return id, nil
	case err != nil:
		return "", fmt.Errorf("label %s %s: %w", kind, id, err)
	case l == "":
		return id, nil
	}
	return l, nil
}

// primary is the decrypted display name of snap, falling back to its id.
func (e *Engine) primary(ctx context.Context, snap Snapshot) string {
	name, err := display(e.cipher, snap.Primary)
	if err != nil {
		e.metrics.IncAuditFieldSkipped(string(snap.Entity))
		e.logger.Warn(ctx, "display name undecryptable", "entity", snap.Entity, "id", snap.ID)
		return snap.ID
	}
	if name == "" {
		return snap.ID
	}
	return name
}

func (e *Engine) start(ctx context.Context, typ models.AuditType, snap Snapshot) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "audit.record", trace.WithAttributes(
		attribute.String("entity", string(snap.Entity)),
		attribute.String("type", string(typ)),
	))
}

func line(field, from, to string) string {
	return field + " " + from + arrow + to
}

func orNull(s string) string {
	if s == "" {
		return null
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
