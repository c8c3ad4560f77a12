// Package sequence issues human-readable business identifiers such as
// C09250001: prefix, two-digit month, two-digit year, a literal "0" and a
// zero-padded counter that restarts whenever the year changes.
//
// Allocation goes through an atomic counter row keyed by (entity type, year)
// so concurrent creators never receive the same number. When no row exists
// yet the counter is seeded from the most recently created record of that
// type, soft-deleted rows included, so that identifiers issued before the
// counter existed are never reused.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	separator = "0"
	seqWidth  = 3
)

// Store is the persistence the generator needs. Implementations must be
// bound to the caller's transaction.
type Store interface {
	// Increment atomically bumps the counter for (entity, year) and returns
	// the new value, or common.ErrorNotFound when the row does not exist.
	Increment(ctx context.Context, entity models.EntityType, year int) (int64, error)
	// Seed creates or raises the counter so that the returned value is
	// max(current, floor) + 1.
	Seed(ctx context.Context, entity models.EntityType, year int, floor int64) (int64, error)
	// LatestCode returns the identifier of the most recently created record
	// of entity, soft-deleted rows included, or common.ErrorNotFound.
	LatestCode(ctx context.Context, entity models.EntityType) (string, error)
}

// Generator issues identifiers.
type Generator struct {
	now     func() time.Time
	logger  logging.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// New builds a Generator using the wall clock.
func New(logger logging.Logger, m *metrics.Metrics) *Generator {
	return &Generator{
		now:     time.Now,
		logger:  logger.With("module", "sequence"),
		metrics: m,
		tracer:  otel.Tracer("github.com/dmitrijs2005/crmkeeper/internal/server/sequence"),
	}
}

// WithClock returns a copy of g reading the current time from now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	c := *g
	c.now = now
	return &c
}

// Next issues the next identifier for entity.
func (g *Generator) Next(ctx context.Context, store Store, entity models.EntityType) (string, error) {
	return g.issue(ctx, store, entity, false)
}

// Resync re-seeds the counter from the latest stored identifier before
// issuing. Used after an identifier turned out to be taken.
func (g *Generator) Resync(ctx context.Context, store Store, entity models.EntityType) (string, error) {
	return g.issue(ctx, store, entity, true)
}

func (g *Generator) issue(ctx context.Context, store Store, entity models.EntityType, resync bool) (string, error) {
	prefix := entity.Prefix()
	if prefix == "" {
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownEntityType, entity)
	}

	ctx, span := g.tracer.Start(ctx, "sequence.issue", trace.WithAttributes(
		attribute.String("entity", string(entity)),
		attribute.Bool("resync", resync),
	))
	defer span.End()

	now := g.now()

	var (
		seq int64
		err error
	)
	if resync {
		seq, err = g.seed(ctx, store, entity, now)
	} else {
		seq, err = store.Increment(ctx, entity, now.Year())
		if errors.Is(err, common.ErrorNotFound) {
			seq, err = g.seed(ctx, store, entity, now)
		}
	}
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("allocate %s sequence: %w", entity, err)
	}

	code := Format(prefix, now, seq)
	g.metrics.IncIdentifierIssued(string(entity))
	g.logger.Debug(ctx, "identifier issued", "entity", entity, "code", code)
	return code, nil
}

func (g *Generator) seed(ctx context.Context, store Store, entity models.EntityType, now time.Time) (int64, error) {
	latest, err := store.LatestCode(ctx, entity)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return 0, err
	}

	floor := Derive(entity.Prefix(), latest, now) - 1
	g.metrics.IncSequenceResync(string(entity))
	g.logger.Info(ctx, "seeding sequence counter", "entity", entity, "year", now.Year(), "floor", floor)

	return store.Seed(ctx, entity, now.Year(), floor)
}

// Format renders an identifier.
func Format(prefix string, now time.Time, seq int64) string {
	return fmt.Sprintf("%s%02d%02d%s%0*d", prefix, int(now.Month()), now.Year()%100, separator, seqWidth, seq)
}

// Parse splits an identifier into its two-digit year and its sequence.
// Everything after the year is read as one integer, so both the padded form
// (C09250001) and older unpadded codes (C032409) parse.
func Parse(prefix, code string) (year string, seq int64, ok bool) {
	p := len(prefix)
	if len(code) < p+5 || code[:p] != prefix {
		return "", 0, false
	}

	year = code[p+2 : p+4]
	if !digits(code[p:p+4]) || !digits(code[p+4:]) {
		return "", 0, false
	}

	seq, err := strconv.ParseInt(code[p+4:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return year, seq, true
}

// Derive is the read-then-derive rule on its own: given the latest stored
// identifier it returns the sequence the next record of the same year would
// get. A missing, unparseable or previous-year identifier restarts at 1.
func Derive(prefix, latest string, now time.Time) int64 {
	year, seq, ok := Parse(prefix, latest)
	if !ok || year != fmt.Sprintf("%02d", now.Year()%100) {
		return 1
	}
	return seq + 1
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
