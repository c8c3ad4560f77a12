package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/server/archive"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
)

// ErrArchiveDisabled is returned by ExportAuditTrail when no archive is
// configured.
var ErrArchiveDisabled = errors.New("audit archive not configured")

// AuditEntry is one decrypted audit row.
type AuditEntry struct {
	ID          string           `json:"id"`
	AuditID     string           `json:"auditId"`
	Sequence    int              `json:"sequence"`
	PreviousID  string           `json:"previousId,omitempty"`
	Type        models.AuditType `json:"auditType"`
	Description string           `json:"description"`
	OwnerID     string           `json:"ownerId"`
	ModifiedBy  string           `json:"modifiedBy"`
	CreatedAt   time.Time        `json:"createdAt"`
}

func (s *CRMService) trail(ctx context.Context, caller Caller, kind models.EntityType, id string) ([]*models.AuditRecord, error) {
	db, err := s.db(ctx, caller)
	if err != nil {
		return nil, err
	}
	recs, err := s.repomanager.Audits(db).ListByEntity(ctx, caller.OrganizationID, kind, id)
	if err != nil {
		return nil, fmt.Errorf("audit trail of %s %s: %w", kind, id, err)
	}
	return recs, nil
}

// AuditTrail returns the audit rows of one record, oldest first, with
// descriptions decrypted. A description that cannot be decrypted is returned
// as stored.
func (s *CRMService) AuditTrail(ctx context.Context, caller Caller, kind models.EntityType, id string) ([]AuditEntry, error) {
	recs, err := s.trail(ctx, caller, kind, id)
	if err != nil {
		return nil, err
	}

	out := make([]AuditEntry, 0, len(recs))
	for _, r := range recs {
		desc, err := s.audit.Describe(r)
		if err != nil {
			s.logger.Warn(ctx, "audit description left encrypted", "entity", kind, "id", id, "audit", r.ID, "error", err)
			s.metrics.IncReadDecryptFailure(string(kind))
			desc = r.Description
		}
		out = append(out, AuditEntry{
			ID:          r.ID,
			AuditID:     r.AuditID,
			Sequence:    r.Sequence,
			PreviousID:  r.PreviousID,
			Type:        r.AuditType,
			Description: desc,
			OwnerID:     r.OwnerID,
			ModifiedBy:  r.ModifiedBy,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// ExportAuditTrail writes the stored rows of one record, descriptions still
// encrypted, to the archive and returns the object key.
func (s *CRMService) ExportAuditTrail(ctx context.Context, caller Caller, kind models.EntityType, id string) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	recs, err := s.trail(ctx, caller, kind, id)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(recs)
	if err != nil {
		return "", fmt.Errorf("encode audit trail: %w", err)
	}

	key := archive.Key(caller.OrganizationID, kind, id, s.now())
	if err := s.archive.Put(ctx, key, body); err != nil {
		return "", fmt.Errorf("export audit trail: %w", err)
	}

	s.logger.Info(ctx, "audit trail exported", "entity", kind, "id", id, "rows", len(recs), "key", key)
	return key, nil
}
