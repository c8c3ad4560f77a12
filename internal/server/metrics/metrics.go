// Package metrics holds the Prometheus instruments of the CRM core.
//
// A nil *Metrics is valid and records nothing, which keeps unit tests free
// of registry plumbing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for identifier allocation, the audit trail
// and tenant pools.
type Metrics struct {
	IdentifiersIssued  *prometheus.CounterVec
	SequenceResyncs    *prometheus.CounterVec
	SequenceCollisions *prometheus.CounterVec
	AuditRecords       *prometheus.CounterVec
	AuditFieldSkipped  *prometheus.CounterVec
	ReadDecryptErrors  *prometheus.CounterVec
	TenantPoolsOpen    prometheus.Gauge
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IdentifiersIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_identifiers_issued_total",
			Help: "Sequential business identifiers issued, by entity type",
		}, []string{"entity"}),
		SequenceResyncs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_sequence_resyncs_total",
			Help: "Counter rows seeded or resynchronised from the latest stored identifier",
		}, []string{"entity"}),
		SequenceCollisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_sequence_collisions_total",
			Help: "Unique violations on freshly issued identifiers",
		}, []string{"entity"}),
		AuditRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_audit_records_total",
			Help: "Audit rows written, by entity type and audit type",
		}, []string{"entity", "type"}),
		AuditFieldSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_audit_fields_skipped_total",
			Help: "Field diff lines dropped because a value could not be decrypted",
		}, []string{"entity"}),
		ReadDecryptErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_read_decrypt_failures_total",
			Help: "Stored values returned as stored because they could not be decrypted on read",
		}, []string{"entity"}),
		TenantPoolsOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "crm_tenant_pools_open",
			Help: "Tenant database pools currently open",
		}),
	}
}

func (m *Metrics) IncIdentifierIssued(entity string) {
	if m == nil {
		return
	}
	m.IdentifiersIssued.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncSequenceResync(entity string) {
	if m == nil {
		return
	}
	m.SequenceResyncs.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncSequenceCollision(entity string) {
	if m == nil {
		return
	}
	m.SequenceCollisions.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncAuditRecord(entity, auditType string) {
	if m == nil {
		return
	}
	m.AuditRecords.WithLabelValues(entity, auditType).Inc()
}

func (m *Metrics) IncAuditFieldSkipped(entity string) {
	if m == nil {
		return
	}
	m.AuditFieldSkipped.WithLabelValues(entity).Inc()
}

func (m *Metrics) IncReadDecryptFailure(entity string) {
	if m == nil {
		return
	}
	m.ReadDecryptErrors.WithLabelValues(entity).Inc()
}

func (m *Metrics) SetTenantPools(n int) {
	if m == nil {
		return
	}
	m.TenantPoolsOpen.Set(float64(n))
}
