//go:build integration

package services_test

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/cryptox"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/config"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crmkeeper/internal/server/sequence"
	"github.com/dmitrijs2005/crmkeeper/internal/server/services"
	"github.com/dmitrijs2005/crmkeeper/internal/server/tenants"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	registry  *tenants.Registry
	svc       *services.CRMService
	now       time.Time
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("crm"),
		tcpostgres.WithUsername("crm"),
		tcpostgres.WithPassword("crm"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = c

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TxTimeout = 10 * time.Second

	logger := logging.Nop()
	m := metrics.New(prometheus.NewRegistry())
	rm := repomanager.NewPostgresRepositoryManager()

	cipher, _, err := cryptox.NewFieldCipherFromSecret("integration-secret", "integration-salt")
	s.Require().NoError(err)

	s.now = time.Date(2025, time.September, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return s.now }

	s.registry = tenants.NewRegistry(func(string) string { return dsn }, rm, logger, m)
	s.svc = services.NewCRMService(
		s.registry, rm, cipher,
		sequence.New(logger, m).WithClock(clock),
		audit.NewEngine(cipher, logger, m).WithClock(clock),
		nil, cfg, logger, m,
	).WithClock(clock)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.registry != nil {
		s.NoError(s.registry.Close())
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

// caller returns an identity in a fresh organization so tests never share
// counters.
func (s *PostgresSuite) caller() services.Caller {
	return services.Caller{
		UserID:         uuid.NewString(),
		OrganizationID: "org-" + uuid.NewString(),
		Email:          "ops@example.com",
	}
}

func (s *PostgresSuite) db(orgID string) *sql.DB {
	db, err := s.registry.DB(context.Background(), orgID)
	s.Require().NoError(err)
	return db
}

func (s *PostgresSuite) TestContactLifecycle() {
	ctx := context.Background()
	caller := s.caller()

	c, err := s.svc.CreateContact(ctx, caller, &models.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	s.Require().NoError(err)
	s.Equal("C09250001", c.Code)
	s.Equal("jane@example.com", c.Email)

	var stored string
	err = s.db(caller.OrganizationID).QueryRowContext(ctx, `SELECT email FROM contacts WHERE id = $1`, c.ID).Scan(&stored)
	s.Require().NoError(err)
	s.True(cryptox.IsEncrypted(stored))

	_, err = s.svc.UpdateContact(ctx, caller, c.ID, func(c *models.Contact) error {
		c.FirstName = "Janet"
		return nil
	})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.DeleteContact(ctx, caller, c.ID))

	trail, err := s.svc.AuditTrail(ctx, caller, models.EntityContact, c.ID)
	s.Require().NoError(err)
	s.Require().Len(trail, 3)
	s.Equal("New contact created with name Jane Doe", trail[0].Description)
	s.Equal("Jane Doe contact changed from firstName Jane --> Janet", trail[1].Description)
	s.Equal("Contact Janet Doe deleted", trail[2].Description)
}

func (s *PostgresSuite) TestConcurrentCreatesGetDistinctCodes() {
	ctx := context.Background()
	caller := s.caller()
	const n = 20

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		codes []string
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := s.svc.CreateAccount(ctx, caller, &models.Account{Name: fmt.Sprintf("Account %d", i)})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			codes = append(codes, a.Code)
		}(i)
	}
	wg.Wait()

	s.Require().Empty(errs)
	sort.Strings(codes)
	want := make([]string, n)
	for i := range want {
		want[i] = fmt.Sprintf("A09250%03d", i+1)
	}
	s.Equal(want, codes)
}

func (s *PostgresSuite) TestSeedCountsSoftDeletedRecords() {
	ctx := context.Background()
	caller := s.caller()

	first, err := s.svc.CreateLead(ctx, caller, &models.Lead{FirstName: "Old", LastName: "Lead"})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.DeleteLead(ctx, caller, first.ID))

	_, err = s.db(caller.OrganizationID).ExecContext(ctx,
		`DELETE FROM sequence_counters WHERE organization_id = $1`, caller.OrganizationID)
	s.Require().NoError(err)

	next, err := s.svc.CreateLead(ctx, caller, &models.Lead{FirstName: "New", LastName: "Lead"})
	s.Require().NoError(err)
	s.Equal("L09250002", next.Code)
}

func (s *PostgresSuite) TestStaleCounterIsResynced() {
	ctx := context.Background()
	caller := s.caller()

	for i := 0; i < 3; i++ {
		_, err := s.svc.CreateOpportunity(ctx, caller, &models.Opportunity{Name: fmt.Sprintf("Deal %d", i)})
		s.Require().NoError(err)
	}

	_, err := s.db(caller.OrganizationID).ExecContext(ctx,
		`UPDATE sequence_counters SET value = 1 WHERE organization_id = $1`, caller.OrganizationID)
	s.Require().NoError(err)

	o, err := s.svc.CreateOpportunity(ctx, caller, &models.Opportunity{Name: "Deal 4"})
	s.Require().NoError(err)
	s.Equal("OPP09250004", o.Code)
}

func (s *PostgresSuite) TestOrganizationsAreIsolated() {
	ctx := context.Background()
	a, b := s.caller(), s.caller()

	ca, err := s.svc.CreateContact(ctx, a, &models.Contact{FirstName: "Ann"})
	s.Require().NoError(err)
	cb, err := s.svc.CreateContact(ctx, b, &models.Contact{FirstName: "Bob"})
	s.Require().NoError(err)

	s.Equal("C09250001", ca.Code)
	s.Equal("C09250001", cb.Code)

	_, err = s.svc.GetContact(ctx, b, ca.ID)
	s.Error(err)
}

func (s *PostgresSuite) TestSharedAuditIDStaysInOrganization() {
	ctx := context.Background()
	a, b := s.caller(), s.caller()
	a.AuditID = uuid.NewString()
	b.AuditID = a.AuditID

	secret, err := s.svc.CreateContact(ctx, a, &models.Contact{FirstName: "Secret", LastName: "Alpha"})
	s.Require().NoError(err)
	_, err = s.svc.UpdateContact(ctx, a, secret.ID, func(c *models.Contact) error {
		c.Phone = "+1-555-SECRET"
		return nil
	})
	s.Require().NoError(err)

	bob, err := s.svc.CreateContact(ctx, b, &models.Contact{FirstName: "Bob", LastName: "Beta"})
	s.Require().NoError(err)

	trail, err := s.svc.AuditTrail(ctx, b, models.EntityContact, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(trail, 1)
	s.Equal("New contact created with name Bob Beta", trail[0].Description)
	s.Equal(1, trail[0].Sequence)
}
