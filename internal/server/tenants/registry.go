// Package tenants keeps one database pool per tenant database.
//
// Organizations are mapped to a DSN through a template. Organizations whose
// DSN is the same share one pool, so with no template configured every
// organization lives in the default database. A pool is opened and migrated
// the first time one of its organizations is used and stays open until
// Close.
package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by DB after Close.
var ErrClosed = errors.New("tenant registry closed")

// Migrator brings a freshly opened database to the current schema.
type Migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// openTimeout bounds opening and migrating one tenant database.
var openTimeout = time.Minute

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// Registry maps organizations to their database pools.
type Registry struct {
	dsn      func(orgID string) string
	migrator Migrator
	logger   logging.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	pools  map[string]*sql.DB // by DSN
	orgs   map[string]*sql.DB // by organization
	closed bool
	group  singleflight.Group
}

// NewRegistry builds a registry resolving DSNs with dsn, typically
// config.Config.TenantDSN.
func NewRegistry(dsn func(orgID string) string, m Migrator, l logging.Logger, mt *metrics.Metrics) *Registry {
	return &Registry{
		dsn:      dsn,
		migrator: m,
		logger:   l.With("module", "tenants"),
		metrics:  mt,
		pools:    make(map[string]*sql.DB),
		orgs:     make(map[string]*sql.DB),
	}
}

// DB returns the pool of orgID, opening and migrating it on first use.
func (r *Registry) DB(ctx context.Context, orgID string) (*sql.DB, error) {
	if orgID == "" {
		return nil, fmt.Errorf("%w: missing organization", common.ErrorUnauthorized)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if db, ok := r.orgs[orgID]; ok {
		r.mu.Unlock()
		return db, nil
	}
	r.mu.Unlock()

	dsn := r.dsn(orgID)
	v, err, _ := r.group.Do(dsn, func() (any, error) {
		// Every waiter shares this open, so it is detached from the caller
		// that happened to start it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), openTimeout)
		defer cancel()
		return r.open(ctx, orgID, dsn)
	})
	if err != nil {
		return nil, err
	}
	db := v.(*sql.DB)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.orgs[orgID] = db
	return db, nil
}

func (r *Registry) open(ctx context.Context, orgID, dsn string) (*sql.DB, error) {
	r.mu.Lock()
	if db, ok := r.pools[dsn]; ok {
		r.mu.Unlock()
		return db, nil
	}
	r.mu.Unlock()

	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open tenant database: %w", err)
	}

	if err := r.migrator.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate tenant database: %w", err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = db.Close()
		return nil, ErrClosed
	}
	r.pools[dsn] = db
	n := len(r.pools)
	r.mu.Unlock()

	r.metrics.SetTenantPools(n)
	r.logger.Info(ctx, "tenant database ready", "organization", orgID, "pools", n)
	return db, nil
}

// Close closes every pool. The registry cannot be used afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	pools := make([]*sql.DB, 0, len(r.pools))
	for _, db := range r.pools {
		pools = append(pools, db)
	}
	r.pools = make(map[string]*sql.DB)
	r.orgs = make(map[string]*sql.DB)
	r.mu.Unlock()

	var g errgroup.Group
	for _, db := range pools {
		g.Go(db.Close)
	}
	err := g.Wait()
	r.metrics.SetTenantPools(0)
	return err
}
