// Package server initializes and runs the CRM server: the public gRPC API
// and the operational HTTP endpoint, over per-tenant Postgres pools.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/crmkeeper/internal/cryptox"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/archive"
	"github.com/dmitrijs2005/crmkeeper/internal/server/audit"
	"github.com/dmitrijs2005/crmkeeper/internal/server/config"
	"github.com/dmitrijs2005/crmkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/crmkeeper/internal/server/ops"
	"github.com/dmitrijs2005/crmkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/crmkeeper/internal/server/sequence"
	"github.com/dmitrijs2005/crmkeeper/internal/server/services"
	"github.com/dmitrijs2005/crmkeeper/internal/server/tenants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/crmkeeper/internal/server/grpc"
)

// ErrVerifierMismatch means the configured cipher secret does not derive the
// configured key verifier.
var ErrVerifierMismatch = errors.New("cipher secret does not match verifier")

type App struct {
	config   *config.Config
	logger   logging.Logger
	registry *prometheus.Registry
	tenants  *tenants.Registry
	crm      *services.CRMService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, parseLevel(c.LogLevel))

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cipher, verifier, err := cryptox.NewFieldCipherFromSecret(c.CipherSecret, c.CipherSalt)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}
	if c.CipherVerifier != "" && c.CipherVerifier != hex.EncodeToString(verifier) {
		return nil, ErrVerifierMismatch
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	rm := repomanager.NewPostgresRepositoryManager()
	tr := tenants.NewRegistry(c.TenantDSN, rm, logger, m)

	var arch services.Archiver
	if c.S3Bucket != "" {
		a, err := archive.NewS3Archive(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		arch = a
	}

	crm := services.NewCRMService(tr, rm, cipher, sequence.New(logger, m), audit.NewEngine(cipher, logger, m), arch, c, logger, m)

	return &App{config: c, logger: logger, registry: registry, tenants: tr, crm: crm}, nil
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or a server fails, then
// closes the tenant pools.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	grpcServer, err := gs.NewgGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.crm, app.config.SecretKey)
	if err != nil {
		return err
	}
	opsServer := ops.NewServer(app.config.EndpointAddrOps, app.logger, app.registry)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return opsServer.Run(ctx) })

	runErr := g.Wait()
	if err := app.tenants.Close(); err != nil {
		app.logger.Error(ctx, "closing tenant pools", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
