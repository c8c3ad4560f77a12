package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address   string
	crm       CRM
	logger    logging.Logger
	jwtSecret []byte
}

func NewgGRPCServer(a string, l logging.Logger, crm CRM, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		crm:       crm,
		jwtSecret: []byte(secretKey),
	}, nil
}

// newServer creates the gRPC server with interceptors and the service
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterCRMServiceServer(srv, &handler{crm: s.crm, logger: s.logger})
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
