package grpc

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/server/auth"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const auditIDKey ctxKey = "auditID"

// accessTokenInterceptor authenticates every call but Ping and tags the
// context with the caller's claims and the audit id of the request.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == pingMethod {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)

	accessToken := firstValue(md, common.AccessTokenHeaderName)
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := auth.ParseToken(accessToken, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "method", info.FullMethod, "error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	auditID := firstValue(md, common.AuditIDHeaderName)
	if auditID == "" {
		auditID = uuid.NewString()
	} else if _, err := uuid.Parse(auditID); err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid audit id")
	}

	ctx = auth.NewContext(ctx, claims)
	ctx = context.WithValue(ctx, auditIDKey, auditID)

	return handler(ctx, req)
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func auditIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(auditIDKey).(string)
	return id
}
