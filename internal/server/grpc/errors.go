package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errInvalidRequest marks malformed request payloads.
var errInvalidRequest = errors.New("invalid request")

// toStatus maps service errors to gRPC statuses. Internal failures carry
// only the generic message.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorInvalidEntity), errors.Is(err, common.ErrorUnknownEntityType), errors.Is(err, errInvalidRequest):
		return status.Error(codes.InvalidArgument, "invalid request")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, common.GenericFailureMessage)
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, common.GenericFailureMessage)
	}
	return status.Error(codes.Internal, common.GenericFailureMessage)
}
