package grpc

import (
	"context"

	"github.com/dmitrijs2005/crmkeeper/internal/common"
	"github.com/dmitrijs2005/crmkeeper/internal/logging"
	"github.com/dmitrijs2005/crmkeeper/internal/server/auth"
	"github.com/dmitrijs2005/crmkeeper/internal/server/models"
	"github.com/dmitrijs2005/crmkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type handler struct {
	crm    CRM
	logger logging.Logger
}

func (h *handler) caller(ctx context.Context) (services.Caller, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return services.Caller{}, common.ErrorUnauthorized
	}
	return services.CallerFromClaims(claims, auditIDFrom(ctx)), nil
}

// fail logs err and converts it to a status.
func (h *handler) fail(ctx context.Context, method string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		h.logger.Error(ctx, "request failed", "method", method, "error", err.Error())
	} else {
		h.logger.Debug(ctx, "request rejected", "method", method, "error", err.Error())
	}
	return st
}

func (h *handler) target(ctx context.Context, req *structpb.Struct, needID bool) (services.Caller, models.EntityType, entityOps, string, error) {
	c, err := h.caller(ctx)
	if err != nil {
		return c, "", entityOps{}, "", err
	}
	kind, err := entityType(req)
	if err != nil {
		return c, "", entityOps{}, "", err
	}
	ops, _ := opsFor(h.crm, kind)
	var id string
	if needID {
		if id, err = requiredID(req); err != nil {
			return c, "", entityOps{}, "", err
		}
	}
	return c, kind, ops, id, nil
}

func unsupported(kind models.EntityType, op string) error {
	return status.Errorf(codes.Unimplemented, "%s is not supported for %s", op, kind)
}

func (h *handler) CreateEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, kind, ops, _, err := h.target(ctx, req, false)
	if err != nil {
		return nil, h.fail(ctx, "CreateEntity", err)
	}
	if ops.create == nil {
		return nil, unsupported(kind, "create")
	}
	body, err := fieldsJSON(req)
	if err != nil {
		return nil, h.fail(ctx, "CreateEntity", err)
	}
	out, err := ops.create(ctx, c, body)
	if err != nil {
		return nil, h.fail(ctx, "CreateEntity", err)
	}
	return h.respond(ctx, "CreateEntity", "entity", out)
}

func (h *handler) UpdateEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, kind, ops, id, err := h.target(ctx, req, true)
	if err != nil {
		return nil, h.fail(ctx, "UpdateEntity", err)
	}
	if ops.update == nil {
		return nil, unsupported(kind, "update")
	}
	body, err := fieldsJSON(req)
	if err != nil {
		return nil, h.fail(ctx, "UpdateEntity", err)
	}
	out, err := ops.update(ctx, c, id, body)
	if err != nil {
		return nil, h.fail(ctx, "UpdateEntity", err)
	}
	return h.respond(ctx, "UpdateEntity", "entity", out)
}

func (h *handler) DeleteEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, kind, ops, id, err := h.target(ctx, req, true)
	if err != nil {
		return nil, h.fail(ctx, "DeleteEntity", err)
	}
	if ops.remove == nil {
		return nil, unsupported(kind, "delete")
	}
	if err := ops.remove(ctx, c, id); err != nil {
		return nil, h.fail(ctx, "DeleteEntity", err)
	}
	return h.respond(ctx, "DeleteEntity", "deleted", id)
}

func (h *handler) GetEntity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, _, ops, id, err := h.target(ctx, req, true)
	if err != nil {
		return nil, h.fail(ctx, "GetEntity", err)
	}
	out, err := ops.get(ctx, c, id)
	if err != nil {
		return nil, h.fail(ctx, "GetEntity", err)
	}
	return h.respond(ctx, "GetEntity", "entity", out)
}

func (h *handler) ListAuditTrail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, kind, _, id, err := h.target(ctx, req, true)
	if err != nil {
		return nil, h.fail(ctx, "ListAuditTrail", err)
	}
	entries, err := h.crm.AuditTrail(ctx, c, kind, id)
	if err != nil {
		return nil, h.fail(ctx, "ListAuditTrail", err)
	}
	if entries == nil {
		entries = []services.AuditEntry{}
	}
	return h.respond(ctx, "ListAuditTrail", "entries", entries)
}

func (h *handler) ExportAuditTrail(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, kind, _, id, err := h.target(ctx, req, true)
	if err != nil {
		return nil, h.fail(ctx, "ExportAuditTrail", err)
	}
	key, err := h.crm.ExportAuditTrail(ctx, c, kind, id)
	if err != nil {
		return nil, h.fail(ctx, "ExportAuditTrail", err)
	}
	return h.respond(ctx, "ExportAuditTrail", "key", key)
}

func (h *handler) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": "OK"})
}

func (h *handler) respond(ctx context.Context, method, key string, v any) (*structpb.Struct, error) {
	out, err := wrap(key, v)
	if err != nil {
		return nil, h.fail(ctx, method, err)
	}
	return out, nil
}
