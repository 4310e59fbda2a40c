package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/imagesaver"
	"go.uber.org/zap"
)

// GrantHandler exposes the stored authorization state of sessions.
type GrantHandler struct {
	grants host.GrantStore
	logger *zap.Logger
}

func NewGrantHandler(grants host.GrantStore, logger *zap.Logger) *GrantHandler {
	return &GrantHandler{grants: grants, logger: logger}
}

func (h *GrantHandler) ListGrants(ctx context.Context, req *ListGrantsRequest) (*ListGrantsResponse, error) {
	grants, err := h.grants.List(ctx, req.Session)
	if err != nil {
		h.logger.Error("failed to list grants", zap.String("session", req.Session), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list grants")
	}

	resp := &ListGrantsResponse{}
	resp.Body.Session = req.Session
	resp.Body.Grants = make(map[string]bool, len(grants))

	for scope, granted := range grants {
		resp.Body.Grants[string(scope)] = granted
	}

	return resp, nil
}

func (h *GrantHandler) SetGrant(ctx context.Context, req *SetGrantRequest) (*SetGrantResponse, error) {
	scope := imagesaver.Scope(req.Scope)

	if err := h.grants.Set(ctx, req.Session, scope, req.Body.Granted); err != nil {
		h.logger.Error("failed to set grant",
			zap.String("session", req.Session),
			zap.String("scope", req.Scope),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to set grant")
	}

	resp := &SetGrantResponse{}
	resp.Body.Session = req.Session
	resp.Body.Scope = req.Scope
	resp.Body.Granted = req.Body.Granted

	return resp, nil
}
