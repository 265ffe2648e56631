package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casedesk/casedesk-backend/api/middleware"
	"github.com/casedesk/casedesk-backend/api/validators"
	"github.com/casedesk/casedesk-backend/internal/complaints"
	"github.com/casedesk/casedesk-backend/pkg/enums"
	pkgerrors "github.com/casedesk/casedesk-backend/pkg/errors"
	"github.com/casedesk/casedesk-backend/pkg/pagination"
)

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return id, nil
}

func actorFromRequest(r *http.Request) (complaints.Actor, error) {
	id, err := actorID(r)
	if err != nil {
		return complaints.Actor{}, err
	}
	return complaints.Actor{
		UserID: id,
		Role:   enums.UserRole(middleware.RoleFromContext(r.Context())),
	}, nil
}

func paginationFromRequest(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
