package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/api/middleware"
	"github.com/avelarde/merchantry-backend/api/responses"
	"github.com/avelarde/merchantry-backend/api/validators"
	"github.com/avelarde/merchantry-backend/internal/organizations"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/logger"
)

type createOrganizationRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type renameOrganizationRequest struct {
	Name string `json:"name" validate:"required"`
}

// OrganizationCreate provisions a new tenant.
func OrganizationCreate(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		var body createOrganizationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Create(r.Context(), organizations.CreateOrganizationInput{Code: body.Code, Name: body.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, org)
	}
}

// OrganizationProfile returns the authenticated caller's organization.
func OrganizationProfile(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.GetByID(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

// OrganizationRename updates the caller's organization name.
func OrganizationRename(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "organization service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body renameOrganizationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Rename(r.Context(), orgID, body.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

func organizationIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.OrganizationIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "organization context missing")
	}
	orgID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid organization id")
	}
	return orgID, nil
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return userID, nil
}
