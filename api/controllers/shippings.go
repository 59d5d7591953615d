package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avelarde/merchantry-backend/api/responses"
	"github.com/avelarde/merchantry-backend/api/validators"
	"github.com/avelarde/merchantry-backend/internal/shippings"
	pkgerrors "github.com/avelarde/merchantry-backend/pkg/errors"
	"github.com/avelarde/merchantry-backend/pkg/logger"
	"github.com/avelarde/merchantry-backend/pkg/money"
)

type shippingRequest struct {
	Code     string      `json:"code" validate:"required"`
	Name     string      `json:"name" validate:"required"`
	FixedFee money.Money `json:"fixed_fee"`
	UnitFee  money.Money `json:"unit_fee"`
	Zones    []string    `json:"zones,omitempty"`
}

func (req shippingRequest) toInput() shippings.ShippingInput {
	return shippings.ShippingInput{
		Code:     req.Code,
		Name:     req.Name,
		FixedFee: req.FixedFee,
		UnitFee:  req.UnitFee,
		Zones:    req.Zones,
	}
}

type linkProductsRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,dive,uuid"`
}

// ShippingCreate registers a shipping method in the caller's organization.
func ShippingCreate(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shippingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipping, err := svc.Create(r.Context(), orgID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, shipping)
	}
}

// ShippingDetail fetches one shipping method scoped to the caller's organization.
func ShippingDetail(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipping, err := svc.GetByID(r.Context(), id, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipping)
	}
}

// ShippingList returns a cursor page of the organization's shipping methods.
func ShippingList(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), orgID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items":       list,
			"next_cursor": next,
		})
	}
}

// ShippingUpdate replaces a shipping method's fields.
func ShippingUpdate(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body shippingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipping, err := svc.Update(r.Context(), id, orgID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipping)
	}
}

// ShippingLinkProducts replaces the set of products a shipping method applies to.
func ShippingLinkProducts(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body linkProductsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productIDs := make([]uuid.UUID, 0, len(body.ProductIDs))
		for _, raw := range body.ProductIDs {
			pid, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			productIDs = append(productIDs, pid)
		}

		shipping, err := svc.LinkProducts(r.Context(), id, orgID, productIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipping)
	}
}

// ShippingDelete removes a shipping method from the caller's organization.
func ShippingDelete(svc shippings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		orgID, err := organizationIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := parsePathID(r, "shippingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, orgID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
