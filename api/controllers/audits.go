package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/api/middleware"
	"github.com/medvanta/medsupply-backend/api/responses"
	"github.com/medvanta/medsupply-backend/api/validators"
	"github.com/medvanta/medsupply-backend/internal/audit"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// ListCustomerAudits returns the pricing audit trail for one customer.
// Customer-role actors may only read their own trail.
func ListCustomerAudits(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		customerID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "customerId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		role := actorRole(r)
		if role == enums.RoleCustomer {
			own := middleware.CustomerIDFromContext(r.Context())
			if own == "" || own != customerID.String() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another customer's audit trail"))
				return
			}
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseAuditFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByCustomer(r.Context(), customerID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]auditView, 0, len(page.Entries))
		for i := range page.Entries {
			views = append(views, toAuditView(&page.Entries[i]))
		}
		responses.WriteSuccess(w, auditPageView{Entries: views, NextCursor: page.NextCursor})
	}
}

type auditView struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	BasePrice       decimal.Decimal `json:"base_price"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	MarginProtected bool            `json:"margin_protected"`
	AppliedRules    json.RawMessage `json:"applied_rules"`
	PriceDate       time.Time       `json:"price_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

type auditPageView struct {
	Entries    []auditView `json:"entries"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toAuditView(entry *models.PricingAudit) auditView {
	return auditView{
		ID:              entry.ID.String(),
		CustomerID:      entry.CustomerID.String(),
		ProductID:       entry.ProductID.String(),
		Quantity:        entry.Quantity,
		BasePrice:       entry.BasePrice,
		FinalPrice:      entry.FinalPrice,
		MarginProtected: entry.MarginProtected,
		AppliedRules:    entry.AppliedRules,
		PriceDate:       entry.PriceDate,
		CreatedAt:       entry.CreatedAt,
	}
}

func parseAuditFilters(r *http.Request) (audit.Filters, error) {
	var filters audit.Filters

	productID, err := validators.ParseQueryUUID(r, "product_id")
	if err != nil {
		return audit.Filters{}, err
	}
	filters.ProductID = productID

	if raw := strings.TrimSpace(r.URL.Query().Get("margin_protected")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return audit.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid margin_protected flag")
		}
		filters.MarginProtected = &value
	}

	return filters, nil
}
