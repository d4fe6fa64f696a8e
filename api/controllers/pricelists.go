package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/api/responses"
	"github.com/medvanta/medsupply-backend/api/validators"
	"github.com/medvanta/medsupply-backend/internal/catalog"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// CreatePriceList handles contract price list creation.
func CreatePriceList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createPriceListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validFrom, err := parsePriceDate(payload.ValidFrom)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		validUntil, err := parsePriceDate(payload.ValidUntil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.CreatePriceList(r.Context(), catalog.CreatePriceListInput{
			Name:        validators.SanitizeString(payload.Name, 200),
			Description: payload.Description,
			Priority:    payload.Priority,
			ValidFrom:   validFrom,
			ValidUntil:  validUntil,
			Tags:        payload.Tags,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toPriceListView(list))
	}
}

// GetPriceList returns one price list with its items.
func GetPriceList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.GetPriceList(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPriceListView(list))
	}
}

// ListPriceLists returns a cursor-paginated price list listing.
func ListPriceLists(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPriceLists(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]priceListView, 0, len(page.PriceLists))
		for i := range page.PriceLists {
			views = append(views, toPriceListView(&page.PriceLists[i]))
		}
		responses.WriteSuccess(w, priceListPageView{PriceLists: views, NextCursor: page.NextCursor})
	}
}

// UpdatePriceList applies a partial update to a price list.
func UpdatePriceList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePriceListRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validFrom, err := parsePriceDate(payload.ValidFrom)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		validUntil, err := parsePriceDate(payload.ValidUntil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.UpdatePriceList(r.Context(), id, catalog.UpdatePriceListInput{
			Name:        payload.Name,
			Description: payload.Description,
			Priority:    payload.Priority,
			IsActive:    payload.IsActive,
			ValidFrom:   validFrom,
			ValidUntil:  validUntil,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPriceListView(list))
	}
}

// UpsertPriceListItem creates or replaces one product override on a list.
func UpsertPriceListItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listID, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload priceListItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		fixedPrice, err := parseOptionalDecimal(payload.FixedPrice, "fixed_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		percentDiscount, err := parseOptionalDecimal(payload.PercentDiscount, "percent_discount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fixedDiscount, err := parseOptionalDecimal(payload.FixedDiscount, "fixed_discount")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		minimumMargin, err := parseOptionalDecimal(payload.MinimumMarginPercent, "minimum_margin_percent")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpsertPriceListItem(r.Context(), listID, catalog.PriceListItemInput{
			ProductID:            productID,
			FixedPrice:           fixedPrice,
			PercentDiscount:      percentDiscount,
			FixedDiscount:        fixedDiscount,
			MinimumMarginPercent: minimumMargin,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toPriceListItemView(item))
	}
}

// RemovePriceListItem deletes one product override from a list.
func RemovePriceListItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listID, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.RemovePriceListItem(r.Context(), listID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AssignCustomer attaches a customer to a price list.
func AssignCustomer(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listID, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload assignCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(strings.TrimSpace(payload.CustomerID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		if err := svc.AssignCustomer(r.Context(), listID, customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "assigned"})
	}
}

// UnassignCustomer detaches a customer from a price list.
func UnassignCustomer(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listID, err := parsePriceListID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "customerId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		if err := svc.UnassignCustomer(r.Context(), listID, customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "unassigned"})
	}
}

type createPriceListRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Priority    int      `json:"priority,omitempty" validate:"omitempty,min=1"`
	ValidFrom   *string  `json:"valid_from,omitempty"`
	ValidUntil  *string  `json:"valid_until,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type updatePriceListRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *int    `json:"priority,omitempty" validate:"omitempty,min=1"`
	IsActive    *bool   `json:"is_active,omitempty"`
	ValidFrom   *string `json:"valid_from,omitempty"`
	ValidUntil  *string `json:"valid_until,omitempty"`
}

type priceListItemRequest struct {
	ProductID            string  `json:"product_id" validate:"required"`
	FixedPrice           *string `json:"fixed_price,omitempty"`
	PercentDiscount      *string `json:"percent_discount,omitempty"`
	FixedDiscount        *string `json:"fixed_discount,omitempty"`
	MinimumMarginPercent *string `json:"minimum_margin_percent,omitempty"`
}

type assignCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

type priceListView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Priority    int                 `json:"priority"`
	Currency    string              `json:"currency"`
	IsActive    bool                `json:"is_active"`
	ValidFrom   *time.Time          `json:"valid_from,omitempty"`
	ValidUntil  *time.Time          `json:"valid_until,omitempty"`
	Tags        []string            `json:"tags"`
	Items       []priceListItemView `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type priceListItemView struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"product_id"`
	FixedPrice           *decimal.Decimal `json:"fixed_price,omitempty"`
	PercentDiscount      *decimal.Decimal `json:"percent_discount,omitempty"`
	FixedDiscount        *decimal.Decimal `json:"fixed_discount,omitempty"`
	MinimumMarginPercent *decimal.Decimal `json:"minimum_margin_percent,omitempty"`
}

type priceListPageView struct {
	PriceLists []priceListView `json:"price_lists"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func toPriceListView(list *models.PriceList) priceListView {
	view := priceListView{
		ID:          list.ID.String(),
		Name:        list.Name,
		Description: list.Description,
		Priority:    list.Priority,
		Currency:    string(list.Currency),
		IsActive:    list.IsActive,
		ValidFrom:   list.ValidFrom,
		ValidUntil:  list.ValidUntil,
		Tags:        append([]string{}, list.Tags...),
		CreatedAt:   list.CreatedAt,
		UpdatedAt:   list.UpdatedAt,
	}
	for i := range list.Items {
		view.Items = append(view.Items, toPriceListItemView(&list.Items[i]))
	}
	return view
}

func toPriceListItemView(item *models.PriceListItem) priceListItemView {
	return priceListItemView{
		ID:                   item.ID.String(),
		ProductID:            item.ProductID.String(),
		FixedPrice:           item.FixedPrice,
		PercentDiscount:      item.PercentDiscount,
		FixedDiscount:        item.FixedDiscount,
		MinimumMarginPercent: item.MinimumMarginPercent,
	}
}

func parsePriceListID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "priceListId")))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price list id")
	}
	return id, nil
}
