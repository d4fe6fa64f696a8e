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
	"github.com/medvanta/medsupply-backend/pkg/enums"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// CreateProduct handles catalog product creation for staff accounts.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toProductView(product, actorRole(r)))
	}
}

// GetProduct returns one product by id.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product, actorRole(r)))
	}
}

// GetProductBySKU returns one product by its SKU.
func GetProductBySKU(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		product, err := svc.GetProductBySKU(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product, actorRole(r)))
	}
}

// UpdateProduct applies a partial product update; a tiers field replaces the
// whole tier set.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "productId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toProductView(product, actorRole(r)))
	}
}

// ListProducts returns a cursor-paginated product listing.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
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

		page, err := svc.ListProducts(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := actorRole(r)
		views := make([]productView, 0, len(page.Products))
		for i := range page.Products {
			views = append(views, toProductView(&page.Products[i], role))
		}
		responses.WriteSuccess(w, productPageView{Products: views, NextCursor: page.NextCursor})
	}
}

type createProductRequest struct {
	SKU                  string        `json:"sku" validate:"required"`
	Name                 string        `json:"name" validate:"required"`
	Description          *string       `json:"description,omitempty"`
	UnitOfMeasure        string        `json:"unit_of_measure,omitempty"`
	BasePrice            string        `json:"base_price" validate:"required"`
	CostBasis            *string       `json:"cost_basis,omitempty"`
	MinimumMarginPercent *string       `json:"minimum_margin_percent,omitempty"`
	Tags                 []string      `json:"tags,omitempty"`
	VolumeTiers          []tierRequest `json:"volume_tiers,omitempty" validate:"omitempty,dive"`
}

type updateProductRequest struct {
	Name                 *string        `json:"name,omitempty"`
	Description          *string        `json:"description,omitempty"`
	UnitOfMeasure        *string        `json:"unit_of_measure,omitempty"`
	BasePrice            *string        `json:"base_price,omitempty"`
	CostBasis            *string        `json:"cost_basis,omitempty"`
	MinimumMarginPercent *string        `json:"minimum_margin_percent,omitempty"`
	Tags                 *[]string      `json:"tags,omitempty"`
	IsActive             *bool          `json:"is_active,omitempty"`
	VolumeTiers          *[]tierRequest `json:"volume_tiers,omitempty" validate:"omitempty,dive"`
}

type tierRequest struct {
	MinQuantity     int     `json:"min_quantity" validate:"required,min=1"`
	MaxQuantity     *int    `json:"max_quantity,omitempty" validate:"omitempty,min=1"`
	UnitPrice       *string `json:"unit_price,omitempty"`
	PercentDiscount *string `json:"percent_discount,omitempty"`
}

func (req createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	basePrice, err := parseDecimal(req.BasePrice, "base_price")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	costBasis, err := parseOptionalDecimal(req.CostBasis, "cost_basis")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	minimumMargin, err := parseOptionalDecimal(req.MinimumMarginPercent, "minimum_margin_percent")
	if err != nil {
		return catalog.CreateProductInput{}, err
	}

	tiers, err := toTierInputs(req.VolumeTiers)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}

	return catalog.CreateProductInput{
		SKU:                  strings.TrimSpace(req.SKU),
		Name:                 validators.SanitizeString(req.Name, 200),
		Description:          validators.SanitizeStringPtr(req.Description, 2000),
		UnitOfMeasure:        strings.TrimSpace(req.UnitOfMeasure),
		BasePrice:            basePrice,
		CostBasis:            costBasis,
		MinimumMarginPercent: minimumMargin,
		Tags:                 req.Tags,
		Tiers:                tiers,
	}, nil
}

func (req updateProductRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Description: validators.SanitizeStringPtr(req.Description, 2000),
		Tags:        req.Tags,
		IsActive:    req.IsActive,
	}
	if req.Name != nil {
		input.Name = validators.SanitizeStringPtr(req.Name, 200)
	}
	if req.UnitOfMeasure != nil {
		unit := strings.TrimSpace(*req.UnitOfMeasure)
		input.UnitOfMeasure = &unit
	}

	var err error
	if input.BasePrice, err = parseOptionalDecimal(req.BasePrice, "base_price"); err != nil {
		return catalog.UpdateProductInput{}, err
	}
	if input.CostBasis, err = parseOptionalDecimal(req.CostBasis, "cost_basis"); err != nil {
		return catalog.UpdateProductInput{}, err
	}
	if input.MinimumMarginPercent, err = parseOptionalDecimal(req.MinimumMarginPercent, "minimum_margin_percent"); err != nil {
		return catalog.UpdateProductInput{}, err
	}

	if req.VolumeTiers != nil {
		tiers, err := toTierInputs(*req.VolumeTiers)
		if err != nil {
			return catalog.UpdateProductInput{}, err
		}
		input.Tiers = &tiers
	}
	return input, nil
}

func toTierInputs(reqs []tierRequest) ([]catalog.TierInput, error) {
	tiers := make([]catalog.TierInput, 0, len(reqs))
	for _, tier := range reqs {
		unitPrice, err := parseOptionalDecimal(tier.UnitPrice, "unit_price")
		if err != nil {
			return nil, err
		}
		percentDiscount, err := parseOptionalDecimal(tier.PercentDiscount, "percent_discount")
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, catalog.TierInput{
			MinQuantity:     tier.MinQuantity,
			MaxQuantity:     tier.MaxQuantity,
			UnitPrice:       unitPrice,
			PercentDiscount: percentDiscount,
		})
	}
	return tiers, nil
}

type productView struct {
	ID                   string           `json:"id"`
	SKU                  string           `json:"sku"`
	Name                 string           `json:"name"`
	Description          *string          `json:"description,omitempty"`
	UnitOfMeasure        string           `json:"unit_of_measure"`
	Currency             string           `json:"currency"`
	BasePrice            decimal.Decimal  `json:"base_price"`
	CostBasis            *decimal.Decimal `json:"cost_basis,omitempty"`
	MinimumMarginPercent *decimal.Decimal `json:"minimum_margin_percent,omitempty"`
	Tags                 []string         `json:"tags"`
	IsActive             bool             `json:"is_active"`
	VolumeTiers          []tierView       `json:"volume_tiers"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type tierView struct {
	ID              string           `json:"id"`
	MinQuantity     int              `json:"min_quantity"`
	MaxQuantity     *int             `json:"max_quantity,omitempty"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	PercentDiscount *decimal.Decimal `json:"percent_discount,omitempty"`
}

type productPageView struct {
	Products   []productView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// toProductView renders a product row for the actor; cost-derived fields are
// only shown to roles with margin visibility.
func toProductView(product *models.Product, role enums.AccountRole) productView {
	view := productView{
		ID:            product.ID.String(),
		SKU:           product.SKU,
		Name:          product.Name,
		Description:   product.Description,
		UnitOfMeasure: product.UnitOfMeasure,
		Currency:      string(product.Currency),
		BasePrice:     product.BasePrice,
		Tags:          append([]string{}, product.Tags...),
		IsActive:      product.IsActive,
		VolumeTiers:   make([]tierView, 0, len(product.VolumeTiers)),
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
	if role.CanViewMargin() {
		view.CostBasis = product.CostBasis
		view.MinimumMarginPercent = product.MinimumMarginPercent
	}
	for _, tier := range product.VolumeTiers {
		view.VolumeTiers = append(view.VolumeTiers, tierView{
			ID:              tier.ID.String(),
			MinQuantity:     tier.MinQuantity,
			MaxQuantity:     tier.MaxQuantity,
			UnitPrice:       tier.UnitPrice,
			PercentDiscount: tier.PercentDiscount,
		})
	}
	return view
}

func parseDecimal(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decimal").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := parseDecimal(*raw, field)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
