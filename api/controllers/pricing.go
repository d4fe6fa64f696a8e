package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/api/middleware"
	"github.com/medvanta/medsupply-backend/api/responses"
	"github.com/medvanta/medsupply-backend/api/validators"
	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/logger"
)

// QuotePrice prices one product for a customer through the waterfall.
func QuotePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := resolveCustomerID(r, payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		priceDate, err := parsePriceDate(payload.PriceDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PriceProduct(r.Context(), pricing.Request{
			CustomerID: customerID,
			ProductID:  productID,
			Quantity:   payload.Quantity,
			PriceDate:  priceDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toQuoteView(result, actorRole(r)))
	}
}

// QuoteBulk prices a batch of products for one customer in a single call.
func QuoteBulk(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload bulkQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := resolveCustomerID(r, payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]pricing.BulkItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			priceDate, err := parsePriceDate(item.PriceDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			items = append(items, pricing.BulkItem{
				ProductID: productID,
				Quantity:  item.Quantity,
				PriceDate: priceDate,
			})
		}

		outcomes, err := svc.PriceBulk(r.Context(), customerID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := actorRole(r)
		views := make([]bulkOutcomeView, len(outcomes))
		for i, outcome := range outcomes {
			views[i] = bulkOutcomeView{ProductID: payload.Items[i].ProductID}
			if outcome.Err != nil {
				views[i].Error = outcomeError(outcome.Err)
				continue
			}
			quote := toQuoteView(outcome.Result, role)
			views[i].Quote = &quote
		}

		responses.WriteSuccess(w, bulkQuoteView{Items: views})
	}
}

type quoteRequest struct {
	CustomerID string  `json:"customer_id,omitempty"`
	ProductID  string  `json:"product_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"min=0"`
	PriceDate  *string `json:"price_date,omitempty"`
}

type bulkQuoteRequest struct {
	CustomerID string            `json:"customer_id,omitempty"`
	Items      []bulkItemRequest `json:"items" validate:"required,min=1,dive"`
}

type bulkItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Quantity  int     `json:"quantity" validate:"min=0"`
	PriceDate *string `json:"price_date,omitempty"`
}

type ruleView struct {
	Order       int             `json:"order"`
	RuleType    string          `json:"rule_type"`
	RuleName    string          `json:"rule_name"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
	Adjustment  decimal.Decimal `json:"adjustment"`
	Explanation string          `json:"explanation"`
}

type quoteView struct {
	ProductID              string           `json:"product_id"`
	BasePrice              decimal.Decimal  `json:"base_price"`
	FinalPrice             decimal.Decimal  `json:"final_price"`
	TotalDiscount          decimal.Decimal  `json:"total_discount"`
	EffectiveMarginPercent *decimal.Decimal `json:"effective_margin_percent,omitempty"`
	MarginProtected        bool             `json:"margin_protected"`
	AppliedRules           []ruleView       `json:"applied_rules"`
}

type bulkQuoteView struct {
	Items []bulkOutcomeView `json:"items"`
}

type bulkOutcomeView struct {
	ProductID string     `json:"product_id"`
	Quote     *quoteView `json:"quote,omitempty"`
	Error     *errorView `json:"error,omitempty"`
}

type errorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toQuoteView renders a waterfall result for the actor. Roles without margin
// visibility never see cost-derived figures: the effective margin is dropped
// and margin guard trail entries lose the floor explanation.
func toQuoteView(result *pricing.Result, role enums.AccountRole) quoteView {
	view := quoteView{
		ProductID:       result.ProductID.String(),
		BasePrice:       result.BasePrice,
		FinalPrice:      result.FinalPrice,
		TotalDiscount:   result.TotalDiscount,
		MarginProtected: result.MarginProtected,
		AppliedRules:    make([]ruleView, 0, len(result.AppliedRules)),
	}
	if role.CanViewMargin() {
		view.EffectiveMarginPercent = result.EffectiveMarginPercent
	}
	for _, rule := range result.AppliedRules {
		mapped := ruleView{
			Order:       rule.Order,
			RuleType:    string(rule.RuleType),
			RuleName:    rule.RuleName,
			PriceBefore: rule.PriceBefore,
			PriceAfter:  rule.PriceAfter,
			Adjustment:  rule.Adjustment,
			Explanation: rule.Explanation,
		}
		if rule.RuleType == enums.PricingRuleMarginProtection && !role.CanViewMargin() {
			mapped.Explanation = "Minimum price enforced"
		}
		view.AppliedRules = append(view.AppliedRules, mapped)
	}
	return view
}

func outcomeError(err error) *errorView {
	view := &errorView{Code: string(pkgerrors.CodeInternal), Message: pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage}
	if typed := pkgerrors.As(err); typed != nil {
		view.Code = string(typed.Code())
		view.Message = pkgerrors.MetadataFor(typed.Code()).PublicMessage
		switch typed.Code() {
		case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
			view.Message = typed.Message()
		}
	}
	return view
}

// resolveCustomerID decides which customer the quote is for. Customer-role
// actors are pinned to their own customer record; staff must name one.
func resolveCustomerID(r *http.Request, requested string) (uuid.UUID, error) {
	role := actorRole(r)
	requested = strings.TrimSpace(requested)

	if role == enums.RoleCustomer {
		own := middleware.CustomerIDFromContext(r.Context())
		if own == "" {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer context missing")
		}
		if requested != "" && requested != own {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot price for another customer")
		}
		id, err := uuid.Parse(own)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
		}
		return id, nil
	}

	if requested == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id required")
	}
	id, err := uuid.Parse(requested)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}
	return id, nil
}

func actorRole(r *http.Request) enums.AccountRole {
	return enums.AccountRole(middleware.RoleFromContext(r.Context()))
}

// parsePriceDate accepts a date or RFC3339 timestamp; nil means price now.
func parsePriceDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price date")
	}
	t = t.UTC()
	return &t, nil
}
