package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/medvanta/medsupply-backend/pkg/config"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/metrics"
)

// bulk requests fan out across a small worker pool; pricing is CPU-cheap so a
// handful of workers keeps DB round-trips overlapped without flooding the pool.
const bulkConcurrency = 8

// Request asks for one product priced for one customer.
type Request struct {
	CustomerID uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	PriceDate  *time.Time
}

// BulkItem is one entry of a bulk pricing request.
type BulkItem struct {
	ProductID uuid.UUID
	Quantity  int
	PriceDate *time.Time
}

// BulkOutcome pairs a bulk entry with its result or its failure. Outcomes are
// positionally aligned with the request items so callers can correlate them.
type BulkOutcome struct {
	Result *Result
	Err    error
}

// Service runs the pricing waterfall against catalog data and records the
// audit trail for each calculation.
type Service interface {
	PriceProduct(ctx context.Context, req Request) (*Result, error)
	PriceBulk(ctx context.Context, customerID uuid.UUID, items []BulkItem) ([]BulkOutcome, error)
}

type catalogLoader interface {
	GetProductPricing(ctx context.Context, productID uuid.UUID) (*ProductPricing, error)
	ListContractCandidates(ctx context.Context, customerID, productID uuid.UUID) ([]PriceListItem, error)
}

type auditRecorder interface {
	RecordCalculation(ctx context.Context, customerID uuid.UUID, quantity int, priceDate time.Time, result *Result) error
}

type service struct {
	catalog       catalogLoader
	audits        auditRecorder
	pricingMetric *metrics.PricingMetrics
	logg          *logger.Logger
	cfg           config.PricingConfig
}

// NewService builds the pricing service backed by the provided stack.
func NewService(catalog catalogLoader, audits auditRecorder, pricingMetric *metrics.PricingMetrics, logg *logger.Logger, cfg config.PricingConfig) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if audits == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		catalog:       catalog,
		audits:        audits,
		pricingMetric: pricingMetric,
		logg:          logg,
		cfg:           cfg,
	}, nil
}

// PriceProduct prices a single product for a customer at a point in time.
func (s *service) PriceProduct(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	result, err := s.priceProduct(ctx, req)
	s.pricingMetric.ObserveDuration("single", time.Since(started))
	if err != nil {
		s.pricingMetric.IncCalculation("error")
		return nil, err
	}
	s.pricingMetric.IncCalculation("success")
	if result.MarginProtected {
		s.pricingMetric.IncMarginProtected()
	}
	return result, nil
}

func (s *service) priceProduct(ctx context.Context, req Request) (*Result, error) {
	if req.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if req.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if req.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	product, err := s.catalog.GetProductPricing(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.catalog.ListContractCandidates(ctx, req.CustomerID, req.ProductID)
	if err != nil {
		return nil, err
	}

	priceDate := time.Now().UTC()
	if req.PriceDate != nil {
		priceDate = *req.PriceDate
	}

	result, err := CalculatePrice(CalculateInput{
		ProductID:            product.ProductID,
		BasePrice:            product.BasePrice,
		Quantity:             req.Quantity,
		PriceDate:            priceDate,
		CostBasis:            product.CostBasis,
		MinimumMarginPercent: s.minimumMargin(product),
		ContractCandidates:   candidates,
		Tiers:                product.Tiers,
	})
	if err != nil {
		return nil, err
	}

	// Audit persistence must not fail a pricing read; surface the failure in
	// the logs and hand the result back.
	if auditErr := s.audits.RecordCalculation(ctx, req.CustomerID, req.Quantity, priceDate, result); auditErr != nil && s.logg != nil {
		s.logg.Error(ctx, "pricing audit write failed", auditErr)
	}

	return result, nil
}

// PriceBulk prices every item independently and returns outcomes positionally
// aligned with the input. An invalid item produces an item-level error entry;
// only a malformed batch fails the call as a whole.
func (s *service) PriceBulk(ctx context.Context, customerID uuid.UUID, items []BulkItem) ([]BulkOutcome, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bulk request must contain at least one item")
	}
	if max := s.cfg.BulkMaxItems; max > 0 && len(items) > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("bulk request exceeds %d items", max))
	}

	started := time.Now()
	outcomes := make([]BulkOutcome, len(items))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(bulkConcurrency)
	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			result, err := s.priceProduct(groupCtx, Request{
				CustomerID: customerID,
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				PriceDate:  item.PriceDate,
			})
			outcomes[i] = BulkOutcome{Result: result, Err: err}
			return nil
		})
	}
	// Workers never return errors through the group; item failures live in
	// their outcome slot.
	_ = group.Wait()

	s.pricingMetric.ObserveDuration("bulk", time.Since(started))

	var itemErrs error
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			s.pricingMetric.IncCalculation("error")
			itemErrs = multierr.Append(itemErrs, outcome.Err)
			continue
		}
		s.pricingMetric.IncCalculation("success")
		if outcome.Result.MarginProtected {
			s.pricingMetric.IncMarginProtected()
		}
	}
	if itemErrs != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "item_errors", itemErrs.Error()), "bulk pricing completed with item failures")
	}

	return outcomes, nil
}

func (s *service) minimumMargin(product *ProductPricing) *decimal.Decimal {
	if product.MinimumMarginPercent != nil {
		return product.MinimumMarginPercent
	}
	if s.cfg.DefaultMinimumMarginPercent > 0 {
		min := decimal.NewFromFloat(s.cfg.DefaultMinimumMarginPercent)
		return &min
	}
	return nil
}
