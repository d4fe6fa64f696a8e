package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	pkgerrors "github.com/medvanta/medsupply-backend/pkg/errors"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

// Service records finished pricing calculations and serves the audit trail.
type Service interface {
	RecordCalculation(ctx context.Context, customerID uuid.UUID, quantity int, priceDate time.Time, result *pricing.Result) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*Page, error)
}

type service struct {
	repo Repository
}

// NewService builds the audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordCalculation(ctx context.Context, customerID uuid.UUID, quantity int, priceDate time.Time, result *pricing.Result) error {
	if result == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "result required")
	}

	trail, err := json.Marshal(result.AppliedRules)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode rule trail")
	}

	entry := &models.PricingAudit{
		CustomerID:      customerID,
		ProductID:       result.ProductID,
		Quantity:        quantity,
		BasePrice:       result.BasePrice,
		FinalPrice:      result.FinalPrice,
		MarginProtected: result.MarginProtected,
		AppliedRules:    trail,
		PriceDate:       priceDate,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist pricing audit")
	}
	return nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters Filters) (*Page, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	page, err := s.repo.ListByCustomer(ctx, customerID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing audits")
	}
	return page, nil
}
