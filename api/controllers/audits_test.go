package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/api/middleware"
	"github.com/medvanta/medsupply-backend/internal/audit"
	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

type stubAuditService struct {
	page *audit.Page
	err  error

	lastCustomerID uuid.UUID
	lastFilters    audit.Filters
}

func (s *stubAuditService) RecordCalculation(ctx context.Context, customerID uuid.UUID, quantity int, priceDate time.Time, result *pricing.Result) error {
	return s.err
}

func (s *stubAuditService) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters audit.Filters) (*audit.Page, error) {
	s.lastCustomerID = customerID
	s.lastFilters = filters
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func TestListCustomerAuditsStaff(t *testing.T) {
	customerID := uuid.New()
	entry := models.PricingAudit{
		ID:           uuid.New(),
		CustomerID:   customerID,
		ProductID:    uuid.New(),
		Quantity:     5,
		BasePrice:    decimal.RequireFromString("100.00"),
		FinalPrice:   decimal.RequireFromString("90.00"),
		AppliedRules: json.RawMessage(`[]`),
		PriceDate:    time.Now().UTC(),
	}
	svc := &stubAuditService{page: &audit.Page{Entries: []models.PricingAudit{entry}}}
	handler := ListCustomerAudits(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID.String()+"/pricing-audits?margin_protected=true", nil)
	req = withURLParam(req, "customerId", customerID.String())
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleProvider)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCustomerID != customerID {
		t.Fatalf("expected customer %s got %s", customerID, svc.lastCustomerID)
	}
	if svc.lastFilters.MarginProtected == nil || !*svc.lastFilters.MarginProtected {
		t.Fatal("expected margin_protected filter")
	}

	var envelope struct {
		Data auditPageView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Entries) != 1 {
		t.Fatalf("expected 1 entry got %d", len(envelope.Data.Entries))
	}
}

func TestListCustomerAuditsCustomerPinnedToOwn(t *testing.T) {
	svc := &stubAuditService{page: &audit.Page{}}
	handler := ListCustomerAudits(svc, nil)

	otherCustomer := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+otherCustomer.String()+"/pricing-audits", nil)
	req = withURLParam(req, "customerId", otherCustomer.String())
	ctx := middleware.WithRole(req.Context(), string(enums.RoleCustomer))
	ctx = middleware.WithCustomerID(ctx, uuid.NewString())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
