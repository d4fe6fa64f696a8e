package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/internal/audit"
	"github.com/medvanta/medsupply-backend/internal/catalog"
	"github.com/medvanta/medsupply-backend/internal/pricing"
	pkgAuth "github.com/medvanta/medsupply-backend/pkg/auth"
	"github.com/medvanta/medsupply-backend/pkg/config"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubPricingService struct{}

func (stubPricingService) PriceProduct(ctx context.Context, req pricing.Request) (*pricing.Result, error) {
	return &pricing.Result{
		ProductID:  req.ProductID,
		BasePrice:  decimal.RequireFromString("100.00"),
		FinalPrice: decimal.RequireFromString("100.00"),
	}, nil
}

func (stubPricingService) PriceBulk(ctx context.Context, customerID uuid.UUID, items []pricing.BulkItem) ([]pricing.BulkOutcome, error) {
	outcomes := make([]pricing.BulkOutcome, len(items))
	for i, item := range items {
		outcomes[i] = pricing.BulkOutcome{Result: &pricing.Result{ProductID: item.ProductID}}
	}
	return outcomes, nil
}

type stubCatalogService struct{}

func (stubCatalogService) GetProductPricing(ctx context.Context, productID uuid.UUID) (*pricing.ProductPricing, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListContractCandidates(ctx context.Context, customerID, productID uuid.UUID) ([]pricing.PriceListItem, error) {
	panic("unimplemented")
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New(), SKU: input.SKU, Name: input.Name, BasePrice: input.BasePrice}, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return &models.Product{ID: id, SKU: "SKU", Name: "Product", IsActive: true}, nil
}

func (stubCatalogService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return &models.Product{ID: uuid.New(), SKU: sku, Name: "Product", IsActive: true}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*models.Product, error) {
	return &models.Product{ID: id, SKU: "SKU", Name: "Product", IsActive: true}, nil
}

func (stubCatalogService) ListProducts(ctx context.Context, params pagination.Params) (*catalog.ProductPage, error) {
	return &catalog.ProductPage{}, nil
}

func (stubCatalogService) CreatePriceList(ctx context.Context, input catalog.CreatePriceListInput) (*models.PriceList, error) {
	panic("unimplemented")
}

func (stubCatalogService) GetPriceList(ctx context.Context, id uuid.UUID) (*models.PriceList, error) {
	panic("unimplemented")
}

func (stubCatalogService) ListPriceLists(ctx context.Context, params pagination.Params) (*catalog.PriceListPage, error) {
	return &catalog.PriceListPage{}, nil
}

func (stubCatalogService) UpdatePriceList(ctx context.Context, id uuid.UUID, input catalog.UpdatePriceListInput) (*models.PriceList, error) {
	panic("unimplemented")
}

func (stubCatalogService) UpsertPriceListItem(ctx context.Context, priceListID uuid.UUID, input catalog.PriceListItemInput) (*models.PriceListItem, error) {
	panic("unimplemented")
}

func (stubCatalogService) RemovePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error {
	return nil
}

func (stubCatalogService) AssignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	return nil
}

func (stubCatalogService) UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	return nil
}

type stubAuditService struct{}

func (stubAuditService) RecordCalculation(ctx context.Context, customerID uuid.UUID, quantity int, priceDate time.Time, result *pricing.Result) error {
	return nil
}

func (stubAuditService) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params, filters audit.Filters) (*audit.Page, error) {
	return &audit.Page{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, registry *prometheus.Registry) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		registry,
		stubPricingService{},
		stubCatalogService{},
		stubAuditService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.AccountRole, customerID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		AccountID:  uuid.New(),
		CustomerID: customerID,
		Role:       role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	registry := prometheus.NewRegistry()
	router := newTestRouter(testConfig(), registry)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestQuoteRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestQuoteSucceedsWithCustomerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	customerID := uuid.New()
	body := `{"product_id":"` + uuid.NewString() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/quote", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, &customerID))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresStaffRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	payload := `{"sku":"SKU-1","name":"Gauze","base_price":"10.00"}`

	customerID := uuid.New()
	asCustomer := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(payload))
	asCustomer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, &customerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asCustomer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	asAdmin := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products", strings.NewReader(payload))
	asAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin, nil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asAdmin)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuditListCustomerPinnedToOwn(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, nil)

	own := uuid.New()
	other := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+other.String()+"/pricing-audits", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, &own))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+own.String()+"/pricing-audits", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer, &own))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
