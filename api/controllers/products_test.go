package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medvanta/medsupply-backend/api/middleware"
	"github.com/medvanta/medsupply-backend/internal/catalog"
	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/db/models"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	"github.com/medvanta/medsupply-backend/pkg/pagination"
)

type stubCatalogService struct {
	product *models.Product
	page    *catalog.ProductPage
	err     error

	lastInput  catalog.CreateProductInput
	lastUpdate catalog.UpdateProductInput
	lastSKU    string
}

func (s *stubCatalogService) GetProductPricing(ctx context.Context, productID uuid.UUID) (*pricing.ProductPricing, error) {
	return nil, s.err
}

func (s *stubCatalogService) ListContractCandidates(ctx context.Context, customerID, productID uuid.UUID) ([]pricing.PriceListItem, error) {
	return nil, s.err
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*models.Product, error) {
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubCatalogService) GetProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	s.lastSKU = sku
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*models.Product, error) {
	s.lastUpdate = input
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubCatalogService) ListProducts(ctx context.Context, params pagination.Params) (*catalog.ProductPage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubCatalogService) CreatePriceList(ctx context.Context, input catalog.CreatePriceListInput) (*models.PriceList, error) {
	return nil, s.err
}

func (s *stubCatalogService) GetPriceList(ctx context.Context, id uuid.UUID) (*models.PriceList, error) {
	return nil, s.err
}

func (s *stubCatalogService) ListPriceLists(ctx context.Context, params pagination.Params) (*catalog.PriceListPage, error) {
	return nil, s.err
}

func (s *stubCatalogService) UpdatePriceList(ctx context.Context, id uuid.UUID, input catalog.UpdatePriceListInput) (*models.PriceList, error) {
	return nil, s.err
}

func (s *stubCatalogService) UpsertPriceListItem(ctx context.Context, priceListID uuid.UUID, input catalog.PriceListItemInput) (*models.PriceListItem, error) {
	return nil, s.err
}

func (s *stubCatalogService) RemovePriceListItem(ctx context.Context, priceListID, productID uuid.UUID) error {
	return s.err
}

func (s *stubCatalogService) AssignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	return s.err
}

func (s *stubCatalogService) UnassignCustomer(ctx context.Context, priceListID, customerID uuid.UUID) error {
	return s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	ctx := chi.NewRouteContext()
	ctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func sampleProduct() *models.Product {
	cost := decimal.RequireFromString("60.00")
	return &models.Product{
		ID:            uuid.New(),
		SKU:           "GLV-NTR-M",
		Name:          "Nitrile Exam Gloves (M)",
		UnitOfMeasure: "box",
		Currency:      enums.CurrencyUSD,
		BasePrice:     decimal.RequireFromString("100.00"),
		CostBasis:     &cost,
		Tags:          []string{"gloves"},
		IsActive:      true,
	}
}

func TestCreateProductSuccess(t *testing.T) {
	svc := &stubCatalogService{product: sampleProduct()}
	handler := CreateProduct(svc, nil)

	payload := []byte(`{
		"sku": "GLV-NTR-M",
		"name": "Nitrile Exam Gloves (M)",
		"description": "  Powder-free nitrile gloves, box of 100.  ",
		"base_price": "100.00",
		"cost_basis": "60.00",
		"volume_tiers": [{"min_quantity": 10, "unit_price": "95.00"}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleAdmin)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.SKU != "GLV-NTR-M" {
		t.Fatalf("unexpected sku %q", svc.lastInput.SKU)
	}
	if len(svc.lastInput.Tiers) != 1 || svc.lastInput.Tiers[0].UnitPrice == nil {
		t.Fatal("expected one unit-price tier")
	}
	if svc.lastInput.Description == nil || *svc.lastInput.Description != "Powder-free nitrile gloves, box of 100." {
		t.Fatalf("unexpected description %v", svc.lastInput.Description)
	}

	var envelope struct {
		Data productView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CostBasis == nil {
		t.Fatal("expected cost basis for admin")
	}
}

func TestCreateProductRejectsBadDecimal(t *testing.T) {
	svc := &stubCatalogService{product: sampleProduct()}
	handler := CreateProduct(svc, nil)

	payload := []byte(`{"sku": "X", "name": "Y", "base_price": "not-a-number"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", bytes.NewReader(payload))
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleAdmin)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGetProductBySKUPassesSKUThrough(t *testing.T) {
	product := sampleProduct()
	svc := &stubCatalogService{product: product}
	handler := GetProductBySKU(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/sku/GLV-NTR-M", nil)
	req = withURLParam(req, "sku", "GLV-NTR-M")
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleAdmin)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastSKU != "GLV-NTR-M" {
		t.Fatalf("unexpected sku %q", svc.lastSKU)
	}
}

func TestUpdateProductPartial(t *testing.T) {
	product := sampleProduct()
	svc := &stubCatalogService{product: product}
	handler := UpdateProduct(svc, nil)

	payload := []byte(`{
		"base_price": "110.00",
		"is_active": false,
		"volume_tiers": [{"min_quantity": 20, "percent_discount": "7.5"}]
	}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/products/"+product.ID.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "productId", product.ID.String())
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleAdmin)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUpdate.BasePrice == nil || !svc.lastUpdate.BasePrice.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("unexpected base price %v", svc.lastUpdate.BasePrice)
	}
	if svc.lastUpdate.Name != nil {
		t.Fatal("expected name untouched")
	}
	if svc.lastUpdate.IsActive == nil || *svc.lastUpdate.IsActive {
		t.Fatal("expected is_active false")
	}
	if svc.lastUpdate.Tiers == nil || len(*svc.lastUpdate.Tiers) != 1 || (*svc.lastUpdate.Tiers)[0].PercentDiscount == nil {
		t.Fatalf("unexpected tiers %v", svc.lastUpdate.Tiers)
	}
}

func TestUpdateProductRejectsBadProductID(t *testing.T) {
	svc := &stubCatalogService{product: sampleProduct()}
	handler := UpdateProduct(svc, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/products/not-a-uuid", bytes.NewReader([]byte(`{}`)))
	req = withURLParam(req, "productId", "not-a-uuid")
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleAdmin)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestGetProductHidesCostFromCustomer(t *testing.T) {
	product := sampleProduct()
	svc := &stubCatalogService{product: product}
	handler := GetProduct(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID.String(), nil)
	req = withURLParam(req, "productId", product.ID.String())
	req = req.WithContext(middleware.WithRole(req.Context(), string(enums.RoleCustomer)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data productView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CostBasis != nil {
		t.Fatal("expected cost basis hidden from customer")
	}
	if envelope.Data.BasePrice.IsZero() {
		t.Fatal("expected base price in view")
	}
}
