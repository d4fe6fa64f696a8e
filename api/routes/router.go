package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medvanta/medsupply-backend/api/controllers"
	"github.com/medvanta/medsupply-backend/api/middleware"
	"github.com/medvanta/medsupply-backend/internal/audit"
	"github.com/medvanta/medsupply-backend/internal/catalog"
	"github.com/medvanta/medsupply-backend/internal/pricing"
	"github.com/medvanta/medsupply-backend/pkg/config"
	"github.com/medvanta/medsupply-backend/pkg/enums"
	"github.com/medvanta/medsupply-backend/pkg/logger"
	"github.com/medvanta/medsupply-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface: health probes, metrics, the pricing
// quote endpoints, and the staff-facing catalog administration routes.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient controllers.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	pricingService pricing.Service,
	catalogService catalog.Service,
	auditService audit.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	limit := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(policy, redisClient, logg)
	}
	quotePolicy := middleware.NewRateLimitPolicy(
		"quote",
		cfg.RateLimit.PricingWindow,
		cfg.RateLimit.PricingIPLimit,
	)
	bulkPolicy := middleware.NewRateLimitPolicy(
		"bulk",
		cfg.RateLimit.BulkWindow,
		cfg.RateLimit.BulkIPLimit,
	)

	readiness := map[string]controllers.Pinger{}
	if dbClient != nil {
		readiness["database"] = dbClient
	}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/pricing", func(r chi.Router) {
			r.With(limit(quotePolicy)).Post("/quote", controllers.QuotePrice(pricingService, logg))
			r.With(limit(bulkPolicy)).Post("/quote/bulk", controllers.QuoteBulk(pricingService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/sku/{sku}", controllers.GetProductBySKU(catalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(catalogService, logg))
		})

		r.Get("/customers/{customerId}/pricing-audits", controllers.ListCustomerAudits(auditService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAnyRole([]string{
			string(enums.RoleAdmin),
			string(enums.RoleProvider),
		}, logg))

		r.Post("/products", controllers.CreateProduct(catalogService, logg))
		r.Patch("/products/{productId}", controllers.UpdateProduct(catalogService, logg))

		r.Route("/price-lists", func(r chi.Router) {
			r.Post("/", controllers.CreatePriceList(catalogService, logg))
			r.Get("/", controllers.ListPriceLists(catalogService, logg))
			r.Route("/{priceListId}", func(r chi.Router) {
				r.Get("/", controllers.GetPriceList(catalogService, logg))
				r.Patch("/", controllers.UpdatePriceList(catalogService, logg))
				r.Put("/items", controllers.UpsertPriceListItem(catalogService, logg))
				r.Delete("/items/{productId}", controllers.RemovePriceListItem(catalogService, logg))
				r.Post("/assignments", controllers.AssignCustomer(catalogService, logg))
				r.Delete("/assignments/{customerId}", controllers.UnassignCustomer(catalogService, logg))
			})
		})
	})

	return r
}
