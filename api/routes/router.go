package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelarde/merchantry-backend/api/controllers"
	"github.com/avelarde/merchantry-backend/api/middleware"
	"github.com/avelarde/merchantry-backend/internal/auth"
	"github.com/avelarde/merchantry-backend/internal/orders"
	"github.com/avelarde/merchantry-backend/internal/organizations"
	"github.com/avelarde/merchantry-backend/internal/products"
	"github.com/avelarde/merchantry-backend/internal/shippings"
	"github.com/avelarde/merchantry-backend/pkg/auth/session"
	"github.com/avelarde/merchantry-backend/pkg/config"
	"github.com/avelarde/merchantry-backend/pkg/db"
	"github.com/avelarde/merchantry-backend/pkg/logger"
	"github.com/avelarde/merchantry-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface: health and metrics endpoints,
// the public auth routes, and the tenant-scoped API behind bearer auth.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	registry *prometheus.Registry,
	authService auth.Service,
	organizationService organizations.Service,
	productService products.Service,
	shippingService shippings.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Post("/api/v1/organizations", controllers.OrganizationCreate(organizationService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/organizations/me", func(r chi.Router) {
			r.Get("/", controllers.OrganizationProfile(organizationService, logg))
			r.Put("/", controllers.OrganizationRename(organizationService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Post("/", controllers.ProductCreate(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(productService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(productService, logg))
		})

		r.Route("/shippings", func(r chi.Router) {
			r.Get("/", controllers.ShippingList(shippingService, logg))
			r.Post("/", controllers.ShippingCreate(shippingService, logg))
			r.Get("/{shippingId}", controllers.ShippingDetail(shippingService, logg))
			r.Put("/{shippingId}", controllers.ShippingUpdate(shippingService, logg))
			r.Put("/{shippingId}/products", controllers.ShippingLinkProducts(shippingService, logg))
			r.Delete("/{shippingId}", controllers.ShippingDelete(shippingService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
			r.Put("/{orderId}", controllers.OrderUpdate(orderService, logg))
			r.Delete("/{orderId}", controllers.OrderDestroy(orderService, logg))
		})
	})

	return r
}
