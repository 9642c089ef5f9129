package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fulluproar/commerce-backend/api/controllers"
	"github.com/fulluproar/commerce-backend/api/middleware"
	"github.com/fulluproar/commerce-backend/internal/identity"
	"github.com/fulluproar/commerce-backend/internal/inventory"
	"github.com/fulluproar/commerce-backend/internal/orders"
	"github.com/fulluproar/commerce-backend/internal/permissions"
	"github.com/fulluproar/commerce-backend/pkg/auth/session"
	"github.com/fulluproar/commerce-backend/pkg/config"
	"github.com/fulluproar/commerce-backend/pkg/db"
	"github.com/fulluproar/commerce-backend/pkg/logger"
	"github.com/fulluproar/commerce-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.Checker,
	identityService *identity.Service,
	inventoryService *inventory.Service,
	ordersService *orders.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewLoginRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(identityService, logg))
		r.Post("/logout", controllers.AuthLogout(identityService, cfg.JWT, logg))
	})

	// Storefront surface: no auth, customers hit these while browsing and
	// checking out.
	r.Route("/api/v1/storefront", func(r chi.Router) {
		r.Post("/availability", controllers.InventoryAvailability(inventoryService, logg))
		r.Post("/stock-levels", controllers.InventoryStockLevels(inventoryService, logg))
		r.Post("/orders", controllers.OrderCreate(ordersService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Get("/me", controllers.PermissionsMe(logg))

		r.With(middleware.RequirePermission(permissions.ResourceUsers, permissions.ActionCreate, logg)).
			Post("/users", controllers.CreateUser(identityService, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequireAdminSection("inventory", logg))
			r.Post("/stock-levels", controllers.InventoryStockLevels(inventoryService, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(inventoryService, logg))
			r.With(middleware.RequirePermission(permissions.ResourceProducts, permissions.ActionUpdate, logg)).
				Put("/stock", controllers.InventorySetStock(inventoryService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequirePermission(permissions.ResourceOrders, permissions.ActionRead, logg)).
				Get("/", controllers.OrderList(ordersService, logg))
			r.With(middleware.RequirePermission(permissions.ResourceOrders, permissions.ActionRead, logg)).
				Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.With(middleware.RequirePermission(permissions.ResourceOrders, permissions.ActionUpdate, logg)).
				Post("/{orderId}/cancel", controllers.OrderCancel(ordersService, logg))
			r.With(middleware.RequirePermission(permissions.ResourceOrders, permissions.ActionUpdate, logg)).
				Post("/{orderId}/pay", controllers.OrderMarkPaid(ordersService, logg))
		})
	})

	return r
}
