package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pos-backend/api/controllers"
	"github.com/angelmondragon/pos-backend/api/middleware"
	"github.com/angelmondragon/pos-backend/internal/auth"
	products "github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/internal/sales"
	"github.com/angelmondragon/pos-backend/pkg/auth/session"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/pos-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RedisStore is the slice of the redis client the HTTP layer uses for
// idempotency, rate limits and readiness.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	Ping(context.Context) error
}

// Services bundles the domain services behind the API.
type Services struct {
	Auth       auth.Service
	Register   auth.RegisterService
	AdminUsers auth.AdminUserService
	Products   products.Service
	Sales      sales.Service
}

// Observability carries the prometheus wiring. A nil Gatherer serves the
// default registry.
type Observability struct {
	HTTP     *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisStore RedisStore,
	sessionManager sessionManager,
	svc Services,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(obs.HTTP),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "db", Pinger: dbP},
			controllers.ReadinessCheck{Name: "redis", Pinger: redisStore},
		))
	})

	gatherer := obs.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisStore, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisStore, logg)).Post("/register", controllers.AuthRegister(svc.Register, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Get("/me", controllers.AuthMe(svc.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisStore, cfg.Idempotency.TTL, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svc.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Post("/", controllers.CreateProduct(svc.Products, logg))
				r.Put("/{productId}", controllers.UpdateProduct(svc.Products, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(svc.Products, logg))
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleCashier))
			r.Post("/", controllers.CreateSale(svc.Sales, logg))
			r.Get("/", controllers.ListSales(svc.Sales, logg))
			r.Get("/summary", controllers.SalesSummary(svc.Sales, logg))
			r.Get("/{saleId}", controllers.GetSale(svc.Sales, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Post("/users", controllers.AdminCreateUser(svc.AdminUsers, logg))
			r.Get("/users", controllers.AdminListUsers(svc.AdminUsers, logg))
		})
	})

	return r
}
