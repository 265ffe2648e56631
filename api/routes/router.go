package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casedesk/casedesk-backend/api/controllers"
	"github.com/casedesk/casedesk-backend/api/middleware"
	"github.com/casedesk/casedesk-backend/internal/chat"
	"github.com/casedesk/casedesk-backend/internal/complaints"
	"github.com/casedesk/casedesk-backend/internal/identity"
	"github.com/casedesk/casedesk-backend/internal/inventory"
	"github.com/casedesk/casedesk-backend/internal/orders"
	"github.com/casedesk/casedesk-backend/internal/users"
	"github.com/casedesk/casedesk-backend/pkg/config"
	"github.com/casedesk/casedesk-backend/pkg/db"
	"github.com/casedesk/casedesk-backend/pkg/logger"
	"github.com/casedesk/casedesk-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisClient *redis.Client

	Identity   identity.Service
	Users      users.Service
	Complaints complaints.Service
	Chat       chat.Service
	Inventory  inventory.Service
	Orders     orders.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// Without redis the auth endpoints run unthrottled.
	loginLimiter := passthrough
	registerLimiter := passthrough
	if params.RedisClient != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, params.RedisClient, logg)
		registerLimiter = middleware.AuthRateLimit(registerPolicy, params.RedisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(params)))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/user", func(r chi.Router) {
		r.With(registerLimiter).Post("/register", controllers.AuthRegister(params.Identity, logg))
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(params.Identity, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(params.Identity, logg))
		r.Post("/verify-email-and-otp-password", controllers.AuthResetPassword(params.Identity, logg))
		r.Post("/verify-email", controllers.AuthVerifyEmail(params.Identity, logg))
		r.Post("/resend-verification", controllers.AuthResendVerification(params.Identity, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/users", controllers.UsersList(params.Users, logg))
			r.Patch("/profile/update", controllers.UserProfileUpdate(params.Users, logg))
			r.With(middleware.RequireRole(logg, "admin")).
				Delete("/usersof/{userId}", controllers.UserDelete(params.Users, logg))
		})
	})

	r.Route("/api/complaints", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/", controllers.ComplaintCreate(params.Complaints, logg))
		r.Get("/", controllers.ComplaintList(params.Complaints, logg))
		r.Get("/{complaintId}", controllers.ComplaintGet(params.Complaints, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "staff", "admin"))
			r.Put("/{complaintId}/assign", controllers.ComplaintAssign(params.Complaints, logg))
			r.Put("/{complaintId}/status", controllers.ComplaintUpdateStatus(params.Complaints, logg))
			r.Post("/{complaintId}/followup", controllers.ComplaintAddFollowUp(params.Complaints, logg))
		})
	})

	r.Route("/api/chat", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Post("/send", controllers.ChatSend(params.Chat, logg))
		r.Get("/conversation", controllers.ChatConversation(params.Chat, logg))
		r.Get("/conversations/{userId}", controllers.ChatConversationList(params.Chat, logg))
	})

	r.Route("/api/inventory", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/warehouses", controllers.WarehouseList(params.Inventory, logg))
		r.Get("/stores", controllers.StoreList(params.Inventory, logg))
		r.Get("/items", controllers.InventoryList(params.Inventory, logg))
		r.Get("/sales", controllers.SaleList(params.Inventory, logg))
		r.Get("/orders", controllers.OrderList(params.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, "staff", "admin"))

			r.Post("/warehouses", controllers.WarehouseCreate(params.Inventory, logg))
			r.Put("/warehouses/{warehouseId}", controllers.WarehouseUpdate(params.Inventory, logg))
			r.Delete("/warehouses/{warehouseId}", controllers.WarehouseDelete(params.Inventory, logg))
			r.Post("/stores", controllers.StoreCreate(params.Inventory, logg))
			r.Put("/stores/{storeId}", controllers.StoreUpdate(params.Inventory, logg))
			r.Delete("/stores/{storeId}", controllers.StoreDelete(params.Inventory, logg))

			r.Post("/items", controllers.InventoryAdd(params.Inventory, logg))
			r.Delete("/items/{itemId}", controllers.InventoryDelete(params.Inventory, logg))

			r.Post("/transfer", controllers.InventoryTransfer(params.Inventory, logg))
			r.Post("/sale", controllers.SaleRecord(params.Inventory, logg))

			r.Post("/order/request", controllers.OrderRequest(params.Orders, logg))
			r.Put("/order/{orderId}/approve", controllers.OrderApprove(params.Orders, logg))
			r.Put("/order/{orderId}/receive", controllers.OrderReceive(params.Orders, logg))
			r.Put("/order/{orderId}/reject", controllers.OrderReject(params.Orders, logg))
			r.Put("/order/{orderId}/status", controllers.OrderUpdateStatus(params.Orders, logg))
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func readinessDeps(params RouterParams) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if params.DBPinger != nil {
		deps["database"] = params.DBPinger
	}
	if params.RedisClient != nil {
		deps["redis"] = params.RedisClient
	}
	return deps
}
