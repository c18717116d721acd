package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/shopdesk-be/internal/api/handlers"
	"github.com/isdelr/shopdesk-be/internal/auth"
	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/isdelr/shopdesk-be/internal/websocket"
)

// Services bundles what the handlers call into.
type Services struct {
	Accounts    services.AccountServiceProvider
	Invoices    services.InvoiceServiceProvider
	Customers   services.CustomerServiceProvider
	Inventory   services.InventoryServiceProvider
	ShopProfile services.ShopProfileServiceProvider
}

// Options carries the HTTP-level settings.
type Options struct {
	AllowedOrigins []string
	TokenTTL       time.Duration
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options, creds *auth.Credentials, svc Services, hub *websocket.Hub, store handlers.Pinger) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(svc.Accounts, opts.TokenTTL, opts.SecureCookies)
	invoiceHandler := handlers.NewInvoiceHandler(svc.Invoices)
	customerHandler := handlers.NewCustomerHandler(svc.Customers)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory)
	shopProfileHandler := handlers.NewShopProfileHandler(svc.ShopProfile)
	wsHandler := handlers.NewWebSocketHandler(hub, svc.Invoices, opts.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(store)

	// Public routes
	r.Get("/healthz", healthHandler.Check)
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Post("/logout", userHandler.Logout)

	// Everything else needs a valid token
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(creds))

		r.Get("/protected", userHandler.Protected)
		r.Get("/me", userHandler.GetMe)

		r.Route("/api", func(r chi.Router) {
			r.Get("/ws", wsHandler.Serve)

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceHandler.GetAll)
				r.Post("/", invoiceHandler.Create)
				r.Route("/{invoiceId}", func(r chi.Router) {
					r.Get("/", invoiceHandler.Get)
					r.Put("/payment-status", invoiceHandler.UpdatePaymentStatus)
					r.Patch("/mark-paid", invoiceHandler.MarkPaid)
				})
			})
			r.Post("/save-invoice", invoiceHandler.Create)
			r.Get("/get-next-invoice-id", invoiceHandler.NextID)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", customerHandler.GetAll)
				r.Post("/", customerHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", customerHandler.Get)
					r.Put("/", customerHandler.Update)
					r.Delete("/", customerHandler.Delete)
				})
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", inventoryHandler.GetAll)
				r.Post("/", inventoryHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", inventoryHandler.Get)
					r.Put("/", inventoryHandler.Update)
					r.Delete("/", inventoryHandler.Delete)
				})
			})

			r.Get("/shop-profile", shopProfileHandler.Get)
			r.Post("/shop-profile", shopProfileHandler.Save)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Route not found"}` + "\n"))
	})

	return r
}
