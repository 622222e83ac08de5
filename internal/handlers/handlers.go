package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/bundl/bundl/docs"
	authhandlers "github.com/bundl/bundl/internal/handlers/auth"
	billinghandlers "github.com/bundl/bundl/internal/handlers/billing"
	opshandlers "github.com/bundl/bundl/internal/handlers/ops"
	ordershandlers "github.com/bundl/bundl/internal/handlers/orders"
	"github.com/bundl/bundl/internal/platform"
	"github.com/bundl/bundl/pkg/auth"
)

type AuthHandler interface {
	SendCode(w http.ResponseWriter, r *http.Request)
	VerifyCode(w http.ResponseWriter, r *http.Request)
}

type OrderHandler interface {
	CreateOrder(w http.ResponseWriter, r *http.Request)
	PledgeToOrder(w http.ResponseWriter, r *http.Request)
	ActiveOrdersNear(w http.ResponseWriter, r *http.Request)
	OrderStatus(w http.ResponseWriter, r *http.Request)
}

type OpsHandler interface {
	ActiveOrders(w http.ResponseWriter, r *http.Request)
}

type BillingHandler interface {
	IAPReceipt(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler    AuthHandler
	OrderHandler   OrderHandler
	OpsHandler     OpsHandler
	BillingHandler BillingHandler
}

// Dependencies groups every collaborator InitRoutes's handlers need,
// already wired by the application's composition root.
type Dependencies struct {
	OTP            authhandlers.OTPProvider
	Users          authhandlers.UserRepo
	LedgerSeeder   authhandlers.LedgerSeeder
	Tokens         platform.TokenIssuer
	DefaultCredits int
	Engine         ordershandlers.Engine
	Dashboard      opshandlers.Dashboard
	Webhook        billinghandlers.Webhook
}

func New(deps Dependencies) *Handlers {
	return &Handlers{
		AuthHandler:    authhandlers.New(deps.OTP, deps.Users, deps.LedgerSeeder, deps.Tokens, deps.DefaultCredits),
		OrderHandler:   ordershandlers.New(deps.Engine),
		OpsHandler:     opshandlers.New(deps.Dashboard),
		BillingHandler: billinghandlers.New(deps.Webhook),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sendCode", h.AuthHandler.SendCode)
		r.Post("/verifyCode", h.AuthHandler.VerifyCode)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Route("/orders", func(r chi.Router) {
			r.Post("/createOrder", h.OrderHandler.CreateOrder)
			r.Post("/pledgeToOrder", h.OrderHandler.PledgeToOrder)
			r.Get("/activeOrders", h.OrderHandler.ActiveOrdersNear)
			r.Get("/orderStatus/{orderId}", h.OrderHandler.OrderStatus)
		})
	})

	r.Route("/internal/ops", func(r chi.Router) {
		r.Get("/activeOrders", h.OpsHandler.ActiveOrders)
	})

	r.Route("/internal/billing", func(r chi.Router) {
		r.Post("/iapReceipt", h.BillingHandler.IAPReceipt)
	})

	return r
}
