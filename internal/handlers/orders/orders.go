// Package orders implements the createOrder, pledgeToOrder,
// activeOrdersNear, and orderStatus HTTP handlers, delegating all
// choreography to the Order Engine (C5).
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/dto"
	"github.com/bundl/bundl/internal/engine/orderengine"
	"github.com/bundl/bundl/pkg/auth"
	"github.com/bundl/bundl/pkg/utils"
)

type Engine interface {
	CreateOrder(ctx context.Context, userID string, in orderengine.CreateOrderInput) (*domain.Order, error)
	PledgeToOrder(ctx context.Context, userID, orderID string, amount decimal.Decimal) (*orderengine.PledgeResult, error)
	GetActiveOrdersNear(ctx context.Context, lat, lon, radiusKm float64) ([]*domain.Order, error)
	GetOrderStatus(ctx context.Context, userID, orderID string) (*orderengine.OrderStatusView, error)
}

type Handler struct {
	engine Engine
}

func New(engine Engine) *Handler {
	return &Handler{engine: engine}
}

// CreateOrder godoc
//
//	@Summary		Create a new group order
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.CreateOrderRequestDTO	true	"order details"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.OrderResponseDTO
//	@Failure		402	{object}	utils.Response	"insufficient credits"
//	@Failure		422	{object}	utils.Response	"validation failed"
//	@Router			/orders/createOrder [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(auth.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dto.CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	order, err := h.engine.CreateOrder(r.Context(), userID, orderengine.CreateOrderInput{
		AmountNeeded:  req.AmountNeeded,
		Platform:      req.Platform,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		InitialPledge: req.InitialPledge,
		TTLSeconds:    req.TTLSeconds,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dto.FromOrder(order))
}

// PledgeToOrder godoc
//
//	@Summary		Pledge an amount towards an existing order
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.PledgeToOrderRequestDTO	true	"pledge details"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		402	{object}	utils.Response	"insufficient credits"
//	@Failure		404	{object}	utils.Response	"order not found"
//	@Failure		409	{object}	utils.Response	"order no longer active or already full"
//	@Router			/orders/pledgeToOrder [post]
func (h *Handler) PledgeToOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(auth.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dto.PledgeToOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := h.engine.PledgeToOrder(r.Context(), userID, req.OrderID, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.FromOrder(res.Order))
}

// ActiveOrdersNear godoc
//
//	@Summary		Discover active orders near a location
//	@Tags			Orders
//	@Produce		json
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			radiusKm	query	number	false	"search radius in km"
//	@Security		BearerAuth
//	@Success		200	{array}		dto.OrderResponseDTO
//	@Router			/orders/activeOrders [get]
func (h *Handler) ActiveOrdersNear(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "lat is required")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "lon is required")
		return
	}
	radiusKm, _ := strconv.ParseFloat(r.URL.Query().Get("radiusKm"), 64)

	orders, err := h.engine.GetActiveOrdersNear(r.Context(), lat, lon, radiusKm)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]dto.OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		response = append(response, dto.FromOrder(o))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// OrderStatus godoc
//
//	@Summary		Get the status of an order, redacted to the caller
//	@Tags			Orders
//	@Produce		json
//	@Param			orderId	path	string	true	"order id"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.OrderStatusResponseDTO
//	@Failure		404	{object}	utils.Response
//	@Router			/orders/orderStatus/{orderId} [get]
func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(auth.UserIDKey).(string)
	if !ok || userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	orderID := chi.URLParam(r, "orderId")

	view, err := h.engine.GetOrderStatus(r.Context(), userID, orderID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := dto.OrderStatusResponseDTO{
		Order:      dto.FromOrder(view.Order),
		YourPledge: view.YourPledge,
		PledgeMap:  view.PledgeMap,
		PhoneMap:   view.PhoneMap,
		Note:       view.Note,
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientCredits):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotActive), errors.Is(err, domain.ErrOrderFullyPledged):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
