// Package ops implements the read-only operations dashboard endpoint
// (SPEC_FULL.md §6 expansion): active orders with no participant PII.
package ops

import (
	"context"
	"net/http"

	"github.com/bundl/bundl/internal/platform"
	"github.com/bundl/bundl/pkg/utils"
)

type Dashboard interface {
	ListActiveOrdersForOps(ctx context.Context) ([]platform.OrderSummary, error)
}

type Handler struct {
	dashboard Dashboard
}

func New(dashboard Dashboard) *Handler {
	return &Handler{dashboard: dashboard}
}

// ActiveOrders godoc
//
//	@Summary		List active orders for ops (no participant PII)
//	@Tags			Ops
//	@Produce		json
//	@Success		200	{array}	platform.OrderSummary
//	@Router			/internal/ops/activeOrders [get]
func (h *Handler) ActiveOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.dashboard.ListActiveOrdersForOps(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summaries)
}
