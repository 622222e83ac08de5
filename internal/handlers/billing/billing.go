// Package billing exposes the CreditTopUpWebhook collaborator
// (SPEC_FULL.md §4.7) as an HTTP endpoint for the IAP platform to call.
package billing

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bundl/bundl/internal/dto"
	"github.com/bundl/bundl/internal/platform"
	"github.com/bundl/bundl/pkg/utils"
)

type Webhook interface {
	HandleIAPReceipt(ctx context.Context, payload platform.IAPReceipt) error
}

type Handler struct {
	webhook Webhook
}

func New(webhook Webhook) *Handler {
	return &Handler{webhook: webhook}
}

// IAPReceipt godoc
//
//	@Summary		Credit-top-up webhook delivery from the IAP platform
//	@Tags			Billing
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.IAPReceiptDTO	true	"receipt"
//	@Success		200	{object}	utils.Response
//	@Router			/internal/billing/iapReceipt [post]
func (h *Handler) IAPReceipt(w http.ResponseWriter, r *http.Request) {
	var req dto.IAPReceiptDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == "" || req.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "transactionId and userId are required")
		return
	}

	err := h.webhook.HandleIAPReceipt(r.Context(), platform.IAPReceipt{
		TransactionID: req.TransactionID,
		UserID:        req.UserID,
		Credits:       req.Credits,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "can't process receipt")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "ok"})
}
