// Package auth implements the phone-verification login flow: send a
// code, verify it, and mint a bearer token for a new or returning user,
// laid out the same way the teacher's handlers/auth package wraps its
// register/login service calls.
package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/dto"
	"github.com/bundl/bundl/internal/platform"
	"github.com/bundl/bundl/pkg/utils"
)

type OTPProvider interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (bool, error)
}

type UserRepo interface {
	FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, phone string) (*domain.User, error)
}

type LedgerSeeder interface {
	Seed(ctx context.Context, userID string, initial int) error
}

type Handler struct {
	otp           OTPProvider
	users         UserRepo
	ledger        LedgerSeeder
	tokens        platform.TokenIssuer
	defaultCredits int
}

func New(otp OTPProvider, users UserRepo, ledger LedgerSeeder, tokens platform.TokenIssuer, defaultCredits int) *Handler {
	return &Handler{otp: otp, users: users, ledger: ledger, tokens: tokens, defaultCredits: defaultCredits}
}

// SendCode godoc
//
//	@Summary		Send a phone verification code
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.SendCodeRequestDTO	true	"phone number"
//	@Success		202	{object}	utils.Response
//	@Router			/auth/sendCode [post]
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req dto.SendCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "phoneNumber is required")
		return
	}
	if err := h.otp.SendCode(r.Context(), req.PhoneNumber); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "can't send verification code")
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, utils.Response{Message: "code sent"})
}

// VerifyCode godoc
//
//	@Summary		Verify a phone code and issue a bearer token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	dto.VerifyCodeRequestDTO	true	"phone number and code"
//	@Success		200	{object}	dto.VerifyCodeResponseDTO
//	@Failure		401	{object}	utils.Response
//	@Router			/auth/verifyCode [post]
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyCodeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" || req.Code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "phoneNumber and code are required")
		return
	}

	ok, err := h.otp.VerifyCode(r.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "can't verify code")
		return
	}
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid or expired code")
		return
	}

	user, err := h.users.FindByPhoneNumber(r.Context(), req.PhoneNumber)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "can't look up user")
		return
	}
	if user == nil {
		user, err = h.users.Create(r.Context(), req.PhoneNumber)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "can't create user")
			return
		}
		if err := h.ledger.Seed(r.Context(), user.ID, h.defaultCredits); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "can't seed credits")
			return
		}
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "can't issue token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dto.VerifyCodeResponseDTO{Token: token, UserID: user.ID})
}
