// Package utils holds small HTTP response helpers shared by every
// handler, mirroring the teacher's uniform JSON envelope.
package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the uniform error/message envelope every handler falls
// back to when it isn't returning a domain-specific body.
type Response struct {
	Message string `json:"message"`
}

func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("can't encode response body", zap.Error(err))
	}
}

func RespondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, Response{Message: message})
}
