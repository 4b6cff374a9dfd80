package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/Nagakninja/Compliance-Guardian/internal/config"
)

// AuthHandler issues API tokens against the configured client credential.
// The expected credential is a single client ID plus a bcrypt hash of its
// secret, read from AUDIT_CLIENT_ID and AUDIT_CLIENT_SECRET_HASH.
type AuthHandler struct {
	credentials *config.CredentialConfig
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(credentials *config.CredentialConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// TokenRequest is the body for POST /auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required,min=8"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// IssueToken verifies the client credential and returns a signed JWT.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		http.Error(w, extractValidationErrors(err), http.StatusBadRequest)
		return
	}

	expectedID := os.Getenv("AUDIT_CLIENT_ID")
	expectedHash := os.Getenv("AUDIT_CLIENT_SECRET_HASH")
	if expectedID == "" || expectedHash == "" {
		http.Error(w, "Token issuance is not configured", http.StatusServiceUnavailable)
		return
	}

	if req.ClientID != expectedID || !h.credentials.VerifySecret(req.ClientSecret, expectedHash) {
		http.Error(w, "invalid client credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(req.ClientID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(TokenResponse{Token: token})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
