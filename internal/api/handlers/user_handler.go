package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/isdelr/shopdesk-be/internal/auth"
	"github.com/isdelr/shopdesk-be/internal/models"
	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles registration, login and the account of the caller.
type UserHandler struct {
	service       services.AccountServiceProvider
	tokenTTL      time.Duration
	secureCookies bool
}

// NewUserHandler creates a new UserHandler. tokenTTL sets the lifetime of
// the login cookie; secureCookies marks it Secure outside development.
func NewUserHandler(service services.AccountServiceProvider, tokenTTL time.Duration, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, tokenTTL: tokenTTL, secureCookies: secureCookies}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type loginResponse struct {
	Message string                `json:"message"`
	Token   string                `json:"token"`
	User    models.AccountSummary `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	_, token, err := h.service.Register(r.Context(), services.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			log.Info().Str("email", payload.Email).Msg("Registration for existing email rejected")
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		writeError(w, err, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Message: "User registered successfully", Token: token})
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	account, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		writeError(w, err, "Failed to log in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    token,
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    account.Summary(),
	})
}

// Logout clears the login cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	writeMessage(w, http.StatusOK, "Logged out")
}

// GetMe retrieves the currently authenticated account.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve account id from context")
		writeMessage(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	account, err := h.service.GetAccountByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to load account")
		return
	}
	writeJSON(w, http.StatusOK, account.Summary())
}

// Protected confirms that the caller presented a valid token.
func (h *UserHandler) Protected(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.AccountIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "This is a protected route",
		"accountId": id,
	})
}
