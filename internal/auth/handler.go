package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GyroZepelix/library-cms/internal/server"
	"github.com/GyroZepelix/library-cms/internal/validation"
)

// maxRequestBodySize bounds JSON request bodies (1 MiB).
const maxRequestBodySize = 1 << 20

// Handler provides HTTP handlers for authentication endpoints.
type Handler struct {
	service   *Service
	validator *validation.Validator
}

// NewHandler creates a new auth Handler.
func NewHandler(service *Service, validator *validation.Validator) *Handler {
	return &Handler{service: service, validator: validator}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userView `json:"user"`
}

type userView struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	OrganizationID *int64    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

func newUserView(u *User) userView {
	return userView{ID: u.ID, Email: u.Email, OrganizationID: u.OrganizationID, CreatedAt: u.CreatedAt}
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON body", nil)
		return
	}

	if err := h.validator.Validate(req); err != nil {
		var valErr *validation.Error
		if errors.As(err, &valErr) {
			server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", valErr.Fields)
			return
		}
		server.InternalError(w, r, "validating login request", err)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password", nil)
			return
		}
		server.InternalError(w, r, "login failed", err)
		return
	}

	server.JSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        newUserView(user),
	})
}

// Me handles GET /auth/me for an authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated", nil)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "user no longer exists", nil)
			return
		}
		server.InternalError(w, r, "loading current user", err)
		return
	}

	server.JSON(w, http.StatusOK, newUserView(user))
}
