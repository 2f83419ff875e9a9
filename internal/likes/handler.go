package likes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/server"
	"github.com/GyroZepelix/library-cms/internal/validation"
)

// orgQueryParams are the accepted spellings of the organization query
// parameter.
var orgQueryParams = []string{"organisationId", "organizationId"}

// Handler provides HTTP handlers for user likes.
type Handler struct {
	service *Service
}

// NewHandler creates a new likes Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type likeResponse struct {
	Like      *Like `json:"like"`
	LikeCount int64 `json:"likeCount"`
}

type unlikeResponse struct {
	Message   string `json:"message"`
	LikeCount int64  `json:"likeCount"`
}

type mineResponse struct {
	ContentIDs []int64 `json:"contentIds"`
}

// Like handles POST /user-likes/contents/{contentId}/like and
// POST /user-likes/organizations/{orgId}/contents/{contentId}/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	target, err := parseTarget(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	like, count, err := h.service.Like(r.Context(), target)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusCreated, likeResponse{Like: like, LikeCount: count})
}

// Unlike handles DELETE /user-likes/contents/{contentId}/unlike and the
// organization path variant.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	target, err := parseTarget(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	count, err := h.service.Unlike(r.Context(), target)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, unlikeResponse{Message: "Content unliked", LikeCount: count})
}

// Mine handles GET /user-likes/me.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.LikedContentIDs(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, mineResponse{ContentIDs: ids})
}

// parseTarget builds the like target from the caller identity, the
// {contentId} URL parameter and the organization. The organization comes
// from the {orgId} path segment, then the query string, then the caller's
// token.
func parseTarget(r *http.Request) (Target, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return Target{}, ErrUnauthenticated
	}

	contentID, err := strconv.ParseInt(chi.URLParam(r, "contentId"), 10, 64)
	if err != nil || contentID <= 0 {
		return Target{}, validation.NewError("contentId", "must be a positive integer")
	}

	target := Target{UserID: identity.UserID, ContentID: contentID, OrganizationID: identity.OrganizationID}

	if orgID, ok := server.OrganizationIDFromContext(r.Context()); ok {
		target.OrganizationID = &orgID
		return target, nil
	}

	for _, name := range orgQueryParams {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		orgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || orgID <= 0 {
			return Target{}, validation.NewError(name, "must be a positive integer organization id")
		}
		target.OrganizationID = &orgID
		break
	}

	return target, nil
}

// handleServiceError maps likes errors to HTTP responses. Conflicts are 400.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validation.Error
	switch {
	case errors.As(err, &valErr):
		server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", valErr.Fields)
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrUserNotFound):
		server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated", nil)
	case errors.Is(err, ErrContentNotFound):
		server.Error(w, http.StatusNotFound, "NOT_FOUND", "entry not found", nil)
	case errors.Is(err, ErrOrganizationNotFound):
		server.Error(w, http.StatusNotFound, "NOT_FOUND", "organization not found", nil)
	case errors.Is(err, ErrAlreadyLiked):
		server.Error(w, http.StatusBadRequest, "CONFLICT", "You have already liked this content", nil)
	case errors.Is(err, ErrNotLiked):
		server.Error(w, http.StatusBadRequest, "CONFLICT", "You have not liked this content", nil)
	default:
		server.InternalError(w, r, "likes service error", err)
	}
}
