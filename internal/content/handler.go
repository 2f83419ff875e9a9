package content

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/server"
	"github.com/GyroZepelix/library-cms/internal/validation"
)

// Handler provides HTTP handlers for the public library endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a new content Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type counterResponse struct {
	ID        int64  `json:"id"`
	LikeCount *int64 `json:"likeCount,omitempty"`
	ViewCount *int64 `json:"viewCount,omitempty"`
}

// List handles GET /library-contents and the organization-scoped variant.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	entries, err := h.service.List(r.Context(), params, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, entries)
}

// Search handles GET /library-contents/search?query=... and the
// organization-scoped variant.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := parseListParams(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	query := r.URL.Query().Get("query")
	entries, err := h.service.Search(r.Context(), query, params, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, entries)
}

// Get handles GET /library-contents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Get(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, entry)
}

// IncrementLike handles POST /library-contents/{id}/increment-like.
func (h *Handler) IncrementLike(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	count, err := h.service.IncrementLikeCount(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, counterResponse{ID: id, LikeCount: &count})
}

// IncrementView handles POST /library-contents/{id}/increment-view.
func (h *Handler) IncrementView(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	count, err := h.service.IncrementViewCount(r.Context(), id, auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, counterResponse{ID: id, ViewCount: &count})
}

// parseListParams reads the attribute filters shared by list and search.
// "subcategories" and "subcategory" are accepted interchangeably.
func parseListParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()

	category, err := ParseID("category", q.Get("category"))
	if err != nil {
		return ListParams{}, err
	}

	subcategories, err := ParseIDSet("subcategories", slices.Concat(q["subcategories"], q["subcategory"]))
	if err != nil {
		return ListParams{}, err
	}

	tags, err := ParseIDSet("tags", q["tags"])
	if err != nil {
		return ListParams{}, err
	}

	params := ListParams{
		CategoryID:     category,
		SubcategoryIDs: subcategories,
		TagIDs:         tags,
	}
	if orgID, ok := server.OrganizationIDFromContext(r.Context()); ok {
		params.OrganizationID = &orgID
	}
	return params, nil
}

// entryID parses the {id} URL parameter, writing a 400 when it is invalid.
func entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			[]server.FieldError{{Field: "id", Message: "must be a positive integer"}})
		return 0, false
	}
	return id, true
}

// handleServiceError maps service-layer errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validation.Error
	if errors.As(err, &valErr) {
		server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", valErr.Fields)
		return
	}
	if errors.Is(err, ErrNotFound) {
		server.Error(w, http.StatusNotFound, "NOT_FOUND", "entry not found", nil)
		return
	}
	server.InternalError(w, r, "content service error", err)
}
