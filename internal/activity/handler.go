package activity

import (
	"net/http"
	"strconv"

	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/server"
)

var knownActions = map[string]bool{
	ActionLike:          true,
	ActionUnlike:        true,
	ActionIncrementLike: true,
	ActionIncrementView: true,
}

// Handler serves the caller's activity history.
type Handler struct {
	service *Service
}

// NewHandler creates a new activity Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /activity. Only the caller's own events are returned,
// optionally filtered by action and content id.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		server.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated", nil)
		return
	}

	q := r.URL.Query()
	filters := Filters{ActorID: userID, Action: q.Get("action")}
	if filters.Action != "" && !knownActions[filters.Action] {
		server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
			[]server.FieldError{{Field: "action", Message: "is not a known action"}})
		return
	}
	if v := q.Get("content"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			server.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
				[]server.FieldError{{Field: "content", Message: "must be a positive integer"}})
			return
		}
		filters.ContentID = id
	}

	page, perPage := parsePagination(r)

	entries, total, err := h.service.List(r.Context(), filters, page, perPage)
	if err != nil {
		server.InternalError(w, r, "activity list failed", err)
		return
	}

	server.Paginated(w, entries, server.NewPaginationMeta(page, perPage, total))
}

// parsePagination extracts page and per_page query parameters with defaults.
func parsePagination(r *http.Request) (page, perPage int) {
	page = 1
	perPage = 20

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = min(n, 100)
		}
	}
	return page, perPage
}
