package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type organizationKey struct{}

// RequireOrganization reads the {orgId} URL parameter and stores it in the
// request context. Missing or non-positive ids are rejected with 400.
func RequireOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "orgId")
		orgID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || orgID <= 0 {
			slog.Debug("rejected organization id", "org_id", raw, "path", r.URL.Path)
			Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed",
				[]FieldError{{Field: "orgId", Message: "must be a positive integer organization id"}})
			return
		}

		ctx := context.WithValue(r.Context(), organizationKey{}, orgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrganizationIDFromContext returns the organization id stored by
// RequireOrganization.
func OrganizationIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(organizationKey{}).(int64)
	return id, ok
}
