package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/server"
)

func newTestRouter(svc *Service, viewer *auth.Identity) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	if viewer != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithIdentity(req.Context(), *viewer)))
			})
		})
	}
	r.Get("/library-contents", h.List)
	r.Get("/library-contents/search", h.Search)
	r.Get("/library-contents/{id}", h.Get)
	r.Post("/library-contents/{id}/increment-like", h.IncrementLike)
	r.Post("/library-contents/{id}/increment-view", h.IncrementView)
	r.Route("/organizations/{orgId}/library-contents", func(r chi.Router) {
		r.Use(server.RequireOrganization)
		r.Get("/", h.List)
		r.Get("/search", h.Search)
	})
	return r
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string              `json:"code"`
		Details []server.FieldError `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding %s %s response %q: %v", method, target, rec.Body.String(), err)
	}
	return rec, env
}

func decodeSummaries(t *testing.T, env envelope) []EntrySummary {
	t.Helper()
	var out []EntrySummary
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	return out
}

func TestHandler_List(t *testing.T) {
	h := newTestRouter(NewService(libraryFixture(), nil, nil), nil)

	rec, env := do(t, h, http.MethodGet, "/library-contents?category=2&tags=%5B4%5D")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := summaryIDs(decodeSummaries(t, env)); !slices.Equal(got, []int64{1}) {
		t.Errorf("ids = %v, want [1]", got)
	}
}

func TestHandler_List_InvalidIDs(t *testing.T) {
	h := newTestRouter(NewService(libraryFixture(), nil, nil), nil)

	tests := []struct {
		target string
		field  string
	}{
		{"/library-contents?tags=1,abc", "tags"},
		{"/library-contents?subcategories=1.5", "subcategories"},
		{"/library-contents?category=x", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, env := do(t, h, http.MethodGet, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("error = %+v", env.Error)
			}
			if env.Error.Details[0].Field != tt.field {
				t.Errorf("field = %q, want %q", env.Error.Details[0].Field, tt.field)
			}
		})
	}
}

func TestHandler_Search(t *testing.T) {
	h := newTestRouter(NewService(libraryFixture(), nil, nil), nil)

	rec, env := do(t, h, http.MethodGet, "/library-contents/search?query=yoga")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := summaryIDs(decodeSummaries(t, env)); !slices.Equal(got, []int64{5, 9}) {
		t.Errorf("ids = %v, want [5 9]", got)
	}

	rec, env = do(t, h, http.MethodGet, "/library-contents/search")
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Details[0].Field != "query" {
		t.Errorf("missing query: status = %d, error = %+v", rec.Code, env.Error)
	}
}

func TestHandler_Get(t *testing.T) {
	viewer := &auth.Identity{UserID: 42}
	likes := &fakeLikes{liked: map[int64][]int64{42: {9}}}
	h := newTestRouter(NewService(libraryFixture(), likes, nil), viewer)

	rec, env := do(t, h, http.MethodGet, "/library-contents/9")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var detail EntryDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatalf("decoding detail: %v", err)
	}
	if detail.ID != 9 || !detail.LikedByMe {
		t.Errorf("detail = %+v", detail)
	}

	rec, env = do(t, h, http.MethodGet, "/library-contents/404")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("missing entry: status = %d, error = %+v", rec.Code, env.Error)
	}

	rec, _ = do(t, h, http.MethodGet, "/library-contents/-1")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative id: status = %d, want 400", rec.Code)
	}
}

func TestHandler_Counters(t *testing.T) {
	store := libraryFixture()
	h := newTestRouter(NewService(store, nil, nil), nil)

	rec, env := do(t, h, http.MethodPost, "/library-contents/12/increment-like")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var counter struct {
		ID        int64  `json:"id"`
		LikeCount *int64 `json:"likeCount"`
		ViewCount *int64 `json:"viewCount"`
	}
	if err := json.Unmarshal(env.Data, &counter); err != nil {
		t.Fatalf("decoding counter: %v", err)
	}
	if counter.ID != 12 || counter.LikeCount == nil || *counter.LikeCount != 4 || counter.ViewCount != nil {
		t.Errorf("counter = %+v", counter)
	}

	rec, _ = do(t, h, http.MethodPost, "/library-contents/12/increment-view")
	if rec.Code != http.StatusOK {
		t.Errorf("increment-view status = %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/library-contents/404/increment-like")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing entry: status = %d, want 404", rec.Code)
	}
	if store.increments != 2 {
		t.Errorf("increments = %d, want 2", store.increments)
	}
}

func TestHandler_OrganizationScope(t *testing.T) {
	h := newTestRouter(NewService(libraryFixture(), nil, nil), nil)

	rec, env := do(t, h, http.MethodGet, "/organizations/7/library-contents")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := summaryIDs(decodeSummaries(t, env)); !slices.Equal(got, []int64{2}) {
		t.Errorf("ids = %v, want [2]", got)
	}

	rec, env = do(t, h, http.MethodGet, "/organizations/acme/library-contents")
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Details[0].Field != "orgId" {
		t.Errorf("bad org: status = %d, error = %+v", rec.Code, env.Error)
	}
}
