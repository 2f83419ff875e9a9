package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func mustToken(t *testing.T, id Identity) string {
	t.Helper()
	token, err := CreateAccessToken(id, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	return token
}

func TestMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"garbage token", "Bearer not-a-valid-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	token := mustToken(t, Identity{UserID: 9, Email: "reader@example.com"})

	var got Identity
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got.UserID != 9 || got.Email != "reader@example.com" {
		t.Errorf("identity = %+v", got)
	}
}

func TestOptionalMiddleware_Anonymous(t *testing.T) {
	called := false
	handler := OptionalMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if UserIDFromContext(r.Context()) != 0 {
			t.Error("anonymous request should carry no user id")
		}
		if _, ok := IdentityFromContext(r.Context()); ok {
			t.Error("anonymous request should carry no identity")
		}
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	if !called {
		t.Fatal("handler was not called for anonymous request")
	}
}

func TestOptionalMiddleware_WithToken(t *testing.T) {
	token := mustToken(t, Identity{UserID: 3})

	var userID int64
	handler := OptionalMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if userID != 3 {
		t.Errorf("UserIDFromContext = %d, want 3", userID)
	}
}

func TestOptionalMiddleware_InvalidTokenRejected(t *testing.T) {
	handler := OptionalMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer expired.or.bogus")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
