package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GyroZepelix/library-cms/internal/validation"
)

type fakeUsers struct {
	byEmail map[string]*User
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*User, error) {
	if u, ok := f.byEmail[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func newFakeUsers(t *testing.T) *fakeUsers {
	t.Helper()
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &fakeUsers{byEmail: map[string]*User{
		"reader@example.com": {ID: 5, Email: "reader@example.com", PasswordHash: hash, OrganizationID: int64Ptr(2)},
	}}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	ok, err := VerifyPassword(hash, "s3cret-pass")
	if err != nil || !ok {
		t.Fatalf("VerifyPassword(correct) = %v, %v", ok, err)
	}
	ok, err = VerifyPassword(hash, "wrong")
	if err != nil || ok {
		t.Fatalf("VerifyPassword(wrong) = %v, %v", ok, err)
	}
}

func TestService_Login(t *testing.T) {
	svc := NewService(newFakeUsers(t), testSecret, time.Minute)

	token, user, err := svc.Login(context.Background(), "Reader@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 5 {
		t.Errorf("user.ID = %d, want 5", user.ID)
	}

	id, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if id.UserID != 5 || id.OrganizationID == nil || *id.OrganizationID != 2 {
		t.Errorf("identity = %+v", id)
	}
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc := NewService(newFakeUsers(t), testSecret, time.Minute)

	tests := []struct {
		name, email, password string
	}{
		{"unknown email", "nobody@example.com", "correct horse"},
		{"wrong password", "reader@example.com", "battery staple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	h := NewHandler(NewService(newFakeUsers(t), testSecret, time.Minute), validation.New())

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"ok", `{"email":"reader@example.com","password":"correct horse"}`, http.StatusOK},
		{"bad json", `{`, http.StatusBadRequest},
		{"invalid email", `{"email":"reader","password":"x"}`, http.StatusBadRequest},
		{"wrong password", `{"email":"reader@example.com","password":"nope"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.Login(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestHandler_Me(t *testing.T) {
	h := NewHandler(NewService(newFakeUsers(t), testSecret, time.Minute), validation.New())

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 5}))
	rr = httptest.NewRecorder()
	h.Me(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"email":"reader@example.com"`) {
		t.Errorf("body = %s", rr.Body.String())
	}
}
