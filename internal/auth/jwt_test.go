package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing"

func int64Ptr(v int64) *int64 { return &v }

func TestCreateAndValidateAccessToken(t *testing.T) {
	want := Identity{UserID: 42, Email: "reader@example.com", OrganizationID: int64Ptr(7)}

	token, err := CreateAccessToken(want, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("CreateAccessToken: unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("CreateAccessToken: returned empty token")
	}

	got, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken: unexpected error: %v", err)
	}
	if got.UserID != want.UserID {
		t.Errorf("UserID = %d, want %d", got.UserID, want.UserID)
	}
	if got.Email != want.Email {
		t.Errorf("Email = %q, want %q", got.Email, want.Email)
	}
	if got.OrganizationID == nil || *got.OrganizationID != 7 {
		t.Errorf("OrganizationID = %v, want 7", got.OrganizationID)
	}
}

func TestValidateAccessToken_NoOrganization(t *testing.T) {
	token, err := CreateAccessToken(Identity{UserID: 1}, testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if got.OrganizationID != nil {
		t.Errorf("OrganizationID = %v, want nil", *got.OrganizationID)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := CreateAccessToken(Identity{UserID: 1}, testSecret, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateAccessToken(token, "other-secret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	token, err := CreateAccessToken(Identity{UserID: 1}, testSecret, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestValidateAccessToken_NonNumericSubject(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for non-numeric subject")
	}
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ValidateAccessToken(token, testSecret); err == nil {
		t.Fatal("expected error for alg=none token")
	}
}
