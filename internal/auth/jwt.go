package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "library-cms"

// Claims holds the JWT claims for an access token. The user ID is stored in
// the standard "sub" claim as a decimal string; email and the user's
// organization are custom claims.
type Claims struct {
	Email          string `json:"email"`
	OrganizationID *int64 `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID         int64
	Email          string
	OrganizationID *int64
}

// Identity converts the claims into an Identity, rejecting subjects that are
// not positive integers.
func (c *Claims) Identity() (Identity, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Identity{}, errors.New("token subject is not a user id")
	}
	return Identity{UserID: id, Email: c.Email, OrganizationID: c.OrganizationID}, nil
}

// CreateAccessToken signs an HS256 access token for the given identity that
// expires after ttl.
func CreateAccessToken(id Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:          id.Email,
		OrganizationID: id.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and validates tokenString with the HMAC secret
// and returns the caller identity it carries.
func ValidateAccessToken(tokenString, secret string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("parsing access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, errors.New("invalid access token claims")
	}

	return claims.Identity()
}
