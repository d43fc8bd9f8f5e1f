// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// JWTClaims mirrors the access tokens issued by the hosted auth service.
type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

type TokenVerifier struct {
	secret   []byte
	audience string
}

func NewTokenVerifier(secret, audience string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), audience: audience}
}

func (v *TokenVerifier) Validate(tokenString string) (*JWTClaims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token verification is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, errors.New("invalid token audience")
	}

	if _, err := claims.UserID(); err != nil {
		return nil, errors.New("invalid token subject")
	}

	return claims, nil
}

// Sign issues a token the verifier accepts. Used by tests and local tooling;
// production tokens come from the auth service.
func (v *TokenVerifier) Sign(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{v.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
