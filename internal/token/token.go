// Package token issues and verifies the signed session tokens carried in
// the "token" cookie. Tokens are stateless: logout clears the cookie but a
// previously issued token stays cryptographically valid until it expires.
package token

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CookieName is the session cookie written by Issue and removed by Clear.
const CookieName = "token"

// DefaultTTL is the fixed validity window of a session token.
const DefaultTTL = 15 * 24 * time.Hour

// Service signs and verifies session tokens. secure controls the cookie's
// Secure attribute and should be true when serving over HTTPS.
type Service struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewService(secret string, ttl time.Duration, secure bool) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a token for the user and attaches it to the response as an
// HTTP-only, SameSite=Strict cookie whose max-age matches the token expiry.
func (s *Service) Issue(w http.ResponseWriter, userID primitive.ObjectID) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"iat":    now.Unix(),
		"exp":    now.Add(s.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Verify validates the signature and expiry of tokenString and returns the
// embedded user ID. Malformed, tampered and expired tokens all fail.
func (s *Service) Verify(tokenString string) (primitive.ObjectID, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return primitive.NilObjectID, fmt.Errorf("invalid token")
	}

	raw, ok := claims["userId"].(string)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("invalid token claims")
	}

	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid user id in token: %w", err)
	}
	return userID, nil
}

// Clear overwrites the session cookie with an immediately expired empty
// value. There is no server-side revocation list.
func (s *Service) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
