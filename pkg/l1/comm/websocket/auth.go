package websocket

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenParam is the query parameter carrying the token, for clients
// unable to set headers such as browsers opening a websocket.
const TokenParam = "token"

// ErrNoToken indicates the request carries no token.
var ErrNoToken = errors.New("no token")

// Authorizer verifies HS256 signed tokens granting the right to send
// commands.
type Authorizer struct {
	Secret []byte
	Issuer string
	Now    func() time.Time
}

// NewAuthorizer creates an Authorizer.
func NewAuthorizer(secret string) *Authorizer {
	return &Authorizer{Secret: []byte(secret), Issuer: "homectl", Now: time.Now}
}

// Issue creates a token for subject valid for ttl, forever if ttl is 0.
func (a *Authorizer) Issue(subject string, ttl time.Duration) (string, error) {
	now := a.Now()
	claims := jwt.RegisteredClaims{
		Issuer:   a.Issuer,
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// Verify parses and validates a token, returning the subject.
func (a *Authorizer) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.Issuer),
		jwt.WithTimeFunc(a.Now))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return claims.Subject, nil
}

// Authorize verifies the token of a request, from the Authorization
// bearer header or TokenParam.
func (a *Authorizer) Authorize(r *http.Request) (string, error) {
	token := r.URL.Query().Get(TokenParam)
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return "", ErrNoToken
	}
	return a.Verify(token)
}
