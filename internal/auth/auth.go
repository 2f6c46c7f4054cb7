// Package auth verifies CRM session tokens and carries the caller identity.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds session token verification parameters.
type Config struct {
	Secret string
	// Issuer is checked only when non-empty.
	Issuer string
}

// Claims is the verified identity behind a session token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	// Token is the raw credential, forwarded to the backend on the caller's behalf.
	Token string
}

// ErrMissingToken is returned when no session credential accompanies the request.
var ErrMissingToken = errors.New("missing session token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid session token")

// Authenticator resolves a session credential to the caller's identity.
type Authenticator interface {
	Verify(token string) (*Claims, error)
}

// JWTAuthenticator verifies HS256 session tokens signed with a shared secret.
type JWTAuthenticator struct {
	cfg Config
}

// NewJWTAuthenticator constructs a JWTAuthenticator.
func NewJWTAuthenticator(cfg Config) *JWTAuthenticator {
	return &JWTAuthenticator{cfg: cfg}
}

// Verify implements Authenticator.
func (a *JWTAuthenticator) Verify(token string) (*Claims, error) {
	return Parse(token, a.cfg)
}

// subjectClaims lists the claims that may carry the user id, in priority order.
var subjectClaims = []string{"sub", "userId", "user_id", "id"}

// Parse validates a JWT and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject := subjectFrom(claims)
	if subject == "" {
		return nil, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}

	out := &Claims{Subject: subject, Token: token}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func subjectFrom(claims jwt.MapClaims) string {
	for _, key := range subjectClaims {
		switch v := claims[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
