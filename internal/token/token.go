// Package token issues and verifies the bearer credentials returned by the
// auth endpoints. A credential is an HS256 JWT carrying exactly the subject
// user ID and role, valid for a fixed lifetime (7 days by default). Expiry is
// non-renewable: the client re-authenticates when the token runs out.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired   = errors.New("token expired")
	ErrMalformed = errors.New("token malformed or signature invalid")
)

// Claims is the decoded identity attached to authenticated requests.
type Claims struct {
	SubjectID string
	Role      string
}

// Issuer signs and verifies access tokens with a single process-wide secret.
// Rotating the secret invalidates every outstanding token.
type Issuer struct {
	secret   []byte
	lifetime time.Duration
}

func NewIssuer(secret string, lifetime time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), lifetime: lifetime}
}

// Issue mints a token for the given subject and role.
func (i *Issuer) Issue(subjectID, role string) (string, error) {
	return i.IssueAt(subjectID, role, time.Now())
}

// IssueAt mints a token anchored at an arbitrary issue time. Tests use it to
// construct already-expired tokens.
func (i *Issuer) IssueAt(subjectID, role string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(i.lifetime).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(i.secret)
}

// Verify parses and validates a token string, returning the decoded claims.
// Returns ErrExpired for a correctly signed but stale token and ErrMalformed
// for anything else (bad signature, wrong algorithm, garbage input).
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, ErrMalformed
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, ErrMalformed
	}

	return &Claims{SubjectID: sub, Role: role}, nil
}

// Secret exposes the signing key for the jwtware middleware, which performs
// its own verification pass on protected routes.
func (i *Issuer) Secret() []byte {
	return i.secret
}
