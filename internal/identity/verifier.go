// Package identity verifies federated login assertions (Google Sign-In and
// Firebase Auth ID tokens) and reconciles them onto local user records.
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

const (
	googleIssuer       = "https://accounts.google.com"
	firebaseIssuerBase = "https://securetoken.google.com/"
)

// Assertion is the subset of a verified ID token the reconciler cares about.
type Assertion struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier validates raw ID tokens for a single upstream identity provider.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Assertion, error)
}

// OIDCVerifier checks ID tokens against a provider's published signing keys,
// discovered from the issuer URL. Both Google Sign-In and Firebase Auth
// publish standard OIDC discovery documents.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier builds a verifier for Google Sign-In ID tokens.
// clientID is the OAuth client the tokens must be issued for.
func NewGoogleVerifier(ctx context.Context, clientID string) (*OIDCVerifier, error) {
	return newOIDCVerifier(ctx, googleIssuer, clientID)
}

// NewFirebaseVerifier builds a verifier for Firebase Auth ID tokens.
// Firebase signs tokens under a per-project issuer with the project ID as
// audience.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*OIDCVerifier, error) {
	return newOIDCVerifier(ctx, firebaseIssuerBase+projectID, projectID)
}

func newOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	if audience == "" {
		return nil, fmt.Errorf("identity: audience is required for issuer %s", issuer)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("identity: discovering provider %s: %w", issuer, err)
	}

	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: audience}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Assertion, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("identity: verifying ID token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("identity: parsing ID token claims: %w", err)
	}

	if idToken.Subject == "" {
		return nil, fmt.Errorf("identity: ID token has no subject")
	}

	return &Assertion{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
