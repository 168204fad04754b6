package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"gorm.io/gorm"
)

// ErrLinkConflict is returned when an assertion's email matches an account
// that is already linked to a different subject of the same provider.
// Overwriting the existing link would let one federated identity take over
// another's account, so the login is refused instead.
var ErrLinkConflict = errors.New("identity: account already linked to a different federated identity")

// Reconciler maps a verified federated assertion onto a local user record,
// creating or linking as needed.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

// Reconcile finds or creates the user for an assertion. Lookup order:
//
//  1. by the provider-specific subject column (google_id / firebase_uid)
//  2. by email, linking the provider subject onto the matched account
//  3. create a new customer account
//
// Subject lookup runs before email lookup so two distinct provider
// identities sharing a mistyped email are never merged. Two concurrent
// first logins for the same identity can both reach step 3; the unique
// index on the subject column rejects the loser, which then re-reads the
// winner's row.
func (r *Reconciler) Reconcile(ctx context.Context, provider string, a *Assertion) (*models.User, error) {
	column, err := subjectColumn(provider)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.WithContext(ctx).Where(column+" = ?", a.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("identity: looking up %s: %w", column, err)
	}

	if a.Email != "" {
		err = r.db.WithContext(ctx).Where("email = ?", a.Email).First(&user).Error
		if err == nil {
			return r.link(ctx, &user, provider, column, a)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("identity: looking up email: %w", err)
		}
	}

	return r.create(ctx, provider, column, a)
}

// link attaches the provider subject to an account matched by email. An
// account that already carries a different subject for this provider is
// left untouched and the login is rejected.
func (r *Reconciler) link(ctx context.Context, user *models.User, provider, column string, a *Assertion) (*models.User, error) {
	existing := providerSubject(user, provider)
	if existing != nil {
		if *existing != a.Subject {
			return nil, ErrLinkConflict
		}
		return user, nil
	}

	updates := map[string]interface{}{
		column:     a.Subject,
		"provider": provider,
	}
	if a.EmailVerified {
		updates["verified"] = true
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("identity: linking %s: %w", column, err)
	}

	setProviderSubject(user, provider, a.Subject)
	user.Provider = provider
	if a.EmailVerified {
		user.Verified = true
	}
	return user, nil
}

func (r *Reconciler) create(ctx context.Context, provider, column string, a *Assertion) (*models.User, error) {
	name := a.Name
	if name == "" && a.Email != "" {
		name = strings.SplitN(a.Email, "@", 2)[0]
	}

	user := models.User{
		ID:       uuid.New(),
		Name:     name,
		Role:     models.RoleCustomer,
		Provider: provider,
		Verified: a.EmailVerified,
	}
	if a.Email != "" {
		email := a.Email
		user.Email = &email
	}
	setProviderSubject(&user, provider, a.Subject)

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent first login may have won the insert. Re-read by the
		// subject column before giving up.
		var winner models.User
		if rerr := r.db.WithContext(ctx).Where(column+" = ?", a.Subject).First(&winner).Error; rerr == nil {
			return &winner, nil
		}
		return nil, fmt.Errorf("identity: creating user: %w", err)
	}

	return &user, nil
}

func subjectColumn(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle:
		return "google_id", nil
	case models.ProviderFirebase:
		return "firebase_uid", nil
	default:
		return "", fmt.Errorf("identity: unknown provider %q", provider)
	}
}

func providerSubject(u *models.User, provider string) *string {
	if provider == models.ProviderGoogle {
		return u.GoogleID
	}
	return u.FirebaseUID
}

func setProviderSubject(u *models.User, provider, subject string) {
	if provider == models.ProviderGoogle {
		u.GoogleID = &subject
		return
	}
	u.FirebaseUID = &subject
}
