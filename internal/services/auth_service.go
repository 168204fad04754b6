package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/dto"
	"github.com/loadlinkhq/loadlink-backend/internal/identity"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/loadlinkhq/loadlink-backend/internal/token"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = errors.New("name, phone and password are required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDuplicatePhone     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrFederatedDisabled  = errors.New("federated login is not available")
	ErrInvalidAssertion   = errors.New("invalid identity token")
)

// AuthService owns local registration/login, federated login and profile
// updates. Every dependency is injected so tests can run it against an
// in-memory database and a fake verifier.
type AuthService struct {
	db               *gorm.DB
	issuer           *token.Issuer
	reconciler       *identity.Reconciler
	googleVerifier   identity.Verifier
	firebaseVerifier identity.Verifier
}

// NewAuthService wires the service. Either verifier may be nil, which
// disables the corresponding federated login route (the startup capability
// flag from the config section).
func NewAuthService(db *gorm.DB, issuer *token.Issuer, google, firebase identity.Verifier) *AuthService {
	return &AuthService{
		db:               db,
		issuer:           issuer,
		reconciler:       identity.NewReconciler(db),
		googleVerifier:   google,
		firebaseVerifier: firebase,
	}
}

// Register creates a local phone/password account. Role defaults to
// customer; only the backend role set is accepted ("superadmin" is a
// frontend-only value).
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	if req.Name == "" || req.Phone == "" || req.Password == "" {
		return nil, ErrMissingFields
	}

	role := req.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("phone = ?", req.Phone).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicatePhone
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking phone: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	phone := req.Phone
	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Phone:        &phone,
		PasswordHash: hash,
		CompanyName:  req.CompanyName,
		Role:         role,
		Provider:     models.ProviderLocal,
		Verified:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// A concurrent registration for the same phone may have won the
		// insert; report it as a duplicate rather than a server fault.
		if s.phoneExists(ctx, req.Phone) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// Login checks a phone/password pair and mints an access token. Unknown
// phone and wrong password produce the same error so callers cannot probe
// for registered numbers.
func (s *AuthService) Login(ctx context.Context, phone, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.issuer.Issue(user.ID.String(), user.Role)
}

// FederatedLogin verifies a provider ID token, reconciles it onto a user
// record and mints an access token for that user.
func (s *AuthService) FederatedLogin(ctx context.Context, provider, rawToken string) (string, *models.User, error) {
	var verifier identity.Verifier
	switch provider {
	case models.ProviderGoogle:
		verifier = s.googleVerifier
	case models.ProviderFirebase:
		verifier = s.firebaseVerifier
	default:
		return "", nil, fmt.Errorf("unknown provider %q", provider)
	}
	if verifier == nil {
		return "", nil, ErrFederatedDisabled
	}

	assertion, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidAssertion, err)
	}

	user, err := s.reconciler.Reconcile(ctx, provider, assertion)
	if err != nil {
		return "", nil, err
	}

	signed, err := s.issuer.Issue(user.ID.String(), user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}

	return signed, user, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes name, phone or company name. Role is deliberately
// not updatable here; elevation is an administrative operation.
func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.Phone != nil && *req.Phone != "" && (user.Phone == nil || *user.Phone != *req.Phone) {
		if s.phoneExists(ctx, *req.Phone) {
			return nil, ErrDuplicatePhone
		}
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return s.GetUser(ctx, id)
}

// ListUsers returns every account, newest first. Admin only.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// SetVerified flips the verification flag on an account. Admin only.
func (s *AuthService) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("verified", verified).Error; err != nil {
		return nil, fmt.Errorf("updating verification: %w", err)
	}
	user.Verified = verified
	return user, nil
}

func (s *AuthService) phoneExists(ctx context.Context, phone string) bool {
	var n int64
	s.db.WithContext(ctx).Model(&models.User{}).Where("phone = ?", phone).Count(&n)
	return n > 0
}

// UserResponse shapes a user record for API responses.
func UserResponse(u *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		CompanyName: u.CompanyName,
		Role:        u.Role,
		Provider:    u.Provider,
		Verified:    u.Verified,
		CreatedAt:   u.CreatedAt,
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	return resp
}
