package identity

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestReconcileCreatesCustomer(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	user, err := r.Reconcile(context.Background(), models.ProviderGoogle, &Assertion{
		Subject:       "google-sub-1",
		Email:         "asha@example.com",
		EmailVerified: true,
		Name:          "Asha Verma",
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha Verma", user.Name)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.Equal(t, models.ProviderGoogle, user.Provider)
	assert.True(t, user.Verified)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-sub-1", *user.GoogleID)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	a := &Assertion{Subject: "firebase-uid-1", Email: "ravi@example.com", Name: "Ravi"}

	first, err := r.Reconcile(context.Background(), models.ProviderFirebase, a)
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), models.ProviderFirebase, a)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestReconcileLinksExistingLocalAccount(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	phone := "9990001111"
	email := "meena@example.com"
	local := models.User{
		ID:       uuid.New(),
		Name:     "Meena Transport",
		Phone:    &phone,
		Email:    &email,
		Role:     models.RoleCustomer,
		Provider: models.ProviderLocal,
	}
	require.NoError(t, db.Create(&local).Error)

	user, err := r.Reconcile(context.Background(), models.ProviderGoogle, &Assertion{
		Subject:       "google-sub-2",
		Email:         email,
		EmailVerified: true,
		Name:          "Meena",
	})
	require.NoError(t, err)

	assert.Equal(t, local.ID, user.ID, "should link, not duplicate")
	assert.Equal(t, int64(1), userCount(t, db))
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "google-sub-2", *user.GoogleID)
	assert.Equal(t, models.ProviderGoogle, user.Provider)
	assert.True(t, user.Verified)

	// the local credential survives the link
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", local.ID).Error)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, phone, *stored.Phone)
}

func TestReconcileSubjectLookupWinsOverEmail(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	// Account A holds the subject; account B holds the (mistyped) email.
	subjA := "google-sub-3"
	emailB := "shared@example.com"
	accountA := models.User{ID: uuid.New(), Name: "A", GoogleID: &subjA, Role: models.RoleCustomer, Provider: models.ProviderGoogle}
	accountB := models.User{ID: uuid.New(), Name: "B", Email: &emailB, Role: models.RoleCustomer, Provider: models.ProviderLocal}
	require.NoError(t, db.Create(&accountA).Error)
	require.NoError(t, db.Create(&accountB).Error)

	user, err := r.Reconcile(context.Background(), models.ProviderGoogle, &Assertion{
		Subject: subjA,
		Email:   emailB,
	})
	require.NoError(t, err)
	assert.Equal(t, accountA.ID, user.ID, "subject match must take precedence over email match")
}

func TestReconcileRefusesToOverwriteDifferentLink(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	subj := "google-sub-4"
	email := "taken@example.com"
	existing := models.User{ID: uuid.New(), Name: "Existing", Email: &email, GoogleID: &subj, Role: models.RoleCustomer, Provider: models.ProviderGoogle}
	require.NoError(t, db.Create(&existing).Error)

	_, err := r.Reconcile(context.Background(), models.ProviderGoogle, &Assertion{
		Subject: "google-sub-other",
		Email:   email,
	})
	assert.ErrorIs(t, err, ErrLinkConflict)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestReconcileCrossProviderLink(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	googleSubj := "google-sub-5"
	email := "both@example.com"
	existing := models.User{ID: uuid.New(), Name: "Both", Email: &email, GoogleID: &googleSubj, Role: models.RoleCustomer, Provider: models.ProviderGoogle}
	require.NoError(t, db.Create(&existing).Error)

	user, err := r.Reconcile(context.Background(), models.ProviderFirebase, &Assertion{
		Subject: "firebase-uid-5",
		Email:   email,
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, user.ID)
	require.NotNil(t, user.FirebaseUID)
	assert.Equal(t, "firebase-uid-5", *user.FirebaseUID)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, googleSubj, *user.GoogleID, "google link must stay untouched")
	assert.Equal(t, models.ProviderFirebase, user.Provider)
}

func TestReconcileNameFallsBackToEmailLocalPart(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	user, err := r.Reconcile(context.Background(), models.ProviderFirebase, &Assertion{
		Subject: "firebase-uid-6",
		Email:   "driver42@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "driver42", user.Name)
}

func TestReconcileInsertRaceFallsBackToReRead(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	// Simulate the losing writer: the winner's row already exists when our
	// insert hits the unique index on the subject column.
	subj := "google-sub-7"
	winner := models.User{ID: uuid.New(), Name: "Winner", GoogleID: &subj, Role: models.RoleCustomer, Provider: models.ProviderGoogle}
	require.NoError(t, db.Create(&winner).Error)

	user, err := r.create(context.Background(), models.ProviderGoogle, "google_id", &Assertion{Subject: subj})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, user.ID)
	assert.Equal(t, int64(1), userCount(t, db))
}

func TestReconcileUnknownProvider(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)

	_, err := r.Reconcile(context.Background(), "github", &Assertion{Subject: "x"})
	assert.Error(t, err)
}
