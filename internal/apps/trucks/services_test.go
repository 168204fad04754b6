package trucks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
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
	require.NoError(t, db.AutoMigrate(&Truck{}))
	return db
}

func TestCreateTruckNormalizesRegistration(t *testing.T) {
	svc := NewTruckService(newTestDB(t))

	truck, err := svc.Create(context.Background(), uuid.New(), &CreateTruckRequest{
		RegistrationNo: "lhr 1234",
		TruckType:      "container",
		CapacityKg:     18000,
		CurrentCity:    "Lahore",
	})
	require.NoError(t, err)

	assert.Equal(t, "LHR1234", truck.RegistrationNo)
	assert.True(t, truck.Available)
}

func TestCreateTruckDuplicateRegistration(t *testing.T) {
	svc := NewTruckService(newTestDB(t))
	ctx := context.Background()

	req := &CreateTruckRequest{RegistrationNo: "KHI-99", TruckType: "open", CapacityKg: 9000}
	_, err := svc.Create(ctx, uuid.New(), req)
	require.NoError(t, err)

	// same plate with different spacing collides after normalization
	_, err = svc.Create(ctx, uuid.New(), &CreateTruckRequest{
		RegistrationNo: "khi-99 ", TruckType: "open", CapacityKg: 9000,
	})
	assert.ErrorIs(t, err, ErrDuplicateTruck)
}

func TestCreateTruckValidation(t *testing.T) {
	svc := NewTruckService(newTestDB(t))
	ctx := context.Background()

	_, err := svc.Create(ctx, uuid.New(), &CreateTruckRequest{TruckType: "open", CapacityKg: 1})
	assert.ErrorIs(t, err, ErrInvalidTruck)

	_, err = svc.Create(ctx, uuid.New(), &CreateTruckRequest{
		RegistrationNo: "ABC-1", TruckType: "hovercraft", CapacityKg: 1,
	})
	assert.ErrorIs(t, err, ErrUnknownTruckType)
}

func TestListTrucks(t *testing.T) {
	svc := NewTruckService(newTestDB(t))
	ctx := context.Background()
	driverID := uuid.New()

	a, err := svc.Create(ctx, driverID, &CreateTruckRequest{
		RegistrationNo: "AAA-1", TruckType: "open", CapacityKg: 5000, CurrentCity: "Lahore",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, uuid.New(), &CreateTruckRequest{
		RegistrationNo: "BBB-2", TruckType: "trailer", CapacityKg: 25000, CurrentCity: "Karachi",
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inLahore, err := svc.List(ctx, "Lahore", true)
	require.NoError(t, err)
	require.Len(t, inLahore, 1)
	assert.Equal(t, a.ID, inLahore[0].ID)

	mine, err := svc.ListByDriver(ctx, driverID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].ID)
}

func TestSetAvailability(t *testing.T) {
	svc := NewTruckService(newTestDB(t))
	ctx := context.Background()
	driverID := uuid.New()

	truck, err := svc.Create(ctx, driverID, &CreateTruckRequest{
		RegistrationNo: "CCC-3", TruckType: "tanker", CapacityKg: 30000, CurrentCity: "Lahore",
	})
	require.NoError(t, err)

	updated, err := svc.SetAvailability(ctx, driverID, truck.ID, &SetAvailabilityRequest{
		Available:   false,
		CurrentCity: "Islamabad",
	})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, "Islamabad", updated.CurrentCity)

	// empty city keeps the previous location
	updated, err = svc.SetAvailability(ctx, driverID, truck.ID, &SetAvailabilityRequest{Available: true})
	require.NoError(t, err)
	assert.True(t, updated.Available)
	assert.Equal(t, "Islamabad", updated.CurrentCity)

	_, err = svc.SetAvailability(ctx, uuid.New(), truck.ID, &SetAvailabilityRequest{Available: false})
	assert.ErrorIs(t, err, ErrNotOwner)
}
