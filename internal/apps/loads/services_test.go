package loads

import (
	"context"
	"fmt"
	"testing"
	"time"

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
	require.NoError(t, db.AutoMigrate(&Load{}))
	return db
}

func validRequest() *CreateLoadRequest {
	return &CreateLoadRequest{
		Material:   "cement",
		WeightKg:   12000,
		PickupCity: "Lahore",
		DropCity:   "Karachi",
		PickupDate: time.Now().Add(48 * time.Hour),
	}
}

func TestCreateLoad(t *testing.T) {
	svc := NewLoadService(newTestDB(t))
	customerID := uuid.New()

	load, err := svc.Create(context.Background(), customerID, validRequest())
	require.NoError(t, err)

	assert.Equal(t, customerID, load.CustomerID)
	assert.Equal(t, StatusOpen, load.Status)
	assert.NotEqual(t, uuid.Nil, load.ID)
}

func TestCreateLoadValidation(t *testing.T) {
	svc := NewLoadService(newTestDB(t))

	cases := map[string]func(r *CreateLoadRequest){
		"missing material": func(r *CreateLoadRequest) { r.Material = "" },
		"zero weight":      func(r *CreateLoadRequest) { r.WeightKg = 0 },
		"negative weight":  func(r *CreateLoadRequest) { r.WeightKg = -5 },
		"missing pickup":   func(r *CreateLoadRequest) { r.PickupCity = "" },
		"missing drop":     func(r *CreateLoadRequest) { r.DropCity = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(req)
			_, err := svc.Create(context.Background(), uuid.New(), req)
			assert.ErrorIs(t, err, ErrInvalidLoad)
		})
	}
}

func TestListOpenFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewLoadService(db)
	ctx := context.Background()
	customerID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, customerID, validRequest())
		require.NoError(t, err)
	}
	other := validRequest()
	other.PickupCity = "Multan"
	booked, err := svc.Create(ctx, customerID, other)
	require.NoError(t, err)
	require.NoError(t, db.Model(booked).Update("status", StatusBooked).Error)

	all, err := svc.ListOpen(ctx, "", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total) // booked load excluded

	filtered, err := svc.ListOpen(ctx, "Lahore", "Karachi", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 3, filtered.Total)

	none, err := svc.ListOpen(ctx, "Multan", "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, none.Total)

	paged, err := svc.ListOpen(ctx, "", "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, paged.Total)
	assert.Len(t, paged.Loads, 1)
}

func TestListByCustomer(t *testing.T) {
	svc := NewLoadService(newTestDB(t))
	ctx := context.Background()
	mine, others := uuid.New(), uuid.New()

	_, err := svc.Create(ctx, mine, validRequest())
	require.NoError(t, err)
	_, err = svc.Create(ctx, others, validRequest())
	require.NoError(t, err)

	result, err := svc.ListByCustomer(ctx, mine)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, mine, result[0].CustomerID)
}

func TestCancelLoad(t *testing.T) {
	svc := NewLoadService(newTestDB(t))
	ctx := context.Background()
	customerID := uuid.New()

	load, err := svc.Create(ctx, customerID, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, customerID, load.ID))

	got, err := svc.Get(ctx, load.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, got.Status)

	// closed loads cannot be cancelled again
	assert.ErrorIs(t, svc.Cancel(ctx, customerID, load.ID), ErrNotOpen)
}

func TestCancelLoadOwnership(t *testing.T) {
	svc := NewLoadService(newTestDB(t))
	ctx := context.Background()

	load, err := svc.Create(ctx, uuid.New(), validRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, uuid.New(), load.ID), ErrNotOwner)
	assert.ErrorIs(t, svc.Cancel(ctx, uuid.New(), uuid.New()), ErrLoadNotFound)
}
