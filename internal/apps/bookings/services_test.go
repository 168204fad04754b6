package bookings

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

	"github.com/loadlinkhq/loadlink-backend/internal/apps/loads"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/trucks"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
)

type fixture struct {
	db       *gorm.DB
	svc      *BookingService
	customer models.User
	driver   models.User
	load     loads.Load
	truck    trucks.Truck
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &loads.Load{}, &trucks.Truck{}, &Booking{}))

	f := &fixture{db: db, svc: NewBookingService(db)}

	f.customer = models.User{ID: uuid.New(), Name: "Ayesha Traders", Role: models.RoleCustomer, Provider: models.ProviderLocal, CompanyName: "Ayesha Traders Pvt"}
	f.driver = models.User{ID: uuid.New(), Name: "Bashir", Role: models.RoleDriver, Provider: models.ProviderLocal}
	require.NoError(t, db.Create(&f.customer).Error)
	require.NoError(t, db.Create(&f.driver).Error)

	f.load = loads.Load{
		ID: uuid.New(), CustomerID: f.customer.ID, Material: "steel coils", WeightKg: 24000,
		PickupCity: "Lahore", DropCity: "Karachi", PickupDate: time.Now().Add(24 * time.Hour),
		Status: loads.StatusOpen,
	}
	require.NoError(t, db.Create(&f.load).Error)

	f.truck = trucks.Truck{
		ID: uuid.New(), DriverID: f.driver.ID, RegistrationNo: "LHR7001",
		TruckType: "trailer", CapacityKg: 30000, CurrentCity: "Lahore", Available: true,
	}
	require.NoError(t, db.Create(&f.truck).Error)

	return f
}

func (f *fixture) book(t *testing.T) *Booking {
	t.Helper()
	booking, err := f.svc.Create(context.Background(), f.driver.ID, &CreateBookingRequest{
		LoadID: f.load.ID, TruckID: f.truck.ID,
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking := f.book(t)
	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, f.customer.ID, booking.CustomerID)
	assert.Equal(t, "Lahore", booking.FromCity)
	assert.Equal(t, "Karachi", booking.ToCity)

	var load loads.Load
	require.NoError(t, f.db.First(&load, "id = ?", f.load.ID).Error)
	assert.Equal(t, loads.StatusBooked, load.Status)

	var truck trucks.Truck
	require.NoError(t, f.db.First(&truck, "id = ?", f.truck.ID).Error)
	assert.False(t, truck.Available)

	// the load is gone from the open board, so a second driver loses the race
	truck2 := trucks.Truck{ID: uuid.New(), DriverID: uuid.New(), RegistrationNo: "KHI9002",
		TruckType: "open", CapacityKg: 28000, Available: true}
	require.NoError(t, f.db.Create(&truck2).Error)
	_, err := f.svc.Create(ctx, truck2.DriverID, &CreateBookingRequest{LoadID: f.load.ID, TruckID: truck2.ID})
	assert.ErrorIs(t, err, ErrLoadUnavailable)
}

func TestCreateBookingGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.driver.ID, &CreateBookingRequest{LoadID: uuid.New(), TruckID: f.truck.ID})
	assert.ErrorIs(t, err, loads.ErrLoadNotFound)

	_, err = f.svc.Create(ctx, f.driver.ID, &CreateBookingRequest{LoadID: f.load.ID, TruckID: uuid.New()})
	assert.ErrorIs(t, err, trucks.ErrTruckNotFound)

	_, err = f.svc.Create(ctx, uuid.New(), &CreateBookingRequest{LoadID: f.load.ID, TruckID: f.truck.ID})
	assert.ErrorIs(t, err, ErrNotYourTruck)

	require.NoError(t, f.db.Model(&f.truck).Update("available", false).Error)
	_, err = f.svc.Create(ctx, f.driver.ID, &CreateBookingRequest{LoadID: f.load.ID, TruckID: f.truck.ID})
	assert.ErrorIs(t, err, ErrTruckUnavailable)

	// the failed attempt must not leave the load flipped to booked
	var load loads.Load
	require.NoError(t, f.db.First(&load, "id = ?", f.load.ID).Error)
	assert.Equal(t, loads.StatusOpen, load.Status)
}

func TestBookingLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t)

	// pending cannot jump straight to delivered
	_, err := f.svc.UpdateStatus(ctx, f.driver.ID, booking.ID, StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := f.svc.UpdateStatus(ctx, f.driver.ID, booking.ID, StatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, updated.Status)

	updated, err = f.svc.UpdateStatus(ctx, f.driver.ID, booking.ID, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)

	// delivery closes the load and frees the truck
	var load loads.Load
	require.NoError(t, f.db.First(&load, "id = ?", f.load.ID).Error)
	assert.Equal(t, loads.StatusClosed, load.Status)

	var truck trucks.Truck
	require.NoError(t, f.db.First(&truck, "id = ?", f.truck.ID).Error)
	assert.True(t, truck.Available)

	_, err = f.svc.UpdateStatus(ctx, f.driver.ID, booking.ID, StatusInTransit)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateStatusOwnership(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), booking.ID, StatusInTransit)
	assert.ErrorIs(t, err, ErrNotYourBooking)

	_, err = f.svc.UpdateStatus(context.Background(), f.driver.ID, uuid.New(), StatusInTransit)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t)

	mine, err := f.svc.List(ctx, f.customer.ID, models.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	driving, err := f.svc.List(ctx, f.driver.ID, models.RoleDriver)
	require.NoError(t, err)
	assert.Len(t, driving, 1)

	all, err := f.svc.List(ctx, uuid.New(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	stranger, err := f.svc.List(ctx, uuid.New(), models.RoleCustomer)
	require.NoError(t, err)
	assert.Empty(t, stranger)
}

func TestCanAccess(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t)

	assert.True(t, booking.CanAccess(f.customer.ID, models.RoleCustomer))
	assert.True(t, booking.CanAccess(f.driver.ID, models.RoleDriver))
	assert.True(t, booking.CanAccess(uuid.New(), models.RoleAdmin))
	assert.False(t, booking.CanAccess(uuid.New(), models.RoleCustomer))
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t)

	bilty, err := f.svc.Bilty(ctx, booking)
	require.NoError(t, err)
	assert.Contains(t, string(bilty), "CONSIGNMENT NOTE")
	assert.Contains(t, string(bilty), "LHR7001")
	assert.Contains(t, string(bilty), "Ayesha Traders Pvt")
	assert.Contains(t, string(bilty), "steel coils")

	invoice, err := f.svc.Invoice(ctx, booking)
	require.NoError(t, err)
	assert.Contains(t, string(invoice), "FREIGHT INVOICE")
	// 24000 kg at the flat per-tonne rate
	assert.Contains(t, string(invoice), "INR 52800")
}
