package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/loadlinkhq/loadlink-backend/internal/apps/loads"
	"github.com/loadlinkhq/loadlink-backend/internal/apps/trucks"
	"github.com/loadlinkhq/loadlink-backend/internal/models"
)

// documentData collects everything a bilty or invoice needs in one place.
type documentData struct {
	Booking  *Booking
	Load     loads.Load
	Truck    trucks.Truck
	Customer models.User
	Driver   models.User
}

func (s *BookingService) documentData(ctx context.Context, booking *Booking) (*documentData, error) {
	data := documentData{Booking: booking}

	db := s.db.WithContext(ctx)
	if err := db.First(&data.Load, "id = ?", booking.LoadID).Error; err != nil {
		return nil, fmt.Errorf("loading load: %w", err)
	}
	if err := db.First(&data.Truck, "id = ?", booking.TruckID).Error; err != nil {
		return nil, fmt.Errorf("loading truck: %w", err)
	}
	if err := db.First(&data.Customer, "id = ?", booking.CustomerID).Error; err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}
	if err := db.First(&data.Driver, "id = ?", booking.DriverID).Error; err != nil {
		return nil, fmt.Errorf("loading driver: %w", err)
	}
	return &data, nil
}

// Bilty renders the consignment note for a booking.
func (s *BookingService) Bilty(ctx context.Context, booking *Booking) ([]byte, error) {
	data, err := s.documentData(ctx, booking)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeHeader(&b, "CONSIGNMENT NOTE (BILTY)")
	fmt.Fprintf(&b, "Bilty No      : %s\n", data.Booking.ID)
	fmt.Fprintf(&b, "Date          : %s\n\n", data.Booking.CreatedAt.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Consignor     : %s%s\n", data.Customer.Name, companySuffix(&data.Customer))
	fmt.Fprintf(&b, "Carrier       : %s%s\n", data.Driver.Name, companySuffix(&data.Driver))
	fmt.Fprintf(&b, "Vehicle No    : %s (%s)\n\n", data.Truck.RegistrationNo, data.Truck.TruckType)
	fmt.Fprintf(&b, "From          : %s\n", data.Booking.FromCity)
	fmt.Fprintf(&b, "To            : %s\n", data.Booking.ToCity)
	fmt.Fprintf(&b, "Material      : %s\n", data.Load.Material)
	fmt.Fprintf(&b, "Weight        : %d kg\n", data.Load.WeightKg)
	fmt.Fprintf(&b, "Status        : %s\n", data.Booking.Status)
	return []byte(b.String()), nil
}

// Invoice renders the freight invoice for a booking.
func (s *BookingService) Invoice(ctx context.Context, booking *Booking) ([]byte, error) {
	data, err := s.documentData(ctx, booking)
	if err != nil {
		return nil, err
	}

	freight := freightEstimate(data.Load.WeightKg)

	var b strings.Builder
	writeHeader(&b, "FREIGHT INVOICE")
	fmt.Fprintf(&b, "Invoice No    : INV-%s\n", shortID(data.Booking))
	fmt.Fprintf(&b, "Issued        : %s\n\n", time.Now().Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Billed To     : %s%s\n", data.Customer.Name, companySuffix(&data.Customer))
	fmt.Fprintf(&b, "Carrier       : %s%s\n\n", data.Driver.Name, companySuffix(&data.Driver))
	fmt.Fprintf(&b, "Route         : %s -> %s\n", data.Booking.FromCity, data.Booking.ToCity)
	fmt.Fprintf(&b, "Material      : %s, %d kg\n", data.Load.Material, data.Load.WeightKg)
	fmt.Fprintf(&b, "Freight       : INR %d\n", freight)
	fmt.Fprintf(&b, "Booking Ref   : %s\n", data.Booking.ID)
	return []byte(b.String()), nil
}

func writeHeader(b *strings.Builder, title string) {
	rule := strings.Repeat("=", 48)
	fmt.Fprintf(b, "%s\n%s\n%s\n\n", rule, title, rule)
}

func companySuffix(u *models.User) string {
	if u.CompanyName == "" {
		return ""
	}
	return ", " + u.CompanyName
}

func shortID(b *Booking) string {
	return strings.ToUpper(b.ID.String()[:8])
}

// freightEstimate applies a flat per-tonne rate until lane rate cards land.
func freightEstimate(weightKg int) int {
	const perTonne = 2200
	tonnes := (weightKg + 999) / 1000
	return tonnes * perTonne
}
