package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/pkg/logger"

	"gorm.io/gorm"
)

// GormBookingGateway implements CollectionGateway on the flight_bookings table
type GormBookingGateway struct {
	db     *gorm.DB
	logger logger.Logger
}

var _ repository.CollectionGateway = (*GormBookingGateway)(nil)

// NewGormBookingGateway creates a new GORM flight booking gateway
func NewGormBookingGateway(db *gorm.DB, logger logger.Logger) *GormBookingGateway {
	return &GormBookingGateway{
		db:     db,
		logger: logger,
	}
}

// FlightBookings GORM model for database mapping
type FlightBookings struct {
	Carrid    string     `gorm:"column:carrid;primaryKey;size:3"`
	Connid    string     `gorm:"column:connid;primaryKey;size:4"`
	Bookid    string     `gorm:"column:bookid;primaryKey;size:8"`
	Fldate    time.Time  `gorm:"column:fldate;primaryKey;type:date"`
	OrderDate *time.Time `gorm:"column:order_date;type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (FlightBookings) TableName() string {
	return "flight_bookings"
}

// bookingColumns maps key field names to table columns
var bookingColumns = map[string]string{
	entity.FieldCarrid: "carrid",
	entity.FieldConnid: "connid",
	entity.FieldBookid: "bookid",
	entity.FieldFldate: "fldate",
}

// AutoMigrate creates or updates the bookings table
func (r *GormBookingGateway) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&FlightBookings{})
}

// FetchAll returns every booking ordered by key
func (r *GormBookingGateway) FetchAll(ctx context.Context) (entity.Collection, error) {
	var rows []FlightBookings
	result := r.db.WithContext(ctx).
		Order("carrid").Order("connid").Order("fldate").Order("bookid").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", result.Error)
	}

	// Convert GORM models to domain records
	col := make(entity.Collection, 0, len(rows))
	for _, row := range rows {
		col = append(col, row.toEntity().ToRecord())
	}
	return col, nil
}

// Create inserts a booking
func (r *GormBookingGateway) Create(ctx context.Context, record entity.Record) error {
	booking, err := entity.FlightBookingFromRecord(record)
	if err != nil {
		return err
	}

	model := FlightBookings{
		Carrid:    booking.Carrid,
		Connid:    booking.Connid,
		Bookid:    booking.Bookid,
		Fldate:    booking.Fldate,
		OrderDate: booking.OrderDate,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&FlightBookings{}).Where(model.keyConditions()).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&model).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("booking %s/%s/%s: %w", booking.Carrid, booking.Connid, booking.Bookid, entity.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	r.logger.Info("Booking created", "carrid", booking.Carrid, "connid", booking.Connid, "bookid", booking.Bookid)
	return nil
}

// DeleteByKey removes the booking addressed by key
func (r *GormBookingGateway) DeleteByKey(ctx context.Context, key []entity.KeyField) error {
	conditions, err := bookingKeyConditions(key)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Where(conditions).Delete(&FlightBookings{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("booking %s: %w", entity.KeyString(key), entity.ErrNotFound)
	}

	r.logger.Info("Booking deleted", "key", entity.KeyString(key))
	return nil
}

// bookingKeyConditions turns a full booking key into column conditions.
// Partial keys are rejected so a delete never matches more than one row.
func bookingKeyConditions(key []entity.KeyField) (map[string]interface{}, error) {
	conditions := make(map[string]interface{}, len(bookingColumns))
	for _, k := range key {
		column, ok := bookingColumns[k.Name]
		if !ok {
			return nil, fmt.Errorf("unknown key field %s: %w", k.Name, entity.ErrInvalidKey)
		}
		if column == "fldate" {
			d, err := entity.ParseBookingDate(k.Value)
			if err != nil {
				return nil, err
			}
			conditions[column] = d
			continue
		}
		conditions[column] = k.Value
	}
	if len(conditions) != len(bookingColumns) {
		return nil, fmt.Errorf("incomplete booking key %s: %w", entity.KeyString(key), entity.ErrInvalidKey)
	}
	return conditions, nil
}

func (m FlightBookings) keyConditions() map[string]interface{} {
	return map[string]interface{}{
		"carrid": m.Carrid,
		"connid": m.Connid,
		"bookid": m.Bookid,
		"fldate": m.Fldate,
	}
}

func (m FlightBookings) toEntity() entity.FlightBooking {
	return entity.FlightBooking{
		Carrid:    m.Carrid,
		Connid:    m.Connid,
		Bookid:    m.Bookid,
		Fldate:    m.Fldate,
		OrderDate: m.OrderDate,
	}
}
