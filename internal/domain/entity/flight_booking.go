// internal/domain/entity/flight_booking.go
package entity

import (
	"fmt"
	"time"
)

// Date layouts used by flight bookings
const (
	DateLayout    = "2006-01-02"
	KeyDateLayout = "20060102"
)

// FlightBooking is the typed form of a flight booking record
type FlightBooking struct {
	Carrid    string
	Connid    string
	Bookid    string
	Fldate    time.Time
	OrderDate *time.Time
}

// ToRecord renders the booking in the view's field order
func (b FlightBooking) ToRecord() Record {
	r := NewRecord(
		Field{Name: FieldCarrid, Value: b.Carrid},
		Field{Name: FieldConnid, Value: b.Connid},
		Field{Name: FieldBookid, Value: b.Bookid},
		Field{Name: FieldFldate, Value: b.Fldate.Format(DateLayout)},
	)
	if b.OrderDate != nil {
		r = r.With(FieldOrderDate, b.OrderDate.Format(DateLayout))
	}
	return r
}

// FlightBookingFromRecord parses a record into a booking. Dates are
// accepted in either the display or the compact key layout.
func FlightBookingFromRecord(r Record) (FlightBooking, error) {
	var b FlightBooking
	b.Carrid, _ = r.Get(FieldCarrid)
	b.Connid, _ = r.Get(FieldConnid)
	b.Bookid, _ = r.Get(FieldBookid)

	fldate, _ := r.Get(FieldFldate)
	d, err := ParseBookingDate(fldate)
	if err != nil {
		return b, fmt.Errorf("%s: %w", FieldFldate, err)
	}
	b.Fldate = d

	if v, ok := r.Get(FieldOrderDate); ok && v != "" {
		od, err := ParseBookingDate(v)
		if err != nil {
			return b, fmt.Errorf("%s: %w", FieldOrderDate, err)
		}
		b.OrderDate = &od
	}
	return b, nil
}

// ParseBookingDate parses v as 2006-01-02 or 20060102
func ParseBookingDate(v string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(KeyDateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, ErrInvalidKey)
	}
	return t, nil
}
