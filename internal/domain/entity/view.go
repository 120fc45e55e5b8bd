package entity

import (
	"fmt"
	"strings"
)

// Normalizer rewrites a key value into the form the transport accepts
type Normalizer func(string) string

// Navigation is a request for the caller to route to another view
type Navigation struct {
	Destination string
	Params      map[string]string
}

// ViewDefinition configures one list/detail view
type ViewDefinition struct {
	Name string

	// KeyFields lists the entity key fields in the order the gateway expects
	KeyFields []string
	// Normalizers rewrite individual key values before key construction
	Normalizers map[string]Normalizer

	// RequiredFields must be present and non-blank in a create draft
	RequiredFields []string
	// CreateFields orders the fields of a record built from a draft
	CreateFields []string
	// FilterFields are the fields exposed as search inputs
	FilterFields []string

	ListDestination   string
	CreateDestination string
	DetailDestination string

	// Navigation names the property that reaches this view's set from a
	// parent entity. Empty for top-level views.
	Navigation string
}

// StripHyphens removes every "-" from v
func StripHyphens(v string) string {
	return strings.ReplaceAll(v, "-", "")
}

// Flight booking field names
const (
	FieldCarrid    = "Carrid"
	FieldConnid    = "Connid"
	FieldBookid    = "Bookid"
	FieldFldate    = "Fldate"
	FieldOrderDate = "OrderDate"
)

// FlightBookingView returns the definition of the flight booking list
func FlightBookingView() ViewDefinition {
	return ViewDefinition{
		Name:      "FlightView",
		KeyFields: []string{FieldCarrid, FieldConnid, FieldBookid, FieldFldate},
		Normalizers: map[string]Normalizer{
			FieldFldate: StripHyphens,
		},
		RequiredFields:    []string{FieldCarrid, FieldConnid, FieldBookid, FieldFldate},
		CreateFields:      []string{FieldCarrid, FieldConnid, FieldBookid, FieldFldate, FieldOrderDate},
		FilterFields:      []string{FieldCarrid, FieldBookid},
		ListDestination:   "RouteFlightView",
		CreateDestination: "RouteCreateView",
		DetailDestination: "RouteDetailView",
	}
}

// Business partner field names
const (
	FieldBusinessPartnerID = "BusinessPartnerID"
	FieldSalesOrderID      = "SalesOrderID"
)

// BusinessPartnerView returns the definition of the business partner list
// whose detail shows the partner's sales orders
func BusinessPartnerView() ViewDefinition {
	return ViewDefinition{
		Name:              "BusinessPartnerView",
		KeyFields:         []string{FieldBusinessPartnerID},
		FilterFields:      []string{FieldBusinessPartnerID},
		ListDestination:   "RouteView1",
		DetailDestination: "RouteView2",
	}
}

// SalesOrderView returns the definition of the sales orders related to one
// business partner
func SalesOrderView() ViewDefinition {
	return ViewDefinition{
		Name:            "SalesOrderView",
		KeyFields:       []string{FieldSalesOrderID},
		ListDestination: "RouteView1",
		Navigation:      "ToSalesOrders",
	}
}

// BuildKey extracts the key fields from record in declared order, applying
// any per-field normalizer
func (v ViewDefinition) BuildKey(record Record) ([]KeyField, error) {
	if len(v.KeyFields) == 0 {
		return nil, fmt.Errorf("view %s declares no key fields: %w", v.Name, ErrInvalidKey)
	}

	key := make([]KeyField, 0, len(v.KeyFields))
	for _, name := range v.KeyFields {
		value, ok := record.Get(name)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("key field %s is empty: %w", name, ErrInvalidKey)
		}
		if normalize := v.Normalizers[name]; normalize != nil {
			value = normalize(value)
		}
		if value == "" {
			return nil, fmt.Errorf("key field %s normalized to empty: %w", name, ErrInvalidKey)
		}
		key = append(key, KeyField{Name: name, Value: value})
	}
	return key, nil
}

// KeyString renders a key as Name=Value pairs joined by "|"
func KeyString(key []KeyField) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = k.Name + "=" + k.Value
	}
	return strings.Join(parts, "|")
}
