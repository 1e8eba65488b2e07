package models

import (
	"fmt"
	"time"
)

// ListingKind identifies which composite-key strategy applies to a listing
type ListingKind string

const (
	// KindProperty keys on title + trade/estate/category names
	KindProperty ListingKind = "property"
	// KindVehicle keys on the site-native listing id
	KindVehicle ListingKind = "vehicle"
)

// QuickInfo is a key/value fact shown on a listing card (room count, floor, area)
type QuickInfo struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Location holds the listing's coordinates
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PriceDetail holds the price exactly as the source reports it. Raw keeps the
// original display string for sources that only expose formatted prices.
type PriceDetail struct {
	Raw         string  `json:"raw,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Opportunity bool    `json:"opportunity,omitempty"`
}

// ConditionRecord is one itemized damage/condition entry from a vehicle
// detail page. The schema follows the source site's damage report codes.
type ConditionRecord struct {
	Code             string `json:"code,omitempty"`
	Name             string `json:"name,omitempty"`
	Value            string `json:"value,omitempty"`
	ValueDescription string `json:"value_description,omitempty"`
	ValueText        string `json:"value_text,omitempty"`
}

// Listing is the unified record for a scraped classifieds listing. Parsers
// produce it without enrichment fields; the detail enricher fills those in
// place before reconciliation. Once persisted it also carries the embedding
// and storage metadata.
type Listing struct {
	ID        string      `json:"id" badgerhold:"key"`
	Source    string      `json:"source" badgerholdIndex:"Source"`
	Partition string      `json:"partition" badgerholdIndex:"Partition"`
	Kind      ListingKind `json:"kind"`

	SourceID string      `json:"source_id,omitempty"`
	Title    string      `json:"title"`
	URL      string      `json:"url"`
	Price    PriceDetail `json:"price"`
	Images   []string    `json:"images,omitempty"`

	QuickInfos []QuickInfo `json:"quick_infos,omitempty"`
	Location   *Location   `json:"location,omitempty"`
	Badges     []string    `json:"badges,omitempty"`
	Phone      string      `json:"phone,omitempty"`

	// Property facts
	City         string `json:"city,omitempty"`
	District     string `json:"district,omitempty"`
	TradeType    string `json:"trade_type,omitempty"`
	EstateType   string `json:"estate_type,omitempty"`
	CategoryType string `json:"category_type,omitempty"`
	ListingType  string `json:"listing_type,omitempty"`
	RoomCount    string `json:"room_count,omitempty"`
	Floor        string `json:"floor,omitempty"`
	SquareMeter  int    `json:"square_meter,omitempty"`

	// Vehicle facts
	Brand        string `json:"brand,omitempty"`
	Model        string `json:"model,omitempty"`
	Year         string `json:"year,omitempty"`
	ListingDate  string `json:"listing_date,omitempty"`
	LocationText string `json:"location_text,omitempty"`

	// Enrichment (detail page), every field optional
	Description      string            `json:"description,omitempty"`
	Specs            map[string]string `json:"specs,omitempty"`
	ConditionRecords []ConditionRecord `json:"condition_records,omitempty"`
	TramerAmount     string            `json:"tramer_amount,omitempty"`
	Equipment        []string          `json:"equipment,omitempty"`
	NearbyPlaces     []NearbyCategory  `json:"nearby_places,omitempty"`

	Embedding []float32 `json:"embedding,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReconcileKey returns the composite identity used to match a freshly scraped
// listing against a persisted one. Keys are only meaningful within a single
// partition. Vehicle listings key on the site-native id; property listings
// key on the title plus the trade/estate/category names, since the property
// source's native ids churn between crawls.
func (l *Listing) ReconcileKey() string {
	if l.Kind == KindVehicle {
		return l.SourceID
	}
	return fmt.Sprintf("%s|%s|%s|%s", l.Title, l.TradeType, l.EstateType, l.CategoryType)
}

// HasIdentity reports whether the listing carries enough fields to be
// reconciled. Rows failing this are dropped by the parsers instead of being
// propagated as malformed records.
func (l *Listing) HasIdentity() bool {
	if l.URL == "" {
		return false
	}
	if l.Kind == KindVehicle {
		return l.SourceID != ""
	}
	return l.Title != ""
}
