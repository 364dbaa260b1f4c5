package model

import "time"

// Room represents a bookable room as stored in the `rooms` table.
// Pricing is a nightly rate in the configured currency.  ImageURL
// points at a file served from the upload directory.  Rooms are
// returned to clients as-is, so fields carry JSON tags.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name of the room.
//  Type          – room category (e.g. SINGLE, DOUBLE, SUITE).
//  PricePerNight – nightly rate.
//  Featured      – whether the room appears in the featured listing.
//  Description   – free-text description.
//  ImageURL      – URL of the room image, if one was uploaded.
//  Available     – whether the room can currently be booked at all.
//  City, Address – location of the room.
type Room struct {
	ID            uint64    `json:"id"`              // rooms.id
	Name          string    `json:"name"`            // rooms.name
	Type          string    `json:"type"`            // rooms.type
	PricePerNight float64   `json:"price_per_night"` // rooms.price_per_night
	Featured      bool      `json:"featured"`        // rooms.featured
	Description   string    `json:"description"`     // rooms.description
	ImageURL      *string   `json:"image_url"`       // rooms.image_url (nullable)
	Available     bool      `json:"available"`       // rooms.available
	City          string    `json:"city"`            // rooms.city
	Address       string    `json:"address"`         // rooms.address
	CreatedAt     time.Time `json:"created_at"`      // rooms.created_at
	UpdatedAt     time.Time `json:"updated_at"`      // rooms.updated_at
}
