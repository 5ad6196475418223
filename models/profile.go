package models

import "time"

// CookProfile holds a home cook's kitchen location and aggregate stats.
// Rating is a running average maintained by the ratings service.
type CookProfile struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User           User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	KitchenAddress string    `json:"kitchen_address"`
	KitchenLat     *float64  `json:"kitchen_lat"`
	KitchenLng     *float64  `json:"kitchen_lng"`
	Bio            string    `json:"bio"`
	Rating         float64   `json:"rating" gorm:"default:0"`
	TotalRatings   int       `json:"total_ratings" gorm:"default:0"`
	TotalOrders    int       `json:"total_orders" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasLocation reports whether the kitchen coordinates are set.
func (p *CookProfile) HasLocation() bool {
	return p.KitchenLat != nil && p.KitchenLng != nil
}

// CustomerProfile holds a customer's office location used for nearby-meal search.
type CustomerProfile struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User          User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	OfficeAddress string    `json:"office_address"`
	OfficeLat     *float64  `json:"office_lat"`
	OfficeLng     *float64  `json:"office_lng"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasLocation reports whether the office coordinates are set.
func (p *CustomerProfile) HasLocation() bool {
	return p.OfficeLat != nil && p.OfficeLng != nil
}
