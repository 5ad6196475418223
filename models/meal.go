package models

import "time"

type Meal struct {
	ID                uint        `json:"id" gorm:"primaryKey"`
	CookID            uint        `json:"cook_id" gorm:"not null;index"`
	Cook              CookProfile `json:"cook,omitempty" gorm:"foreignKey:CookID"`
	Name              string      `json:"name" gorm:"not null"`
	Description       string      `json:"description"`
	Price             float64     `json:"price" gorm:"not null"`
	QuantityAvailable int         `json:"quantity_available" gorm:"default:1"`
	ReadyTime         string      `json:"ready_time"` // "HH:MM" when the meal will be ready
	IsApproved        bool        `json:"is_approved" gorm:"default:false"`
	IsActive          bool        `json:"is_active" gorm:"default:true"`
	DineInAvailable   bool        `json:"dine_in_available" gorm:"default:false"`
	DinePrice         *float64    `json:"dine_price"` // per-unit dine-in price, falls back to Price
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Available reports whether the meal can be ordered right now.
// Requires Cook.User to be preloaded.
func (m *Meal) Available() bool {
	return m.IsActive &&
		m.IsApproved &&
		m.QuantityAvailable > 0 &&
		m.Cook.User.IsApproved &&
		m.Cook.User.IsActive
}

// UnitPrice returns the per-unit price for a delivery type.
// Dine-in orders use DinePrice when the cook has set one.
func (m *Meal) UnitPrice(deliveryType DeliveryType) float64 {
	if deliveryType == DeliveryDineIn && m.DinePrice != nil {
		return *m.DinePrice
	}
	return m.Price
}
