package models

import (
	"fmt"
	"time"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// DeliveryType determines how the customer receives the meal and which
// per-unit price applies.
type DeliveryType string

const (
	DeliveryPickup  DeliveryType = "pickup"
	DeliveryCourier DeliveryType = "delivery"
	DeliveryDineIn  DeliveryType = "dine_in"
)

// ValidDeliveryType reports whether t is one of the known delivery types.
func ValidDeliveryType(t DeliveryType) bool {
	switch t {
	case DeliveryPickup, DeliveryCourier, DeliveryDineIn:
		return true
	}
	return false
}

type Order struct {
	ID            uint                 `json:"id" gorm:"primaryKey"`
	CustomerID    uint                 `json:"customer_id" gorm:"not null;index"`
	Customer      User                 `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	MealID        uint                 `json:"meal_id" gorm:"not null;index"`
	Meal          Meal                 `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	CookID        uint                 `json:"cook_id" gorm:"not null;index"`
	Cook          CookProfile          `json:"cook,omitempty" gorm:"foreignKey:CookID"`
	Quantity      int                  `json:"quantity" gorm:"not null;default:1"`
	TotalPrice    float64              `json:"total_price" gorm:"not null"` // snapshot at creation, never recalculated
	Status        OrderStatus          `json:"status" gorm:"not null;default:'pending'"`
	DeliveryType  DeliveryType         `json:"delivery_type" gorm:"not null;default:'pickup'"`
	PaymentMethod string               `json:"payment_method" gorm:"default:'cash'"`
	CustomerPhone string               `json:"customer_phone"`
	Notes         string               `json:"notes"`
	Rating        *int                 `json:"rating"` // backfilled from the rating record
	Review        string               `json:"review"`
	ClientToken   *string              `json:"client_token,omitempty" gorm:"uniqueIndex"` // idempotency key for retried creates
	StatusHistory []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// Reference returns the customer-facing order id, e.g. "HB000042".
func (o *Order) Reference() string {
	return fmt.Sprintf("HB%06d", o.ID)
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// OrderStatusHistory tracks every status change for auditing
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // user ID who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
