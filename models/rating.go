package models

import "time"

// Rating is a customer's one-time review of a completed order.
// The unique index on OrderID enforces at most one rating per order.
type Rating struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"uniqueIndex;not null"`
	Order      Order       `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerID uint        `json:"customer_id" gorm:"not null;index"`
	Customer   User        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	MealID     uint        `json:"meal_id" gorm:"not null;index"`
	Meal       Meal        `json:"meal,omitempty" gorm:"foreignKey:MealID"`
	CookID     uint        `json:"cook_id" gorm:"not null;index"`
	Cook       CookProfile `json:"cook,omitempty" gorm:"foreignKey:CookID"`
	MealRating int         `json:"meal_rating" gorm:"not null"` // 1-5
	CookRating int         `json:"cook_rating" gorm:"not null"` // 1-5
	Comment    string      `json:"comment"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
