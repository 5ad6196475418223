package services

import (
	"context"
	"errors"
	"fmt"

	"homebite-api/models"
	"homebite-api/statemachine"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService is the single source of truth for the order lifecycle: which
// transitions are legal, who may invoke them, and the side effects each one
// implies (price locking, stock reservation, rating eligibility).
type OrderService struct {
	db    *gorm.DB
	locks *Locks
}

func NewOrderService(db *gorm.DB, locks *Locks) *OrderService {
	return &OrderService{db: db, locks: locks}
}

type CreateOrderInput struct {
	MealID       uint
	Quantity     int
	DeliveryType models.DeliveryType
	Notes        string
	ClientToken  string // optional idempotency key (UUID); retried creates with the same token return the original order
}

// Create places a new order for the acting customer. The per-unit price is
// locked in at creation time and never recalculated. Stock is checked for
// every delivery type but only pickup/delivery orders consume portions —
// dine-in is cooked on demand at the cook's place.
//
// The returned bool is true when a new order was created and false when an
// idempotency token matched an existing order.
func (s *OrderService) Create(ctx context.Context, p Principal, in CreateOrderInput) (*models.Order, bool, error) {
	if !p.IsCustomer() {
		return nil, false, fmt.Errorf("%w: only customers place orders", ErrNotOwner)
	}
	if in.Quantity < 1 {
		return nil, false, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if !models.ValidDeliveryType(in.DeliveryType) {
		return nil, false, fmt.Errorf("%w: unknown delivery type %q", ErrValidation, in.DeliveryType)
	}
	if in.ClientToken != "" {
		if _, err := uuid.Parse(in.ClientToken); err != nil {
			return nil, false, fmt.Errorf("%w: client_token must be a UUID", ErrValidation)
		}
		if existing, err := s.findByToken(ctx, p, in.ClientToken); err != nil {
			return nil, false, err
		} else if existing != nil {
			return existing, false, nil
		}
	}

	// Stock check and decrement form one critical section per meal so that
	// concurrent creates cannot oversell.
	unlock := s.locks.Meal(in.MealID)
	defer unlock()

	var meal models.Meal
	if err := s.db.WithContext(ctx).Preload("Cook.User").First(&meal, in.MealID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("%w: meal %d", ErrNotFound, in.MealID)
		}
		return nil, false, fmt.Errorf("failed to load meal: %w", err)
	}
	if !meal.Available() {
		return nil, false, ErrMealUnavailable
	}
	if in.DeliveryType == models.DeliveryDineIn && !meal.DineInAvailable {
		return nil, false, fmt.Errorf("%w: %q does not offer dine-in", ErrInvalidDeliveryType, meal.Name)
	}
	if in.Quantity > meal.QuantityAvailable {
		return nil, false, fmt.Errorf("%w: only %d portions available, requested %d",
			ErrInsufficientStock, meal.QuantityAvailable, in.Quantity)
	}

	var customer models.User
	if err := s.db.WithContext(ctx).First(&customer, p.UserID).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load customer: %w", err)
	}

	order := models.Order{
		CustomerID:    p.UserID,
		MealID:        meal.ID,
		CookID:        meal.CookID,
		Quantity:      in.Quantity,
		TotalPrice:    meal.UnitPrice(in.DeliveryType) * float64(in.Quantity),
		Status:        models.StatusPending,
		DeliveryType:  in.DeliveryType,
		PaymentMethod: "cash",
		CustomerPhone: customer.Phone,
		Notes:         in.Notes,
	}
	if in.ClientToken != "" {
		token := in.ClientToken
		order.ClientToken = &token
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if in.DeliveryType != models.DeliveryDineIn {
			remaining := meal.QuantityAvailable - in.Quantity
			updates := map[string]interface{}{"quantity_available": remaining}
			if remaining == 0 {
				updates["is_active"] = false // sold out
			}
			if err := tx.Model(&models.Meal{}).Where("id = ?", meal.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: p.UserID,
			Note:      "Order placed by customer",
		}).Error
	})
	if err != nil {
		// A duplicate client_token means a concurrent retry won the insert;
		// surface the order that retry created.
		if in.ClientToken != "" {
			if existing, lookupErr := s.findByToken(ctx, p, in.ClientToken); lookupErr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}

	return &order, true, nil
}

func (s *OrderService) findByToken(ctx context.Context, p Principal, token string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("Meal").
		Where("client_token = ?", token).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up client token: %w", err)
	}
	if order.CustomerID != p.UserID {
		return nil, fmt.Errorf("%w: client_token already used", ErrValidation)
	}
	return &order, nil
}

// Confirm moves a pending order to confirmed. Only the cook who owns the
// referenced meal may confirm.
func (s *OrderService) Confirm(ctx context.Context, p Principal, orderID uint) (*models.Order, error) {
	return s.cookTransition(ctx, p, orderID, models.StatusConfirmed, "Order confirmed by cook")
}

// MarkReady moves a confirmed order to ready.
func (s *OrderService) MarkReady(ctx context.Context, p Principal, orderID uint) (*models.Order, error) {
	return s.cookTransition(ctx, p, orderID, models.StatusReady, "Order ready for pickup")
}

// Complete moves a ready order to its terminal completed state and bumps the
// cook's fulfilled-order counter.
func (s *OrderService) Complete(ctx context.Context, p Principal, orderID uint) (*models.Order, error) {
	return s.cookTransition(ctx, p, orderID, models.StatusCompleted, "Order completed")
}

// cookTransition applies a cook-side status change. The per-order lock
// serializes racing transitions so exactly one wins and the loser observes
// the post-transition state.
func (s *OrderService) cookTransition(ctx context.Context, p Principal, orderID uint, to models.OrderStatus, note string) (*models.Order, error) {
	if !p.IsCook() {
		return nil, fmt.Errorf("%w: cook role required", ErrNotOwner)
	}

	unlock := s.locks.Order(orderID)
	defer unlock()

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	profile, err := s.cookProfile(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if order.CookID != profile.ID {
		return nil, fmt.Errorf("%w: order %s belongs to another cook", ErrNotOwner, order.Reference())
	}

	if smErr := statemachine.CanTransition(order.Status, to, models.RoleCook); smErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, smErr.Error())
	}

	prev := order.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Update("status", to).Error; err != nil {
			return err
		}
		if to == models.StatusCompleted {
			if err := tx.Model(&models.CookProfile{}).Where("id = ?", profile.ID).
				Update("total_orders", gorm.Expr("total_orders + 1")).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   to,
			ChangedBy:  p.UserID,
			Note:       note,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order.Status = to
	return order, nil
}

// Cancel moves a pending or confirmed order to cancelled. Only the owning
// customer may cancel; ready and terminal orders cannot be cancelled.
// Portions reserved at creation go back on sale, reactivating a sold-out meal.
func (s *OrderService) Cancel(ctx context.Context, p Principal, orderID uint) (*models.Order, error) {
	if !p.IsCustomer() {
		return nil, fmt.Errorf("%w: customer role required", ErrNotOwner)
	}

	unlock := s.locks.Order(orderID)
	defer unlock()

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != p.UserID {
		return nil, fmt.Errorf("%w: order %s belongs to another customer", ErrNotOwner, order.Reference())
	}

	if smErr := statemachine.CanTransition(order.Status, models.StatusCancelled, models.RoleCustomer); smErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, smErr.Error())
	}

	// Lock ordering: order first, then meal. Create only ever takes the meal
	// lock, so the two cannot deadlock.
	unlockMeal := s.locks.Meal(order.MealID)
	defer unlockMeal()

	prev := order.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Update("status", models.StatusCancelled).Error; err != nil {
			return err
		}
		if order.DeliveryType != models.DeliveryDineIn {
			var meal models.Meal
			if err := tx.First(&meal, order.MealID).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{
				"quantity_available": meal.QuantityAvailable + order.Quantity,
			}
			if !meal.IsActive {
				updates["is_active"] = true // back on sale
			}
			if err := tx.Model(&models.Meal{}).Where("id = ?", meal.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   models.StatusCancelled,
			ChangedBy:  p.UserID,
			Note:       "Order cancelled by customer",
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	order.Status = models.StatusCancelled
	return order, nil
}

// Get returns a full order snapshot with meal, cook, and audit trail.
// Visible to the owning customer, the owning cook, and admins.
func (s *OrderService) Get(ctx context.Context, p Principal, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Meal").
		Preload("Customer").
		Preload("Cook.User").
		Preload("StatusHistory").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	if p.IsAdmin() || (p.IsCustomer() && order.CustomerID == p.UserID) {
		return &order, nil
	}
	if p.IsCook() {
		profile, err := s.cookProfile(ctx, p.UserID)
		if err == nil && order.CookID == profile.ID {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", ErrNotOwner, order.Reference())
}

// ListOrdersFilter narrows role-scoped order listings. Scope is one of
// "", "active" (pending only), "completed", or "history" (everything).
type ListOrdersFilter struct {
	Status models.OrderStatus
	Scope  string
}

// List returns orders visible to the principal: customers see their own,
// cooks see orders for their meals, admins see everything.
func (s *OrderService) List(ctx context.Context, p Principal, f ListOrdersFilter) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Meal").Preload("Customer")

	switch p.Role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", p.UserID)
	case models.RoleCook:
		profile, err := s.cookProfile(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		query = query.Where("cook_id = ?", profile.ID)
	case models.RoleAdmin:
		// no scoping
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrNotOwner, p.Role)
	}

	switch f.Scope {
	case "active":
		query = query.Where("status = ?", models.StatusPending)
	case "completed":
		query = query.Where("status = ?", models.StatusCompleted)
	case "", "history":
		// everything
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrValidation, f.Scope)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) load(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (s *OrderService) cookProfile(ctx context.Context, userID uint) (*models.CookProfile, error) {
	var profile models.CookProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no cook profile for this account", ErrNotOwner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cook profile: %w", err)
	}
	return &profile, nil
}
