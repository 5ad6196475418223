package services_test

import (
	"context"
	"sync"
	"testing"

	"homebite-api/models"
	"homebite-api/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 250, stock: 5})

	_, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 0, DeliveryType: models.DeliveryPickup,
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: "teleport",
	})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: 9999, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 6, DeliveryType: models.DeliveryPickup,
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	// dine_in on a meal without dine-in support fails at creation
	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryDineIn,
	})
	assert.ErrorIs(t, err, services.ErrInvalidDeliveryType)

	// cooks cannot place orders
	_, _, err = f.orders.Create(ctx, cook, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	assert.ErrorIs(t, err, services.ErrNotOwner)

	// deactivated meals cannot be ordered
	require.NoError(t, f.db.Model(&models.Meal{}).Where("id = ?", meal.ID).Update("is_active", false).Error)
	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	assert.ErrorIs(t, err, services.ErrMealUnavailable)
}

func TestCreateOrderLocksPriceAndStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 250, stock: 3})

	order, created, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 2, DeliveryType: models.DeliveryPickup, Notes: "less spicy please",
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 500.0, order.TotalPrice)
	assert.Equal(t, "cash", order.PaymentMethod)
	assert.Equal(t, "0300-1234567", order.CustomerPhone)

	// stock reserved at creation
	assert.Equal(t, 1, f.reloadMeal(t, meal.ID).QuantityAvailable)

	// a later price change never touches the frozen total
	require.NoError(t, f.db.Model(&models.Meal{}).Where("id = ?", meal.ID).Update("price", 999).Error)
	assert.Equal(t, 500.0, f.reloadOrder(t, order.ID).TotalPrice)
}

func TestCreateDineInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 250, stock: 2, dineIn: true, dinePrice: ptr(300)})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 2, DeliveryType: models.DeliveryDineIn,
	})
	require.NoError(t, err)
	assert.Equal(t, 600.0, order.TotalPrice)

	// dine-in portions are cooked on demand and never consume listed stock
	assert.Equal(t, 2, f.reloadMeal(t, meal.ID).QuantityAvailable)
}

func TestLifecycleMonotonicity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)

	order, err = f.orders.Confirm(ctx, cook, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)

	order, err = f.orders.MarkReady(ctx, cook, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, order.Status)

	order, err = f.orders.Complete(ctx, cook, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, order.Status)

	// completed is terminal
	_, err = f.orders.Cancel(ctx, customer, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	// full audit trail: placed + three transitions
	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("id").Find(&history).Error)
	require.Len(t, history, 4)
	assert.Equal(t, models.StatusPending, history[0].ToStatus)
	assert.Equal(t, models.StatusCompleted, history[3].ToStatus)

	// completion bumps the cook's fulfilled-order counter
	var profile models.CookProfile
	require.NoError(t, f.db.First(&profile, cookProfile.ID).Error)
	assert.Equal(t, 1, profile.TotalOrders)
}

func TestTransitionIdempotentRejection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)

	_, err = f.orders.Confirm(ctx, cook, order.ID)
	require.NoError(t, err)

	// confirm again: rejected, not silently accepted
	_, err = f.orders.Confirm(ctx, cook, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, models.StatusConfirmed, f.reloadOrder(t, order.ID).Status)
}

func TestRoleGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	otherCook, _ := f.seedCook(t, "othercook")
	customer := f.seedCustomer(t, "customer")
	otherCustomer := f.seedCustomer(t, "othercustomer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)

	// another cook cannot confirm, status unchanged
	_, err = f.orders.Confirm(ctx, otherCook, order.ID)
	assert.ErrorIs(t, err, services.ErrNotOwner)
	assert.Equal(t, models.StatusPending, f.reloadOrder(t, order.ID).Status)

	// a customer cannot drive cook transitions
	_, err = f.orders.Confirm(ctx, customer, order.ID)
	assert.ErrorIs(t, err, services.ErrNotOwner)

	// another customer cannot cancel
	_, err = f.orders.Cancel(ctx, otherCustomer, order.ID)
	assert.ErrorIs(t, err, services.ErrNotOwner)
	assert.Equal(t, models.StatusPending, f.reloadOrder(t, order.ID).Status)

	// the owning cook cannot cancel either — cancel is customer-only
	_, err = f.orders.Cancel(ctx, cook, order.ID)
	assert.ErrorIs(t, err, services.ErrNotOwner)
}

func TestCancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 2})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 2, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)

	// order sold out the meal
	soldOut := f.reloadMeal(t, meal.ID)
	assert.Equal(t, 0, soldOut.QuantityAvailable)
	assert.False(t, soldOut.IsActive)

	// cancellable from confirmed, explicitly
	_, err = f.orders.Confirm(ctx, cook, order.ID)
	require.NoError(t, err)
	order, err = f.orders.Cancel(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)

	// portions are back on sale
	restored := f.reloadMeal(t, meal.ID)
	assert.Equal(t, 2, restored.QuantityAvailable)
	assert.True(t, restored.IsActive)

	// cancelled is terminal
	_, err = f.orders.Cancel(ctx, customer, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestCancelRejectedOnceReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)
	_, err = f.orders.Confirm(ctx, cook, order.ID)
	require.NoError(t, err)
	_, err = f.orders.MarkReady(ctx, cook, order.ID)
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, customer, order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, models.StatusReady, f.reloadOrder(t, order.ID).Status)
}

// Mirrors the end-to-end scenario: pickup at base price, cancellable from
// confirmed, and mark_ready rejected on a fresh pending order.
func TestOrderScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "a")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 250, stock: 2, dineIn: true, dinePrice: ptr(300)})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 250.0, order.TotalPrice)

	order, err = f.orders.Confirm(ctx, cook, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)

	// confirmed orders are still cancellable
	order, err = f.orders.Cancel(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)

	// mark_ready on a fresh pending order: wrong predecessor state
	fresh, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)
	_, err = f.orders.MarkReady(ctx, cook, fresh.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
}

func TestNoOverselling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, cookProfile := f.seedCook(t, "cook")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 3})

	customers := make([]services.Principal, 4)
	for i := range customers {
		customers[i] = f.seedCustomer(t, "customer"+string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	results := make([]error, len(customers))
	for i, p := range customers {
		wg.Add(1)
		go func(i int, p services.Principal) {
			defer wg.Done()
			_, _, err := f.orders.Create(ctx, p, services.CreateOrderInput{
				MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
			})
			results[i] = err
		}(i, p)
	}
	wg.Wait()

	successes, stockFailures := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, services.ErrInsufficientStock)
			stockFailures++
		}
	}
	assert.Equal(t, 3, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, 0, f.reloadMeal(t, meal.ID).QuantityAvailable)
}

func TestIdempotentCreateWithClientToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	other := f.seedCustomer(t, "other")
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	token := uuid.NewString()
	in := services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup, ClientToken: token,
	}

	first, created, err := f.orders.Create(ctx, customer, in)
	require.NoError(t, err)
	assert.True(t, created)

	// a retried create returns the original order, not a duplicate
	replay, created, err := f.orders.Create(ctx, customer, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, replay.ID)

	var total int64
	require.NoError(t, f.db.Model(&models.Order{}).Where("customer_id = ?", customer.UserID).Count(&total).Error)
	assert.EqualValues(t, 1, total)

	// stock reserved only once
	assert.Equal(t, 4, f.reloadMeal(t, meal.ID).QuantityAvailable)

	// another customer cannot replay someone else's token
	_, _, err = f.orders.Create(ctx, other, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	// malformed token rejected
	_, _, err = f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup, ClientToken: "not-a-uuid",
	})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestGetAndListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cook, cookProfile := f.seedCook(t, "cook")
	customer := f.seedCustomer(t, "customer")
	stranger := f.seedCustomer(t, "stranger")
	admin := f.seedAdmin(t)
	meal := f.seedMeal(t, cookProfile, mealOpts{price: 100, stock: 5})

	order, _, err := f.orders.Create(ctx, customer, services.CreateOrderInput{
		MealID: meal.ID, Quantity: 1, DeliveryType: models.DeliveryPickup,
	})
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, customer, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, cook, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, admin, order.ID)
	assert.NoError(t, err)
	_, err = f.orders.Get(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, services.ErrNotOwner)
	_, err = f.orders.Get(ctx, customer, 9999)
	assert.ErrorIs(t, err, services.ErrNotFound)

	mine, err := f.orders.List(ctx, customer, services.ListOrdersFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	active, err := f.orders.List(ctx, customer, services.ListOrdersFilter{Scope: "active"})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	completed, err := f.orders.List(ctx, customer, services.ListOrdersFilter{Scope: "completed"})
	require.NoError(t, err)
	assert.Empty(t, completed)

	theirs, err := f.orders.List(ctx, stranger, services.ListOrdersFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)

	forCook, err := f.orders.List(ctx, cook, services.ListOrdersFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, forCook, 1)
}
