package services_test

import (
	"testing"

	"homebite-api/config"
	"homebite-api/models"
	"homebite-api/services"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixture wires the services against a fresh in-memory database.
type fixture struct {
	db      *gorm.DB
	orders  *services.OrderService
	ratings *services.RatingService
	meals   *services.MealService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every goroutine on the same in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))

	locks := services.NewLocks()
	return &fixture{
		db:      db,
		orders:  services.NewOrderService(db, locks),
		ratings: services.NewRatingService(db, locks),
		meals:   services.NewMealService(db),
	}
}

// seedCook creates an approved cook account and returns its principal and profile.
func (f *fixture) seedCook(t *testing.T, name string) (services.Principal, models.CookProfile) {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleCook,
		IsApproved:   true,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&user).Error)
	profile := models.CookProfile{UserID: user.ID}
	require.NoError(t, f.db.Create(&profile).Error)
	return services.Principal{UserID: user.ID, Role: models.RoleCook}, profile
}

// seedCustomer creates a customer account and returns its principal.
func (f *fixture) seedCustomer(t *testing.T, name string) services.Principal {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleCustomer,
		Phone:        "0300-1234567",
		IsApproved:   true,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&user).Error)
	require.NoError(t, f.db.Create(&models.CustomerProfile{UserID: user.ID}).Error)
	return services.Principal{UserID: user.ID, Role: models.RoleCustomer}
}

// seedAdmin creates an admin account and returns its principal.
func (f *fixture) seedAdmin(t *testing.T) services.Principal {
	t.Helper()
	user := models.User{
		Name:         "admin",
		Email:        "admin@example.com",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		IsApproved:   true,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return services.Principal{UserID: user.ID, Role: models.RoleAdmin}
}

type mealOpts struct {
	price     float64
	stock     int
	dineIn    bool
	dinePrice *float64
}

func (f *fixture) seedMeal(t *testing.T, cook models.CookProfile, opts mealOpts) models.Meal {
	t.Helper()
	meal := models.Meal{
		CookID:            cook.ID,
		Name:              "Chicken Biryani",
		Price:             opts.price,
		QuantityAvailable: opts.stock,
		IsApproved:        true,
		IsActive:          true,
		DineInAvailable:   opts.dineIn,
		DinePrice:         opts.dinePrice,
	}
	require.NoError(t, f.db.Create(&meal).Error)
	return meal
}

func (f *fixture) reloadOrder(t *testing.T, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, f.db.First(&order, id).Error)
	return order
}

func (f *fixture) reloadMeal(t *testing.T, id uint) models.Meal {
	t.Helper()
	var meal models.Meal
	require.NoError(t, f.db.First(&meal, id).Error)
	return meal
}

func ptr(v float64) *float64 { return &v }
