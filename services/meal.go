package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"homebite-api/models"

	"gorm.io/gorm"
)

// MealService manages meal listings and the nearby-meal search.
type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db}
}

type MealInput struct {
	Name            string
	Description     string
	Price           float64
	Quantity        int
	ReadyTime       string
	DineInAvailable bool
	DinePrice       *float64
}

// Create lists a new meal for an approved cook. Meals go live immediately.
func (s *MealService) Create(ctx context.Context, p Principal, in MealInput) (*models.Meal, error) {
	profile, user, err := s.cookAccount(ctx, p)
	if err != nil {
		return nil, err
	}
	if !user.IsApproved {
		return nil, fmt.Errorf("%w: cook account pending admin approval", ErrNotOwner)
	}
	if in.Price <= 0 || in.Quantity < 1 {
		return nil, fmt.Errorf("%w: price and quantity must be positive", ErrValidation)
	}
	if in.DineInAvailable && in.DinePrice != nil && *in.DinePrice <= 0 {
		return nil, fmt.Errorf("%w: dine-in price must be positive", ErrValidation)
	}

	meal := models.Meal{
		CookID:            profile.ID,
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		QuantityAvailable: in.Quantity,
		ReadyTime:         in.ReadyTime,
		IsApproved:        true,
		IsActive:          true,
		DineInAvailable:   in.DineInAvailable,
		DinePrice:         in.DinePrice,
	}
	if err := s.db.WithContext(ctx).Create(&meal).Error; err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return &meal, nil
}

// Update edits a cook's own meal. Price changes do not touch existing
// orders — their total was snapshotted at creation.
func (s *MealService) Update(ctx context.Context, p Principal, mealID uint, in MealInput) (*models.Meal, error) {
	profile, _, err := s.cookAccount(ctx, p)
	if err != nil {
		return nil, err
	}

	var meal models.Meal
	err = s.db.WithContext(ctx).First(&meal, mealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: meal %d", ErrNotFound, mealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}
	if meal.CookID != profile.ID {
		return nil, fmt.Errorf("%w: meal belongs to another cook", ErrNotOwner)
	}
	if in.Price <= 0 || in.Quantity < 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	updates := map[string]interface{}{
		"name":               in.Name,
		"description":        in.Description,
		"price":              in.Price,
		"quantity_available": in.Quantity,
		"ready_time":         in.ReadyTime,
		"dine_in_available":  in.DineInAvailable,
		"dine_price":         in.DinePrice,
		"is_active":          in.Quantity > 0,
	}
	if err := s.db.WithContext(ctx).Model(&meal).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update meal: %w", err)
	}
	return &meal, nil
}

// Deactivate takes a cook's meal off the listing without deleting it.
func (s *MealService) Deactivate(ctx context.Context, p Principal, mealID uint) error {
	profile, _, err := s.cookAccount(ctx, p)
	if err != nil {
		return err
	}
	var meal models.Meal
	err = s.db.WithContext(ctx).First(&meal, mealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: meal %d", ErrNotFound, mealID)
	}
	if err != nil {
		return fmt.Errorf("failed to load meal: %w", err)
	}
	if meal.CookID != profile.ID {
		return fmt.Errorf("%w: meal belongs to another cook", ErrNotOwner)
	}
	if err := s.db.WithContext(ctx).Model(&meal).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to deactivate meal: %w", err)
	}
	return nil
}

// MyMeals returns all of a cook's meals, including inactive ones.
func (s *MealService) MyMeals(ctx context.Context, p Principal) ([]models.Meal, error) {
	profile, _, err := s.cookAccount(ctx, p)
	if err != nil {
		return nil, err
	}
	var meals []models.Meal
	err = s.db.WithContext(ctx).Where("cook_id = ?", profile.ID).
		Order("created_at desc").Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// BrowseFilter narrows the public meal listing.
type BrowseFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	DineIn   bool
}

// Browse returns all orderable meals matching the filter.
func (s *MealService) Browse(ctx context.Context, f BrowseFilter) ([]models.Meal, error) {
	query := s.db.WithContext(ctx).Preload("Cook.User").
		Where("is_active = ? AND is_approved = ?", true, true)
	if f.Search != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.DineIn {
		query = query.Where("dine_in_available = ?", true)
	}

	var meals []models.Meal
	if err := query.Order("created_at desc").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to browse meals: %w", err)
	}

	// Availability also depends on the cook's account status, which LIKE
	// clauses above cannot see.
	available := meals[:0]
	for i := range meals {
		if meals[i].Available() {
			available = append(available, meals[i])
		}
	}
	return available, nil
}

// Get returns a single meal with its cook.
func (s *MealService) Get(ctx context.Context, mealID uint) (*models.Meal, error) {
	var meal models.Meal
	err := s.db.WithContext(ctx).Preload("Cook.User").First(&meal, mealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: meal %d", ErrNotFound, mealID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load meal: %w", err)
	}
	return &meal, nil
}

// MealWithDistance annotates a meal with the kitchen's distance from the
// customer's office.
type MealWithDistance struct {
	models.Meal
	DistanceKm float64 `json:"distance_km"`
}

// Nearby returns available meals whose kitchen is within maxKm of the
// customer's office, sorted near to far. Customers without a stored location
// see every available meal; cooks without a stored location are skipped.
func (s *MealService) Nearby(ctx context.Context, p Principal, maxKm float64) ([]MealWithDistance, error) {
	if !p.IsCustomer() {
		return nil, fmt.Errorf("%w: only customers can view nearby meals", ErrNotOwner)
	}
	if maxKm <= 0 {
		maxKm = 2 // default search radius in km
	}

	var profile models.CustomerProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load customer profile: %w", err)
	}

	meals, err := s.Browse(ctx, BrowseFilter{})
	if err != nil {
		return nil, err
	}

	if !profile.HasLocation() {
		result := make([]MealWithDistance, 0, len(meals))
		for _, m := range meals {
			result = append(result, MealWithDistance{Meal: m})
		}
		return result, nil
	}

	var nearby []MealWithDistance
	for _, m := range meals {
		if !m.Cook.HasLocation() {
			continue
		}
		d := Haversine(*profile.OfficeLng, *profile.OfficeLat, *m.Cook.KitchenLng, *m.Cook.KitchenLat)
		if d <= maxKm {
			nearby = append(nearby, MealWithDistance{Meal: m, DistanceKm: d})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })
	return nearby, nil
}

// Haversine calculates the great circle distance in kilometers between two
// points given in decimal degrees, rounded to two decimals.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	const earthRadiusKm = 6371

	lon1, lat1 = lon1*math.Pi/180, lat1*math.Pi/180
	lon2, lat2 = lon2*math.Pi/180, lat2*math.Pi/180

	dlon := lon2 - lon1
	dlat := lat2 - lat1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return math.Round(earthRadiusKm*c*100) / 100
}

func (s *MealService) cookAccount(ctx context.Context, p Principal) (*models.CookProfile, *models.User, error) {
	if !p.IsCook() {
		return nil, nil, fmt.Errorf("%w: cook role required", ErrNotOwner)
	}
	var profile models.CookProfile
	err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", p.UserID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: no cook profile for this account", ErrNotOwner)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cook profile: %w", err)
	}
	return &profile, &profile.User, nil
}
