package services

import (
	"context"
	"errors"
	"fmt"

	"homebite-api/models"

	"gorm.io/gorm"
)

// RatingService attaches at most one rating per completed order and keeps the
// cook's running average up to date.
type RatingService struct {
	db    *gorm.DB
	locks *Locks
}

func NewRatingService(db *gorm.DB, locks *Locks) *RatingService {
	return &RatingService{db: db, locks: locks}
}

type AttachRatingInput struct {
	OrderID    uint
	MealRating int
	CookRating int
	Comment    string
}

// Attach records the customer's rating for a completed order. A second
// attempt fails with ErrDuplicateRating and leaves the first rating intact.
func (s *RatingService) Attach(ctx context.Context, p Principal, in AttachRatingInput) (*models.Rating, error) {
	if !p.IsCustomer() {
		return nil, fmt.Errorf("%w: only customers submit ratings", ErrNotOwner)
	}
	if in.MealRating < 1 || in.MealRating > 5 || in.CookRating < 1 || in.CookRating > 5 {
		return nil, fmt.Errorf("%w: ratings must be between 1 and 5", ErrValidation)
	}

	unlock := s.locks.Order(in.OrderID)
	defer unlock()

	var order models.Order
	err := s.db.WithContext(ctx).First(&order, in.OrderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, in.OrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.CustomerID != p.UserID {
		return nil, fmt.Errorf("%w: order %s belongs to another customer", ErrNotOwner, order.Reference())
	}
	if order.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed orders can be rated", ErrInvalidTransition)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Rating{}).
		Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateRating
	}

	rating := models.Rating{
		OrderID:    order.ID,
		CustomerID: p.UserID,
		MealID:     order.MealID,
		CookID:     order.CookID,
		MealRating: in.MealRating,
		CookRating: in.CookRating,
		Comment:    in.Comment,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rating).Error; err != nil {
			return err
		}

		// Fold the new cook rating into the running average.
		var cook models.CookProfile
		if err := tx.First(&cook, order.CookID).Error; err != nil {
			return err
		}
		total := cook.Rating*float64(cook.TotalRatings) + float64(in.CookRating)
		cook.TotalRatings++
		cook.Rating = total / float64(cook.TotalRatings)
		if err := tx.Model(&models.CookProfile{}).Where("id = ?", cook.ID).Updates(map[string]interface{}{
			"rating":        cook.Rating,
			"total_ratings": cook.TotalRatings,
		}).Error; err != nil {
			return err
		}

		// Backfill the order's display fields.
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"rating": in.MealRating,
			"review": in.Comment,
		}).Error
	})
	if err != nil {
		// The unique index on order_id catches a racing duplicate that got
		// past the count check.
		var existing int64
		s.db.WithContext(ctx).Model(&models.Rating{}).Where("order_id = ?", order.ID).Count(&existing)
		if existing > 0 {
			return nil, ErrDuplicateRating
		}
		return nil, fmt.Errorf("failed to save rating: %w", err)
	}

	return &rating, nil
}

// ListGiven returns the ratings a customer has submitted, newest first.
func (s *RatingService) ListGiven(ctx context.Context, p Principal) ([]models.Rating, error) {
	if !p.IsCustomer() {
		return nil, fmt.Errorf("%w: only customers have given ratings", ErrNotOwner)
	}
	var ratings []models.Rating
	err := s.db.WithContext(ctx).Preload("Meal").Preload("Cook.User").
		Where("customer_id = ?", p.UserID).
		Order("created_at desc").Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

// ListReceived returns the ratings a cook's meals have received, newest first.
func (s *RatingService) ListReceived(ctx context.Context, p Principal) ([]models.Rating, error) {
	if !p.IsCook() {
		return nil, fmt.Errorf("%w: only cooks receive ratings", ErrNotOwner)
	}
	var profile models.CookProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no cook profile for this account", ErrNotOwner)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cook profile: %w", err)
	}

	var ratings []models.Rating
	err = s.db.WithContext(ctx).Preload("Meal").Preload("Customer").
		Where("cook_id = ?", profile.ID).
		Order("created_at desc").Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}
