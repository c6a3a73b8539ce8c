// Package store persists the checkout ledger with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fixxer/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrSessionNotFound = errors.New("checkout session not found")

// Open connects to MySQL and migrates the ledger tables.
func Open(dsn string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.CheckoutSession{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database ready", "tables", "checkout_sessions")
	return db, nil
}

// CheckoutRepository records hosted checkout sessions.
type CheckoutRepository struct {
	DB *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) *CheckoutRepository {
	return &CheckoutRepository{DB: db}
}

func (r *CheckoutRepository) Record(ctx context.Context, s *models.CheckoutSession) error {
	if err := r.DB.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}

func (r *CheckoutRepository) MarkCompleted(ctx context.Context, sessionID string) error {
	now := time.Now()
	res := r.DB.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"status":       models.CheckoutStatusCompleted,
			"completed_at": &now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update checkout session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	return nil
}

// Recent returns the latest sessions, newest first.
func (r *CheckoutRepository) Recent(ctx context.Context, limit int) ([]models.CheckoutSession, error) {
	var sessions []models.CheckoutSession
	if err := r.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch checkout sessions: %w", err)
	}
	return sessions, nil
}
