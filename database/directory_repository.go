package database

import (
	"context"
	"errors"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/models"

	"gorm.io/gorm"
)

// DirectoryRepository serves the reference data expenses point at.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *DirectoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("id").Find(&categories).Error
	return categories, err
}

func (r *DirectoryRepository) FindUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// UpdateFCMToken stores the device token used for push notifications.
// Existence is checked first; RowsAffected would hide an unchanged token on
// drivers that count changed rather than matched rows.
func (r *DirectoryRepository) UpdateFCMToken(ctx context.Context, userID uint, token string) error {
	db := r.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	return db.Model(&user).Update("fcm_token", token).Error
}
