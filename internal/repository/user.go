// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"mingle/internal/cache"
	"mingle/internal/models"

	"gorm.io/gorm"
)

// ListQuery describes a candidate listing request.
type ListQuery struct {
	// ExcludeID removes the caller from their own listing.
	ExcludeID uint
	// Gender filters candidates by gender; empty means no gender filter
	// (BOTH-interest and admin callers).
	Gender models.Gender
	// Page is 1-based; values below 1 are treated as page 1.
	Page int
	// PerPage is the page size; -1 returns the full filtered set.
	PerPage int
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListVisible(ctx context.Context, q ListQuery) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// ListVisible returns the candidate listing: admin accounts are never shown,
// the excluded caller never sees themselves, and ordering is by name then id
// so pagination is stable across requests.
func (r *userRepository) ListVisible(ctx context.Context, q ListQuery) ([]models.User, error) {
	users := []models.User{}

	tx := r.db.WithContext(ctx).
		Where("id <> ?", q.ExcludeID).
		Where("type <> ?", models.UserTypeAdmin).
		Order("name asc").
		Order("id asc")

	if q.Gender != "" {
		tx = tx.Where("gender = ?", q.Gender)
	}

	if q.PerPage != -1 {
		page := q.Page
		if page <= 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.PerPage).Limit(q.PerPage)
	}

	if err := tx.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Username already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite phrasing for tests
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}
