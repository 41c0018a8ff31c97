package repository

import (
	"context"

	"mealmate/internal/domain"
	"mealmate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Ensure inserts the user with the default trust score unless a row with that
// id already exists. Concurrent callers race on the primary key and the loser
// does nothing.
func (r *UserRepository) Ensure(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.User{ID: userID, TrustScore: domain.DefaultTrustScore}).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateTrustScore(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Model(u).Update("trust_score", u.TrustScore).Error
}
