package query_repository

import (
	"biometric_auth_ms/domain"
	"errors"

	"gorm.io/gorm"
)

type IUserQueryRepository interface {
	GetByID(db *gorm.DB, id uint) (*domain.User, error)
	GetActiveByID(db *gorm.DB, id uint) (*domain.User, error)
	GetActiveByAuthID(db *gorm.DB, authID string) (*domain.User, error)
	GetActiveByEmail(db *gorm.DB, email string) (*domain.User, error)
	GetActiveWithCredentials(db *gorm.DB, id uint) (*domain.User, error)
}

type UserQueryRepository struct{}

func NewUserQueryRepository() IUserQueryRepository {
	return &UserQueryRepository{}
}

func (u *UserQueryRepository) GetByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetActiveByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.Where("id = ? AND is_active = ?", id, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserInactive
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetActiveByAuthID(db *gorm.DB, authID string) (*domain.User, error) {
	var user domain.User
	err := db.Where("auth_id = ? AND is_active = ?", authID, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserInactive
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetActiveByEmail(db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserInactive
		}
		return nil, err
	}
	return &user, nil
}

func (u *UserQueryRepository) GetActiveWithCredentials(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	err := db.Preload("Credentials", "is_active = ?", true).
		Where("id = ? AND is_active = ?", id, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserInactive
		}
		return nil, err
	}
	return &user, nil
}
