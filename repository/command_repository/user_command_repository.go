package command_repository

import (
	"biometric_auth_ms/domain"
	"time"

	"gorm.io/gorm"
)

type IUserCommandRepository interface {
	Create(db *gorm.DB, entity *domain.User) (*domain.User, error)
	Update(db *gorm.DB, entity *domain.User) error
	SetLoginArtifact(db *gorm.DB, userID uint, emailOtp, hashedToken string, ttl time.Duration) error
	ClearLoginArtifact(db *gorm.DB, userID uint) error
}

type UserCommandRepository struct {
}

func NewUserCommandRepository() IUserCommandRepository {
	return &UserCommandRepository{}
}

func (u *UserCommandRepository) Create(db *gorm.DB, entity *domain.User) (*domain.User, error) {
	return entity, db.Create(entity).Error
}

func (u *UserCommandRepository) Update(db *gorm.DB, entity *domain.User) error {
	return db.Save(entity).Error
}

func (u *UserCommandRepository) SetLoginArtifact(db *gorm.DB, userID uint, emailOtp, hashedToken string, ttl time.Duration) error {
	expire := time.Now().Add(ttl)
	return db.Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email_otp":       emailOtp,
			"hashed_token":    hashedToken,
			"otp_expire_date": expire,
		}).Error
}

func (u *UserCommandRepository) ClearLoginArtifact(db *gorm.DB, userID uint) error {
	return db.Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"email_otp":       "",
			"hashed_token":    "",
			"otp_expire_date": nil,
		}).Error
}
