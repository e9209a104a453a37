package query_repository

import (
	"biometric_auth_ms/domain"
	"errors"

	"gorm.io/gorm"
)

type ICredentialQueryRepository interface {
	GetByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error)
	GetActiveByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error)
	GetActiveByUserID(db *gorm.DB, userID uint) ([]domain.WebAuthnCredential, error)
	HasActiveCredentials(db *gorm.DB, userID uint) (bool, error)
}

type CredentialQueryRepository struct{}

func NewCredentialQueryRepository() ICredentialQueryRepository {
	return &CredentialQueryRepository{}
}

func (c *CredentialQueryRepository) GetByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error) {
	var cred domain.WebAuthnCredential
	err := db.Where("credential_id = ?", credentialID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c *CredentialQueryRepository) GetActiveByCredentialID(db *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error) {
	var cred domain.WebAuthnCredential
	err := db.Where("credential_id = ? AND is_active = ?", credentialID, true).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCredentialInvalid
		}
		return nil, err
	}
	return &cred, nil
}

func (c *CredentialQueryRepository) GetActiveByUserID(db *gorm.DB, userID uint) ([]domain.WebAuthnCredential, error) {
	var creds []domain.WebAuthnCredential
	err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (c *CredentialQueryRepository) HasActiveCredentials(db *gorm.DB, userID uint) (bool, error) {
	var count int64
	err := db.Model(&domain.WebAuthnCredential{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
