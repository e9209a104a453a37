package command_repository

import (
	"biometric_auth_ms/domain"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

type ICredentialCommandRepository interface {
	SaveCredential(db *gorm.DB, userID uint, cred *webauthn.Credential, transports string, deviceName string) (*domain.WebAuthnCredential, error)
	UpdateSignCountIfGreater(db *gorm.DB, credentialID []byte, signCount uint32) (bool, error)
	TouchLastUsed(db *gorm.DB, credentialID []byte) error
	Deactivate(db *gorm.DB, credentialID []byte) error
}

type CredentialCommandRepository struct {
}

func NewCredentialCommandRepository() ICredentialCommandRepository {
	return &CredentialCommandRepository{}
}

func (c *CredentialCommandRepository) SaveCredential(db *gorm.DB, userID uint, cred *webauthn.Credential, transports string, deviceName string) (*domain.WebAuthnCredential, error) {
	row := domain.WebAuthnCredential{
		UserID:       userID,
		CredentialID: cred.ID,
		PublicKey:    cred.PublicKey,
		SignCount:    cred.Authenticator.SignCount,
		Transports:   transports,
		DeviceName:   deviceName,
		IsActive:     true,
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateSignCountIfGreater advances the signature counter with a single
// conditional UPDATE. The WHERE guard makes the compare-and-set atomic: of two
// concurrent assertions carrying the same counter only one can match, the
// other sees zero rows and is treated as a replay.
func (c *CredentialCommandRepository) UpdateSignCountIfGreater(db *gorm.DB, credentialID []byte, signCount uint32) (bool, error) {
	res := db.Model(&domain.WebAuthnCredential{}).
		Where("credential_id = ? AND is_active = ? AND sign_count < ?", credentialID, true, signCount).
		Updates(map[string]interface{}{
			"sign_count":   signCount,
			"last_used_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (c *CredentialCommandRepository) TouchLastUsed(db *gorm.DB, credentialID []byte) error {
	return db.Model(&domain.WebAuthnCredential{}).
		Where("credential_id = ?", credentialID).
		Update("last_used_at", time.Now()).Error
}

// Deactivate revokes a credential. Revoking an already inactive credential is
// a no-op, not an error.
func (c *CredentialCommandRepository) Deactivate(db *gorm.DB, credentialID []byte) error {
	return db.Model(&domain.WebAuthnCredential{}).
		Where("credential_id = ?", credentialID).
		Update("is_active", false).Error
}
