package domain

import "time"

type WebAuthnCredential struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	CredentialID []byte     `gorm:"not null;unique" json:"credential_id"`
	PublicKey    []byte     `gorm:"not null" json:"-"`
	SignCount    uint32     `gorm:"not null;default:0" json:"sign_count"`
	Transports   string     `gorm:"size:255;not null;default:''" json:"transports"`
	DeviceName   string     `gorm:"size:100;not null;default:''" json:"device_name"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LastUsedAt   *time.Time `gorm:"default:NULL" json:"last_used_at"`
}

func (WebAuthnCredential) TableName() string {
	return "webauthn_credentials"
}
