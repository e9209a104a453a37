package domain

import (
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

type User struct {
	Id            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"default:null" json:"updated_at"`
	AuthID        string     `gorm:"size:100;not null;unique" json:"auth_id"`
	Email         string     `gorm:"size:100;not null;unique" json:"email"`
	FirstName     string     `gorm:"size:100;not null" json:"first_name"`
	LastName      string     `gorm:"size:100;not null" json:"last_name"`
	Role          string     `gorm:"size:20;not null;default:user" json:"role"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	EmailOtp      string     `gorm:"size:100" json:"-"`
	HashedToken   string     `gorm:"size:100" json:"-"`
	OtpExpireDate *time.Time `gorm:"default:NULL" json:"-"`

	Credentials []WebAuthnCredential `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"webauthn_credentials"`
}

// WebAuthnID is the stable per-user handle written into resident credentials.
// The decimal byte encoding matches what the web client registered with.
func (u User) WebAuthnID() []byte {
	return []byte(strconv.Itoa(int(u.Id)))
}
func (u User) WebAuthnName() string {
	return u.Email
}
func (u User) WebAuthnDisplayName() string {
	return u.FirstName + " " + u.LastName
}
func (u User) WebAuthnCredentials() []webauthn.Credential {
	var creds []webauthn.Credential
	for _, c := range u.Credentials {
		if !c.IsActive {
			continue
		}
		creds = append(creds, webauthn.Credential{
			ID:        c.CredentialID,
			PublicKey: c.PublicKey,
			Authenticator: webauthn.Authenticator{
				SignCount: c.SignCount,
			},
		})
	}
	return creds
}
