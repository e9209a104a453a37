package response

import "time"

type LoginResponse struct {
	Tokens Tokens    `json:"tokens"`
	User   LoginUser `json:"user"`
}

type LoginUser struct {
	Id        uint   `json:"id"`
	AuthID    string `json:"auth_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// AssertionResult is what a finished assertion ceremony proves: possession of
// the private key for one credential. It carries no session.
type AssertionResult struct {
	UserId       uint   `json:"userId"`
	CredentialId string `json:"credentialId"`
}

type CredentialInfo struct {
	CredentialId string     `json:"credential_id"`
	DeviceName   string     `json:"device_name"`
	Transports   string     `json:"transports"`
	CreatedAt    *time.Time `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at"`
}
