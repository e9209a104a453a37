package response

// BootstrapUser is the resolved identity echoed to the bridge caller. Id is
// the provider-side auth id, not the row id.
type BootstrapUser struct {
	Id    string `json:"id"`
	Email string `json:"email"`
}

type BootstrapResponse struct {
	Email    string        `json:"email"`
	EmailOtp string        `json:"email_otp"`
	Token    string        `json:"token"`
	User     BootstrapUser `json:"user"`
}
