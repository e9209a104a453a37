package request

type LoginLocalRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyLoginOtpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	EmailOTP string `json:"email_otp"`
	Token    string `json:"token"`
}

type RefreshTokenReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
