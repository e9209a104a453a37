package authstate

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"biometric_auth_ms/dtos/response"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// BridgeClient calls the privileged bootstrap endpoint over HTTP. The anon
// key identifies the client role, it grants nothing beyond this endpoint.
type BridgeClient struct {
	BaseURL string
	AnonKey string
}

func (bc *BridgeClient) Bootstrap(userId uint, credentialId string) (string, string, error) {
	body, err := json.Marshal(request.BootstrapRequest{UserId: userId, CredentialId: credentialId})
	if err != nil {
		return "", "", err
	}

	status, respBody, err := postJSON(bc.BaseURL+"/biometric-auth", body, map[string]string{"apikey": bc.AnonKey})
	if err != nil {
		return "", "", err
	}

	switch status {
	case fiber.StatusOK:
	case fiber.StatusBadRequest:
		return "", "", domain.ErrValidation
	case fiber.StatusUnauthorized:
		return "", "", domain.ErrCredentialInvalid
	case fiber.StatusForbidden:
		return "", "", domain.ErrCredentialOwnership
	case fiber.StatusNotFound:
		return "", "", domain.ErrUserInactive
	default:
		return "", "", fmt.Errorf("%w: bootstrap returned %d", domain.ErrUpstreamFailure, status)
	}

	var resp response.BootstrapResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", "", err
	}

	code := resp.EmailOtp
	if code == "" {
		code = resp.Token
	}
	if code == "" {
		return "", "", domain.ErrUpstreamFailure
	}
	return resp.Email, code, nil
}

// ProviderClient is the HTTP identity backend, rooted at the versioned API.
type ProviderClient struct {
	BaseURL string
}

func (pc *ProviderClient) SignInWithPassword(email, password string) (*Session, error) {
	body, err := json.Marshal(request.LoginLocalRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return pc.exchange(pc.BaseURL+"/auth/login", body)
}

// VerifyLoginCode sends the one-time code in both artifact fields; the server
// accepts whichever variant was issued.
func (pc *ProviderClient) VerifyLoginCode(email, code string) (*Session, error) {
	body, err := json.Marshal(request.VerifyLoginOtpRequest{Email: email, EmailOTP: code, Token: code})
	if err != nil {
		return nil, err
	}
	return pc.exchange(pc.BaseURL+"/auth/verify-login-otp", body)
}

func (pc *ProviderClient) SignOut(accessToken string) error {
	status, _, err := postJSON(pc.BaseURL+"/auth/logout", nil, map[string]string{fiber.HeaderAuthorization: "Bearer " + accessToken})
	if err != nil {
		return err
	}
	if status != fiber.StatusOK {
		return fmt.Errorf("logout returned %d", status)
	}
	return nil
}

func (pc *ProviderClient) exchange(url string, body []byte) (*Session, error) {
	status, respBody, err := postJSON(url, body, nil)
	if err != nil {
		return nil, err
	}
	if status == fiber.StatusUnauthorized {
		return nil, domain.ErrArtifactInvalid
	}
	if status != fiber.StatusOK {
		return nil, fmt.Errorf("login returned %d", status)
	}

	var resp response.LoginResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, err
	}
	return &Session{
		Profile: Profile{
			Id:        resp.User.Id,
			AuthID:    resp.User.AuthID,
			Email:     resp.User.Email,
			FirstName: resp.User.FirstName,
			LastName:  resp.User.LastName,
			Role:      resp.User.Role,
		},
		AccessToken:  resp.Tokens.AccessToken,
		RefreshToken: resp.Tokens.RefreshToken,
	}, nil
}

func postJSON(url string, body []byte, headers map[string]string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fiber.MethodPost)
	req.Header.SetContentType(fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.SetBody(body)

	if err := fasthttp.Do(req, resp); err != nil {
		return 0, nil, err
	}

	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}
