package controller

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/services"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type IPasskeyController interface {
	RegisterStart(c *fiber.Ctx) error
	RegisterFinish(c *fiber.Ctx) error
	LoginStart(c *fiber.Ctx) error
	LoginFinish(c *fiber.Ctx) error
}

type PasskeyController struct {
	service services.IPasskeyService
}

func NewPasskeyController(service services.IPasskeyService) IPasskeyController {
	return &PasskeyController{service: service}
}

func (pc *PasskeyController) RegisterStart(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user id"})
	}

	options, err := pc.service.RegisterStart(userID)
	if err != nil {
		return c.Status(passkeyStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(options)
}

func (pc *PasskeyController) RegisterFinish(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid user id"})
	}

	// go-webauthn parses the attestation from a net/http request
	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	cred, err := pc.service.RegisterFinish(userID, req)
	if err != nil {
		return c.Status(passkeyStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "registered", "device_name": cred.DeviceName})
}

func (pc *PasskeyController) LoginStart(c *fiber.Ctx) error {
	options, sessionID, err := pc.service.LoginStart()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"publicKey": options.Response,
		"sessionId": sessionID,
	})
}

func (pc *PasskeyController) LoginFinish(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessionId required"})
	}

	req := new(http.Request)
	if err := fasthttpadaptor.ConvertRequest(c.Context(), req, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to convert request"})
	}

	result, err := pc.service.LoginFinish(sessionID, req)
	if err != nil {
		return c.Status(passkeyStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

func passkeyStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCredentialExists):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrCredentialInvalid), errors.Is(err, domain.ErrReplaySuspected):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUserInactive):
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func currentUserID(c *fiber.Ctx) (uint, error) {
	v, ok := c.Locals("userId").(float64)
	if !ok {
		return 0, errors.New("no user in context")
	}
	return uint(v), nil
}
