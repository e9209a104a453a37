package controller

import (
	"biometric_auth_ms/config"
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"biometric_auth_ms/services"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BiometricAuthController exposes the privileged session-bootstrap endpoint.
// It keeps the wire contract of the hosted edge function it replaces:
// permissive CORS, an apikey header identifying the anonymous client role,
// and a fixed JSON error shape per status.
type IBiometricAuthController interface {
	Preflight(c *fiber.Ctx) error
	Bootstrap(c *fiber.Ctx) error
}

type BiometricAuthController struct {
	bridge services.IBridgeService
	logger *zap.Logger
}

func NewBiometricAuthController(bridge services.IBridgeService, logger *zap.Logger) IBiometricAuthController {
	return &BiometricAuthController{bridge: bridge, logger: logger}
}

func corsHeaders(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

func (bc *BiometricAuthController) Preflight(c *fiber.Ctx) error {
	corsHeaders(c)
	return c.Status(fiber.StatusOK).SendString("ok")
}

func (bc *BiometricAuthController) Bootstrap(c *fiber.Ctx) error {
	corsHeaders(c)

	if c.Get("apikey") != config.Conf.Application.Bridge.AnonKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid API key",
		})
	}

	var req request.BootstrapRequest
	if err := c.BodyParser(&req); err != nil {
		bc.logger.Error("Unexpected error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}

	resp, err := bc.bridge.Bootstrap(&req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Missing required fields: userId and credentialId",
			})
		case errors.Is(err, domain.ErrCredentialInvalid):
			bc.logger.Warn("Credential verification failed", zap.Uint("user_id", req.UserId))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or inactive credential",
			})
		case errors.Is(err, domain.ErrCredentialOwnership):
			bc.logger.Warn("User ID mismatch", zap.Uint("user_id", req.UserId))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Credential does not belong to this user",
			})
		case errors.Is(err, domain.ErrUserInactive):
			bc.logger.Warn("User not found or inactive", zap.Uint("user_id", req.UserId))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found or inactive",
			})
		case errors.Is(err, domain.ErrUpstreamFailure):
			bc.logger.Error("Failed to generate login artifact", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to create session",
				"details": err.Error(),
			})
		}
		bc.logger.Error("Unexpected error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Internal server error",
			"details": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
