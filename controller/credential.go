package controller

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/services"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type ICredentialController interface {
	ListCredentials(c *fiber.Ctx) error
	HasRegistered(c *fiber.Ctx) error
	RevokeCredential(c *fiber.Ctx) error
}

type CredentialController struct {
	service services.IPasskeyService
}

func NewCredentialController(service services.IPasskeyService) ICredentialController {
	return &CredentialController{service: service}
}

func (cc *CredentialController) ListCredentials(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}
	creds, err := cc.service.ListCredentials(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(creds)
}

func (cc *CredentialController) HasRegistered(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}
	registered, err := cc.service.HasCredentials(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"registered": registered})
}

func (cc *CredentialController) RevokeCredential(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
	}
	credentialID := c.Params("credentialId")
	if credentialID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "credentialId required"})
	}

	if err := cc.service.RevokeCredential(userID, credentialID); err != nil {
		switch {
		case errors.Is(err, domain.ErrCredentialOwnership):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, domain.ErrCredentialInvalid):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "revoked"})
}
