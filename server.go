package main

import (
	"biometric_auth_ms/config"
	"biometric_auth_ms/controller"
	"biometric_auth_ms/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	AuthController          controller.IAuthController
	PasskeyController       controller.IPasskeyController
	CredentialController    controller.ICredentialController
	BiometricAuthController controller.IBiometricAuthController
	Logger                  *zap.Logger
}

// NOTE: Server Constructor
func NewServer(
	AuthController controller.IAuthController,
	PasskeyController controller.IPasskeyController,
	CredentialController controller.ICredentialController,
	BiometricAuthController controller.IBiometricAuthController,
	Logger *zap.Logger,
) *Server {
	return &Server{
		AuthController:          AuthController,
		PasskeyController:       PasskeyController,
		CredentialController:    CredentialController,
		BiometricAuthController: BiometricAuthController,
		Logger:                  Logger,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	// NOTE: Initialize Fiber Server
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware(s.Logger))
	app.Use(middleware.LoggingMiddleware(s.Logger))
	app.Use(middleware.GlobalRateLimiter())

	// NOTE: The bootstrap bridge keeps the edge-function path, outside the
	// versioned API so existing clients keep working unchanged.
	app.Options("/biometric-auth", s.BiometricAuthController.Preflight)
	app.Post("/biometric-auth", s.BiometricAuthController.Bootstrap)

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	authGroup := apiVersion.Group("/auth")
	authGroup.Post("/login", s.AuthController.Login)
	authGroup.Post("/verify-login-otp", s.AuthController.VerifyLoginOTP)
	authGroup.Post("/refresh-token", s.AuthController.RefreshToken)
	authGroup.Post("/logout", middleware.AuthMiddleware(), s.AuthController.Logout)

	passkeyGroup := apiVersion.Group("/passkey")
	passkeyGroup.Post("/register/start", middleware.AuthMiddleware(), s.PasskeyController.RegisterStart)
	passkeyGroup.Post("/register/finish", middleware.AuthMiddleware(), s.PasskeyController.RegisterFinish)
	passkeyGroup.Post("/login/start", s.PasskeyController.LoginStart)
	passkeyGroup.Post("/login/finish/:sessionId", s.PasskeyController.LoginFinish)

	credentialGroup := apiVersion.Group("/credentials", middleware.AuthMiddleware())
	credentialGroup.Get("/", s.CredentialController.ListCredentials)
	credentialGroup.Get("/registered", s.CredentialController.HasRegistered)
	credentialGroup.Delete("/:credentialId", s.CredentialController.RevokeCredential)

	return app
}
