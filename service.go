package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biometric_auth_ms/config"
	"biometric_auth_ms/controller"
	"biometric_auth_ms/repository/command_repository"
	"biometric_auth_ms/repository/query_repository"
	"biometric_auth_ms/services"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	//WebAuthn Conf
	webAuthn *webauthn.WebAuthn

	//Logger
	logger *zap.Logger

	// Repository
	userQueryRepository       query_repository.IUserQueryRepository
	credentialQueryRepository query_repository.ICredentialQueryRepository
	userCommandRepository     command_repository.IUserCommandRepository
	credCommandRepository     command_repository.ICredentialCommandRepository

	// Service
	jwtService      services.IJWTService
	redisService    services.IRedisService
	kafkaService    services.IKafkaService
	identityService services.IIdentityService
	passkeyService  services.IPasskeyService
	bridgeService   services.IBridgeService

	// Controller
	authController          controller.IAuthController
	passkeyController       controller.IPasskeyController
	credentialController    controller.ICredentialController
	biometricAuthController controller.IBiometricAuthController
}

// NOTE: Service Start
func (s *service) Start() {
	s.logger = config.InitLogger()

	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis.Host)

	log.Info("WebAuthn config")
	s.webAuthn = config.InitWebAuthn()
	log.Info("WebAuthn configurated successfully")

	// NOTE: Dependency Injections
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	app := NewServer(s.authController, s.passkeyController, s.credentialController, s.biometricAuthController, s.logger).Start()

	log.Info("Server starting..")
	// NOTE: Server start with goroutine
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(app)
}

// NOTE: Depency Injection Operation
func (s *service) DependencyInjection() {
	// NOTE: JWT services configured and initialize...
	s.jwtService = services.NewJWTService(
		[]byte(config.Conf.Application.Security.Secret),
		config.Conf.Application.Security.Issuer,
		time.Duration(config.Conf.Application.Security.TokenValidityInSeconds)*time.Second,
		time.Duration(config.Conf.Application.Security.TokenValidityInSecondsForRememberMe)*time.Second,
	)
	// NOTE: Repositories Injections
	s.userQueryRepository = query_repository.NewUserQueryRepository()
	s.credentialQueryRepository = query_repository.NewCredentialQueryRepository()
	s.userCommandRepository = command_repository.NewUserCommandRepository()
	s.credCommandRepository = command_repository.NewCredentialCommandRepository()
	// NOTE: Services Injections
	s.redisService = services.NewRedisService(s.redisClient)
	s.kafkaService = services.NewKafkaService()
	s.identityService = services.NewIdentityService(s.dbConnection, s.userQueryRepository, s.userCommandRepository, s.jwtService, s.redisService, s.kafkaService)
	s.passkeyService = services.NewPasskeyService(s.webAuthn, s.dbConnection, s.userQueryRepository, s.credentialQueryRepository, s.credCommandRepository, s.redisService, s.kafkaService)
	s.bridgeService = services.NewBridgeService(s.dbConnection, s.userQueryRepository, s.credentialQueryRepository, s.credCommandRepository, s.identityService)
	// NOTE: Controllers Injections
	s.authController = controller.NewAuthController(s.identityService)
	s.passkeyController = controller.NewPasskeyController(s.passkeyService)
	s.credentialController = controller.NewCredentialController(s.passkeyService)
	s.biometricAuthController = controller.NewBiometricAuthController(s.bridgeService, s.logger)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// NOTE:Server Shutdown when keep signal
	<-sigChan
	log.Info("Shutting down server...")
	// NOTE: Creating context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.Shutdown(); err != nil {
		log.Error("error while shutting down app", err)
	}

	// NOTE: Shutdown Database connection
	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown", ctx.Err())
	}
}
