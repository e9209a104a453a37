package services

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"biometric_auth_ms/dtos/response"
	"biometric_auth_ms/repository/command_repository"
	"biometric_auth_ms/repository/query_repository"
	"biometric_auth_ms/util"
	"errors"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const artifactTTL = 5 * time.Minute

// LoginArtifact is the normalized result of artifact issuance. Earlier
// provider versions returned the token material in different places, the
// identity service is the single point that owns this shape now.
type LoginArtifact struct {
	Email       string
	EmailOtp    string
	HashedToken string
}

type IIdentityService interface {
	IssueLoginArtifact(email string) (*LoginArtifact, error)
	VerifyLoginArtifact(req *request.VerifyLoginOtpRequest) (*response.LoginResponse, error)
	SignInWithPassword(req *request.LoginLocalRequest) (*response.LoginResponse, error)
	RefreshToken(req *request.RefreshTokenReq) (*response.Tokens, error)
	SignOut(userID uint) error
}

type IdentityService struct {
	db      *gorm.DB
	query   query_repository.IUserQueryRepository
	command command_repository.IUserCommandRepository
	jwt     IJWTService
	redis   IRedisService
	kafka   IKafkaService
}

func NewIdentityService(db *gorm.DB, query query_repository.IUserQueryRepository, command command_repository.IUserCommandRepository, jwt IJWTService, redis IRedisService, kafka IKafkaService) IIdentityService {
	return &IdentityService{db: db, query: query, command: command, jwt: jwt, redis: redis, kafka: kafka}
}

// IssueLoginArtifact mints a short-lived one-time code plus a link-style token
// for the given verified email, without requiring a password. Only the
// privileged bridge calls this.
func (i *IdentityService) IssueLoginArtifact(email string) (*LoginArtifact, error) {
	user, err := i.query.GetActiveByEmail(i.db, email)
	if err != nil {
		return nil, err
	}

	otp := util.GenerateOTP()
	token := util.GenerateHashedToken()
	if err := i.command.SetLoginArtifact(i.db, user.Id, otp, token, artifactTTL); err != nil {
		return nil, err
	}

	if err := i.kafka.SendLoginArtifactIssuedEvent(&request.LoginArtifactIssuedEvent{Email: user.Email}); err != nil {
		log.Printf("Warning: failed to publish login artifact event: %v", err)
	}

	return &LoginArtifact{Email: user.Email, EmailOtp: otp, HashedToken: token}, nil
}

// VerifyLoginArtifact exchanges a one-time code (or its token variant) for a
// real session. The artifact row is cleared before tokens are issued so a
// second presentation of the same code always fails.
func (i *IdentityService) VerifyLoginArtifact(req *request.VerifyLoginOtpRequest) (*response.LoginResponse, error) {
	if req.EmailOTP == "" && req.Token == "" {
		return nil, domain.ErrArtifactInvalid
	}

	user, err := i.query.GetActiveByEmail(i.db, req.Email)
	if err != nil {
		return nil, err
	}

	if user.OtpExpireDate == nil || time.Now().After(*user.OtpExpireDate) {
		return nil, domain.ErrArtifactInvalid
	}
	matchesOtp := req.EmailOTP != "" && user.EmailOtp == req.EmailOTP
	matchesToken := req.Token != "" && user.HashedToken == req.Token
	if !matchesOtp && !matchesToken {
		return nil, domain.ErrArtifactInvalid
	}

	if err := i.command.ClearLoginArtifact(i.db, user.Id); err != nil {
		return nil, err
	}

	return i.issueSession(user)
}

func (i *IdentityService) SignInWithPassword(req *request.LoginLocalRequest) (*response.LoginResponse, error) {
	user, err := i.query.GetActiveByEmail(i.db, req.Email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, errors.New("invalid email or password")
	}
	return i.issueSession(user)
}

func (i *IdentityService) RefreshToken(req *request.RefreshTokenReq) (*response.Tokens, error) {
	token, err := i.jwt.ParseJWT(req.RefreshToken)
	if err != nil {
		return nil, err
	}
	claims, err := i.jwt.GetClaims(token)
	if err != nil {
		return nil, err
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("token subject is not a user id")
	}
	userID := uint(sub)

	stored, err := i.redis.GetRefreshToken(userID)
	if err != nil || stored != req.RefreshToken {
		return nil, errors.New("refresh token revoked or unknown")
	}

	user, err := i.query.GetActiveByID(i.db, userID)
	if err != nil {
		return nil, err
	}

	tokens, err := i.jwt.GenerateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := i.redis.SetRefreshToken(user.Id, tokens.RefreshToken); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (i *IdentityService) SignOut(userID uint) error {
	i.redis.DelRefreshToken(userID)
	return nil
}

func (i *IdentityService) issueSession(user *domain.User) (*response.LoginResponse, error) {
	tokens, err := i.jwt.GenerateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := i.redis.SetRefreshToken(user.Id, tokens.RefreshToken); err != nil {
		return nil, err
	}
	return &response.LoginResponse{
		Tokens: *tokens,
		User: response.LoginUser{
			Id:        user.Id,
			AuthID:    user.AuthID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}, nil
}
