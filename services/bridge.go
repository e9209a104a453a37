package services

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"biometric_auth_ms/dtos/response"
	"biometric_auth_ms/repository/command_repository"
	"biometric_auth_ms/repository/query_repository"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// IBridgeService converts a verified assertion into a one-time login artifact.
// It is the only privileged step in the subsystem: every call runs with the
// service's own authority, nothing here is reachable with browser credentials.
type IBridgeService interface {
	Bootstrap(req *request.BootstrapRequest) (*response.BootstrapResponse, error)
}

type BridgeService struct {
	db          *gorm.DB
	userQuery   query_repository.IUserQueryRepository
	credQuery   query_repository.ICredentialQueryRepository
	credCommand command_repository.ICredentialCommandRepository
	identity    IIdentityService
}

func NewBridgeService(db *gorm.DB, userQuery query_repository.IUserQueryRepository, credQuery query_repository.ICredentialQueryRepository, credCommand command_repository.ICredentialCommandRepository, identity IIdentityService) IBridgeService {
	return &BridgeService{db: db, userQuery: userQuery, credQuery: credQuery, credCommand: credCommand, identity: identity}
}

// Bootstrap walks the verification chain in order, each gate short-circuits:
// active credential, ownership, active user, artifact issuance. last_used_at
// is only touched after issuance succeeded, a failed issuance must not mark
// the credential used.
func (b *BridgeService) Bootstrap(req *request.BootstrapRequest) (*response.BootstrapResponse, error) {
	if req.UserId == 0 || req.CredentialId == "" {
		return nil, domain.ErrValidation
	}

	rawID, err := DecodeCredentialID(req.CredentialId)
	if err != nil {
		return nil, domain.ErrCredentialInvalid
	}

	cred, err := b.credQuery.GetActiveByCredentialID(b.db, rawID)
	if err != nil {
		return nil, err
	}

	if cred.UserID != req.UserId {
		return nil, domain.ErrCredentialOwnership
	}

	user, err := b.userQuery.GetActiveByID(b.db, req.UserId)
	if err != nil {
		return nil, err
	}

	artifact, err := b.identity.IssueLoginArtifact(user.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	if artifact.EmailOtp == "" && artifact.HashedToken == "" {
		return nil, domain.ErrUpstreamFailure
	}

	if err := b.credCommand.TouchLastUsed(b.db, rawID); err != nil {
		log.Printf("Warning: failed to update credential last_used_at: %v", err)
	}

	return &response.BootstrapResponse{
		Email:    user.Email,
		EmailOtp: artifact.EmailOtp,
		Token:    artifact.HashedToken,
		User: response.BootstrapUser{
			Id:    user.AuthID,
			Email: user.Email,
		},
	}, nil
}
