package services

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"biometric_auth_ms/dtos/response"
	"biometric_auth_ms/repository/command_repository"
	"biometric_auth_ms/repository/query_repository"
	"biometric_auth_ms/util"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type IPasskeyService interface {
	RegisterStart(userID uint) (*protocol.CredentialCreation, error)
	RegisterFinish(userID uint, r *http.Request) (*domain.WebAuthnCredential, error)
	LoginStart() (*protocol.CredentialAssertion, string, error)
	LoginFinish(sessionID string, r *http.Request) (*response.AssertionResult, error)
	ListCredentials(userID uint) ([]response.CredentialInfo, error)
	HasCredentials(userID uint) (bool, error)
	RevokeCredential(userID uint, credentialID string) error
}

type PasskeyService struct {
	wa          *webauthn.WebAuthn
	db          *gorm.DB
	userQuery   query_repository.IUserQueryRepository
	credQuery   query_repository.ICredentialQueryRepository
	credCommand command_repository.ICredentialCommandRepository
	redis       IRedisService
	kafka       IKafkaService
}

func NewPasskeyService(wa *webauthn.WebAuthn, db *gorm.DB, userQuery query_repository.IUserQueryRepository, credQuery query_repository.ICredentialQueryRepository, credCommand command_repository.ICredentialCommandRepository, redis IRedisService, kafka IKafkaService) IPasskeyService {
	return &PasskeyService{wa: wa, db: db, userQuery: userQuery, credQuery: credQuery, credCommand: credCommand, redis: redis, kafka: kafka}
}

// RegisterStart begins a credential creation ceremony for an authenticated
// member. The relying party is scoped to the club hostname, the authenticator
// must be platform attached with a discoverable credential and user
// verification, attestation stays "none".
func (ps *PasskeyService) RegisterStart(userID uint) (*protocol.CredentialCreation, error) {
	user, err := ps.userQuery.GetActiveWithCredentials(ps.db, userID)
	if err != nil {
		return nil, err
	}

	options, sessionData, err := ps.wa.BeginRegistration(
		user,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			RequireResidentKey:      protocol.ResidentKeyRequired(),
			ResidentKey:             protocol.ResidentKeyRequirementRequired,
			UserVerification:        protocol.VerificationRequired,
		}),
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
	)
	if err != nil {
		return nil, err
	}

	if err := ps.redis.StoreRegistrationSessionRedis(user.Id, sessionData); err != nil {
		return nil, err
	}

	return options, nil
}

// RegisterFinish validates the attestation response and persists the new
// credential row. The device label is best effort, derived from the client
// User-Agent.
func (ps *PasskeyService) RegisterFinish(userID uint, r *http.Request) (*domain.WebAuthnCredential, error) {
	user, err := ps.userQuery.GetActiveWithCredentials(ps.db, userID)
	if err != nil {
		return nil, err
	}

	sessionData, err := ps.redis.TakeRegistrationSessionRedis(userID)
	if err != nil {
		return nil, err
	}

	cred, err := ps.wa.FinishRegistration(user, *sessionData, r)
	if err != nil {
		return nil, err
	}

	if _, err := ps.credQuery.GetByCredentialID(ps.db, cred.ID); err == nil {
		return nil, domain.ErrCredentialExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	transports := make([]string, 0, len(cred.Transport))
	for _, t := range cred.Transport {
		transports = append(transports, string(t))
	}

	row, err := ps.credCommand.SaveCredential(ps.db, user.Id, cred, strings.Join(transports, ","), util.DeviceNameFromUserAgent(r.UserAgent()))
	if err != nil {
		// A concurrent registration can slip past the lookup above and hit
		// the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key value") {
			return nil, domain.ErrCredentialExists
		}
		return nil, err
	}

	if err := ps.kafka.SendCredentialRegisteredEvent(&request.CredentialRegisteredEvent{
		UserId:       user.Id,
		Email:        user.Email,
		CredentialId: encodeCredentialID(cred.ID),
		DeviceName:   row.DeviceName,
	}); err != nil {
		log.Printf("Warning: failed to publish credential registered event: %v", err)
	}

	return row, nil
}

// LoginStart begins a discoverable assertion ceremony. No allow-list is sent,
// the authenticator offers its own resident credentials for this relying
// party.
func (ps *PasskeyService) LoginStart() (*protocol.CredentialAssertion, string, error) {
	sessionID, err := uuid.GenerateUUID()
	if err != nil {
		return nil, "", err
	}

	assertion, sessionData, err := ps.wa.BeginDiscoverableLogin(
		webauthn.WithUserVerification(protocol.VerificationRequired),
	)
	if err != nil {
		return nil, "", err
	}

	if err := ps.redis.StoreLoginSessionRedis(sessionID, sessionData); err != nil {
		return nil, "", err
	}

	return assertion, sessionID, nil
}

// LoginFinish verifies the assertion and resolves the owning member. It does
// not create a session; the caller takes the result to the bootstrap bridge.
func (ps *PasskeyService) LoginFinish(sessionID string, r *http.Request) (*response.AssertionResult, error) {
	sessionData, err := ps.redis.TakeLoginSessionRedis(sessionID)
	if err != nil {
		return nil, err
	}

	parsed, err := protocol.ParseCredentialRequestResponse(r)
	if err != nil {
		return nil, err
	}

	// Gate on the store before handing to the library: a revoked or unknown
	// credential is an invalid-credential outcome, not a ceremony failure.
	stored, err := ps.credQuery.GetActiveByCredentialID(ps.db, parsed.RawID)
	if err != nil {
		return nil, err
	}

	var owner *domain.User
	var handlerErr error
	cred, err := ps.wa.ValidateDiscoverableLogin(func(rawID, userHandle []byte) (webauthn.User, error) {
		id, err := strconv.Atoi(string(userHandle))
		if err != nil {
			handlerErr = domain.ErrCredentialInvalid
			return nil, handlerErr
		}
		user, err := ps.userQuery.GetActiveWithCredentials(ps.db, uint(id))
		if err != nil {
			handlerErr = err
			return nil, err
		}
		owner = user
		return user, nil
	}, *sessionData, parsed)
	if err != nil {
		// The library flattens handler errors into its own error type, and
		// reports a credential missing from the resolved user's set the same
		// way. Both mean the presented credential cannot authenticate anyone.
		if handlerErr != nil || isUnknownCredential(err) {
			return nil, domain.ErrCredentialInvalid
		}
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrCredentialInvalid
	}

	if err := ps.advanceSignCount(stored, cred.Authenticator.SignCount); err != nil {
		return nil, err
	}

	return &response.AssertionResult{
		UserId:       owner.Id,
		CredentialId: encodeCredentialID(cred.ID),
	}, nil
}

func isUnknownCredential(err error) bool {
	var pErr *protocol.Error
	return errors.As(err, &pErr) && strings.Contains(pErr.Details, "Unable to find the credential")
}

// advanceSignCount enforces the strictly increasing counter rule. A counter of
// zero on both sides means the authenticator does not implement one, which is
// allowed; anything else that fails the conditional update is treated as a
// cloned authenticator and the credential is pulled pending manual review.
func (ps *PasskeyService) advanceSignCount(stored *domain.WebAuthnCredential, reported uint32) error {
	if reported == 0 && stored.SignCount == 0 {
		return ps.credCommand.TouchLastUsed(ps.db, stored.CredentialID)
	}

	updated, err := ps.credCommand.UpdateSignCountIfGreater(ps.db, stored.CredentialID, reported)
	if err != nil {
		return err
	}
	if !updated {
		if err := ps.credCommand.Deactivate(ps.db, stored.CredentialID); err != nil {
			log.Printf("Warning: failed to deactivate credential after counter regression: %v", err)
		}
		if err := ps.kafka.SendReplaySuspectedEvent(&request.ReplaySuspectedEvent{
			UserId:        stored.UserID,
			CredentialId:  encodeCredentialID(stored.CredentialID),
			StoredCount:   stored.SignCount,
			ReportedCount: reported,
		}); err != nil {
			log.Printf("Warning: failed to publish replay suspected event: %v", err)
		}
		return domain.ErrReplaySuspected
	}
	return nil
}

func (ps *PasskeyService) ListCredentials(userID uint) ([]response.CredentialInfo, error) {
	creds, err := ps.credQuery.GetActiveByUserID(ps.db, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]response.CredentialInfo, 0, len(creds))
	for _, c := range creds {
		infos = append(infos, response.CredentialInfo{
			CredentialId: encodeCredentialID(c.CredentialID),
			DeviceName:   c.DeviceName,
			Transports:   c.Transports,
			CreatedAt:    c.CreatedAt,
			LastUsedAt:   c.LastUsedAt,
		})
	}
	return infos, nil
}

func (ps *PasskeyService) HasCredentials(userID uint) (bool, error) {
	return ps.credQuery.HasActiveCredentials(ps.db, userID)
}

// RevokeCredential soft deletes one of the caller's credentials. Revoking an
// already revoked credential succeeds without touching anything.
func (ps *PasskeyService) RevokeCredential(userID uint, credentialID string) error {
	raw, err := DecodeCredentialID(credentialID)
	if err != nil {
		return domain.ErrCredentialInvalid
	}
	cred, err := ps.credQuery.GetByCredentialID(ps.db, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrCredentialInvalid
		}
		return err
	}
	if cred.UserID != userID {
		return domain.ErrCredentialOwnership
	}
	return ps.credCommand.Deactivate(ps.db, raw)
}

// Credential ids travel as standard base64, matching what the web client
// stores from the creation ceremony.
func encodeCredentialID(id []byte) string {
	return base64.StdEncoding.EncodeToString(id)
}

func DecodeCredentialID(id string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(id)
}
