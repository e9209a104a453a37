package services

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"errors"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

// In-memory doubles for the repository and infrastructure interfaces. The
// services under test receive a nil *gorm.DB, the fakes ignore it.

type memStore struct {
	users  map[uint]*domain.User
	creds  map[string]*domain.WebAuthnCredential
	nextID uint

	credLookups int
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uint]*domain.User),
		creds:  make(map[string]*domain.WebAuthnCredential),
		nextID: 1,
	}
}

func (s *memStore) addUser(u *domain.User) *domain.User {
	if u.Id == 0 {
		u.Id = s.nextID
		s.nextID++
	}
	s.users[u.Id] = u
	return u
}

type fakeUserQuery struct{ s *memStore }

func (f *fakeUserQuery) GetByID(_ *gorm.DB, id uint) (*domain.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserQuery) GetActiveByID(_ *gorm.DB, id uint) (*domain.User, error) {
	u, ok := f.s.users[id]
	if !ok || !u.IsActive {
		return nil, domain.ErrUserInactive
	}
	return u, nil
}

func (f *fakeUserQuery) GetActiveByAuthID(_ *gorm.DB, authID string) (*domain.User, error) {
	for _, u := range f.s.users {
		if u.AuthID == authID && u.IsActive {
			return u, nil
		}
	}
	return nil, domain.ErrUserInactive
}

func (f *fakeUserQuery) GetActiveByEmail(_ *gorm.DB, email string) (*domain.User, error) {
	for _, u := range f.s.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}
	return nil, domain.ErrUserInactive
}

func (f *fakeUserQuery) GetActiveWithCredentials(db *gorm.DB, id uint) (*domain.User, error) {
	u, err := f.GetActiveByID(db, id)
	if err != nil {
		return nil, err
	}
	loaded := *u
	loaded.Credentials = nil
	for _, c := range f.s.creds {
		if c.UserID == id && c.IsActive {
			loaded.Credentials = append(loaded.Credentials, *c)
		}
	}
	return &loaded, nil
}

type fakeUserCommand struct{ s *memStore }

func (f *fakeUserCommand) Create(_ *gorm.DB, entity *domain.User) (*domain.User, error) {
	return f.s.addUser(entity), nil
}

func (f *fakeUserCommand) Update(_ *gorm.DB, entity *domain.User) error {
	f.s.users[entity.Id] = entity
	return nil
}

func (f *fakeUserCommand) SetLoginArtifact(_ *gorm.DB, userID uint, emailOtp, hashedToken string, ttl time.Duration) error {
	u, ok := f.s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	expire := time.Now().Add(ttl)
	u.EmailOtp = emailOtp
	u.HashedToken = hashedToken
	u.OtpExpireDate = &expire
	return nil
}

func (f *fakeUserCommand) ClearLoginArtifact(_ *gorm.DB, userID uint) error {
	u, ok := f.s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.EmailOtp = ""
	u.HashedToken = ""
	u.OtpExpireDate = nil
	return nil
}

type fakeCredQuery struct{ s *memStore }

func (f *fakeCredQuery) GetByCredentialID(_ *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error) {
	f.s.credLookups++
	c, ok := f.s.creds[string(credentialID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeCredQuery) GetActiveByCredentialID(_ *gorm.DB, credentialID []byte) (*domain.WebAuthnCredential, error) {
	f.s.credLookups++
	c, ok := f.s.creds[string(credentialID)]
	if !ok || !c.IsActive {
		return nil, domain.ErrCredentialInvalid
	}
	return c, nil
}

func (f *fakeCredQuery) GetActiveByUserID(_ *gorm.DB, userID uint) ([]domain.WebAuthnCredential, error) {
	var out []domain.WebAuthnCredential
	for _, c := range f.s.creds {
		if c.UserID == userID && c.IsActive {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCredQuery) HasActiveCredentials(_ *gorm.DB, userID uint) (bool, error) {
	for _, c := range f.s.creds {
		if c.UserID == userID && c.IsActive {
			return true, nil
		}
	}
	return false, nil
}

type fakeCredCommand struct {
	s           *memStore
	touched     int
	deactivated int
}

func (f *fakeCredCommand) SaveCredential(_ *gorm.DB, userID uint, cred *webauthn.Credential, transports string, deviceName string) (*domain.WebAuthnCredential, error) {
	if _, exists := f.s.creds[string(cred.ID)]; exists {
		return nil, errors.New("duplicate key value violates unique constraint")
	}
	now := time.Now()
	row := &domain.WebAuthnCredential{
		ID:           f.s.nextID,
		UserID:       userID,
		CredentialID: cred.ID,
		PublicKey:    cred.PublicKey,
		SignCount:    cred.Authenticator.SignCount,
		Transports:   transports,
		DeviceName:   deviceName,
		IsActive:     true,
		CreatedAt:    &now,
	}
	f.s.nextID++
	f.s.creds[string(cred.ID)] = row
	return row, nil
}

func (f *fakeCredCommand) UpdateSignCountIfGreater(_ *gorm.DB, credentialID []byte, signCount uint32) (bool, error) {
	c, ok := f.s.creds[string(credentialID)]
	if !ok || !c.IsActive || c.SignCount >= signCount {
		return false, nil
	}
	now := time.Now()
	c.SignCount = signCount
	c.LastUsedAt = &now
	return true, nil
}

func (f *fakeCredCommand) TouchLastUsed(_ *gorm.DB, credentialID []byte) error {
	f.touched++
	if c, ok := f.s.creds[string(credentialID)]; ok {
		now := time.Now()
		c.LastUsedAt = &now
	}
	return nil
}

func (f *fakeCredCommand) Deactivate(_ *gorm.DB, credentialID []byte) error {
	f.deactivated++
	if c, ok := f.s.creds[string(credentialID)]; ok {
		c.IsActive = false
	}
	return nil
}

var errSessionMissing = errors.New("ceremony session missing or expired")

type fakeRedis struct {
	refresh       map[uint]string
	regSessions   map[uint]*webauthn.SessionData
	loginSessions map[string]*webauthn.SessionData
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		refresh:       make(map[uint]string),
		regSessions:   make(map[uint]*webauthn.SessionData),
		loginSessions: make(map[string]*webauthn.SessionData),
	}
}

func (f *fakeRedis) SetRefreshToken(userId uint, refreshToken string) error {
	f.refresh[userId] = refreshToken
	return nil
}

func (f *fakeRedis) GetRefreshToken(userId uint) (string, error) {
	token, ok := f.refresh[userId]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return token, nil
}

func (f *fakeRedis) DelRefreshToken(userId uint) {
	delete(f.refresh, userId)
}

func (f *fakeRedis) StoreRegistrationSessionRedis(userID uint, sessionData *webauthn.SessionData) error {
	f.regSessions[userID] = sessionData
	return nil
}

func (f *fakeRedis) TakeRegistrationSessionRedis(userID uint) (*webauthn.SessionData, error) {
	sd, ok := f.regSessions[userID]
	if !ok {
		return nil, errSessionMissing
	}
	delete(f.regSessions, userID)
	return sd, nil
}

func (f *fakeRedis) StoreLoginSessionRedis(sessionId string, sessionData *webauthn.SessionData) error {
	f.loginSessions[sessionId] = sessionData
	return nil
}

func (f *fakeRedis) TakeLoginSessionRedis(sessionId string) (*webauthn.SessionData, error) {
	sd, ok := f.loginSessions[sessionId]
	if !ok {
		return nil, errSessionMissing
	}
	delete(f.loginSessions, sessionId)
	return sd, nil
}

type fakeKafka struct {
	registered []request.CredentialRegisteredEvent
	replays    []request.ReplaySuspectedEvent
	artifacts  []request.LoginArtifactIssuedEvent
}

func (f *fakeKafka) SendCredentialRegisteredEvent(event *request.CredentialRegisteredEvent) error {
	f.registered = append(f.registered, *event)
	return nil
}

func (f *fakeKafka) SendReplaySuspectedEvent(event *request.ReplaySuspectedEvent) error {
	f.replays = append(f.replays, *event)
	return nil
}

func (f *fakeKafka) SendLoginArtifactIssuedEvent(event *request.LoginArtifactIssuedEvent) error {
	f.artifacts = append(f.artifacts, *event)
	return nil
}
