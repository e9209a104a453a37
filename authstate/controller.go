// Package authstate tracks who is signed in on a client device and fans the
// answer out to interested screens. It is an explicit context object, not a
// package global, so a host application owns its lifetime and two instances
// never share state.
package authstate

import (
	"biometric_auth_ms/domain"
	"sync"

	"go.uber.org/zap"
)

// Profile is the signed-in member as the client sees it.
type Profile struct {
	Id        uint   `json:"id"`
	AuthID    string `json:"auth_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Session is a profile plus the token pair backing it.
type Session struct {
	Profile      Profile
	AccessToken  string
	RefreshToken string
}

// Provider is the identity backend: password login, one-time code exchange,
// sign out.
type Provider interface {
	SignInWithPassword(email, password string) (*Session, error)
	VerifyLoginCode(email, code string) (*Session, error)
	SignOut(accessToken string) error
}

// Assertor runs a biometric assertion ceremony on the device. It returns
// domain.ErrCapabilityUnavailable when the platform has no authenticator and
// domain.ErrCeremonyCancelled when the member dismisses the prompt.
type Assertor interface {
	Assert() (userId uint, credentialId string, err error)
}

// Bridge exchanges a verified assertion for a one-time login code.
type Bridge interface {
	Bootstrap(userId uint, credentialId string) (email, code string, err error)
}

// Listener is called with the new profile after every state change, nil on
// logout.
type Listener func(*Profile)

type Controller struct {
	provider Provider
	assertor Assertor
	bridge   Bridge
	logger   *zap.Logger

	mu        sync.Mutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

func NewController(provider Provider, assertor Assertor, bridge Bridge, logger *zap.Logger) *Controller {
	return &Controller{
		provider:  provider,
		assertor:  assertor,
		bridge:    bridge,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
}

// Login signs in with email and password.
func (ac *Controller) Login(email, password string) (*Profile, error) {
	session, err := ac.provider.SignInWithPassword(email, password)
	if err != nil {
		return nil, err
	}
	return ac.setSession(session), nil
}

// LoginWithBiometric runs the full chain: assertion ceremony, privileged
// bootstrap, code exchange. Tokens never transit the bootstrap response, the
// code is exchanged at the provider like any other one-time code.
func (ac *Controller) LoginWithBiometric() (*Profile, error) {
	if ac.assertor == nil || ac.bridge == nil {
		return nil, domain.ErrCapabilityUnavailable
	}

	userId, credentialId, err := ac.assertor.Assert()
	if err != nil {
		return nil, err
	}

	email, code, err := ac.bridge.Bootstrap(userId, credentialId)
	if err != nil {
		return nil, err
	}

	session, err := ac.provider.VerifyLoginCode(email, code)
	if err != nil {
		return nil, err
	}
	return ac.setSession(session), nil
}

// Logout signs out upstream best effort and always clears local state.
func (ac *Controller) Logout() {
	ac.mu.Lock()
	session := ac.current
	ac.current = nil
	ac.mu.Unlock()

	if session != nil {
		if err := ac.provider.SignOut(session.AccessToken); err != nil {
			ac.logger.Warn("sign out failed upstream", zap.Error(err))
		}
	}
	ac.notify(nil)
}

func (ac *Controller) CurrentUser() *Profile {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.current == nil {
		return nil
	}
	profile := ac.current.Profile
	return &profile
}

func (ac *Controller) IsAuthenticated() bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.current != nil
}

func (ac *Controller) IsAdmin() bool {
	return ac.hasRole("admin", "superuser")
}

func (ac *Controller) IsSuperuser() bool {
	return ac.hasRole("superuser")
}

func (ac *Controller) CanManageEvents() bool {
	return ac.hasRole("admin", "superuser")
}

func (ac *Controller) hasRole(roles ...string) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.current == nil {
		return false
	}
	for _, r := range roles {
		if ac.current.Profile.Role == r {
			return true
		}
	}
	return false
}

// AddListener registers a state change listener and returns its unsubscribe
// func. Unsubscribing twice is harmless.
func (ac *Controller) AddListener(l Listener) func() {
	ac.mu.Lock()
	id := ac.nextID
	ac.nextID++
	ac.listeners[id] = l
	ac.mu.Unlock()

	return func() {
		ac.mu.Lock()
		delete(ac.listeners, id)
		ac.mu.Unlock()
	}
}

func (ac *Controller) setSession(session *Session) *Profile {
	ac.mu.Lock()
	ac.current = session
	profile := session.Profile
	ac.mu.Unlock()

	ac.notify(&profile)
	return &profile
}

// notify calls every listener synchronously. A listener that panics is logged
// and skipped, it never takes the auth flow down with it.
func (ac *Controller) notify(profile *Profile) {
	ac.mu.Lock()
	listeners := make([]Listener, 0, len(ac.listeners))
	for _, l := range ac.listeners {
		listeners = append(listeners, l)
	}
	ac.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					ac.logger.Error("auth listener panicked", zap.Any("panic", r))
				}
			}()
			l(profile)
		}()
	}
}
