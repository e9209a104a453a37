package authstate

import (
	"biometric_auth_ms/domain"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	session    *Session
	err        error
	signedOut  int
	lastEmail  string
	lastSecret string
}

func (s *stubProvider) SignInWithPassword(email, password string) (*Session, error) {
	s.lastEmail, s.lastSecret = email, password
	return s.session, s.err
}

func (s *stubProvider) VerifyLoginCode(email, code string) (*Session, error) {
	s.lastEmail, s.lastSecret = email, code
	return s.session, s.err
}

func (s *stubProvider) SignOut(string) error {
	s.signedOut++
	return nil
}

type stubAssertor struct {
	userId       uint
	credentialId string
	err          error
}

func (s *stubAssertor) Assert() (uint, string, error) {
	return s.userId, s.credentialId, s.err
}

type stubBridge struct {
	email string
	code  string
	err   error

	gotUserId       uint
	gotCredentialId string
}

func (s *stubBridge) Bootstrap(userId uint, credentialId string) (string, string, error) {
	s.gotUserId, s.gotCredentialId = userId, credentialId
	return s.email, s.code, s.err
}

func memberSession(role string) *Session {
	return &Session{
		Profile: Profile{
			Id:     1,
			AuthID: "auth-uuid-1",
			Email:  "member@example.com",
			Role:   role,
		},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
}

func TestLoginLogout(t *testing.T) {
	provider := &stubProvider{session: memberSession("user")}
	ctrl := NewController(provider, nil, nil, zap.NewNop())

	var seen []*Profile
	ctrl.AddListener(func(p *Profile) { seen = append(seen, p) })

	assert.False(t, ctrl.IsAuthenticated())
	assert.Nil(t, ctrl.CurrentUser())

	profile, err := ctrl.Login("member@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "member@example.com", profile.Email)
	assert.True(t, ctrl.IsAuthenticated())
	assert.Equal(t, "auth-uuid-1", ctrl.CurrentUser().AuthID)

	ctrl.Logout()
	assert.False(t, ctrl.IsAuthenticated())
	assert.Nil(t, ctrl.CurrentUser())
	assert.Equal(t, 1, provider.signedOut)

	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
}

func TestLoginFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("bad password")}
	ctrl := NewController(provider, nil, nil, zap.NewNop())

	profile, err := ctrl.Login("member@example.com", "wrong")
	assert.Nil(t, profile)
	assert.Error(t, err)
	assert.False(t, ctrl.IsAuthenticated())
}

func TestLoginWithBiometric(t *testing.T) {
	provider := &stubProvider{session: memberSession("user")}
	assertor := &stubAssertor{userId: 7, credentialId: "AQID"}
	bridge := &stubBridge{email: "member@example.com", code: "123456"}
	ctrl := NewController(provider, assertor, bridge, zap.NewNop())

	profile, err := ctrl.LoginWithBiometric()

	require.NoError(t, err)
	assert.True(t, ctrl.IsAuthenticated())
	assert.Equal(t, "member@example.com", profile.Email)

	// The assertion result flows into the bridge, the bridged code into the
	// provider
	assert.Equal(t, uint(7), bridge.gotUserId)
	assert.Equal(t, "AQID", bridge.gotCredentialId)
	assert.Equal(t, "member@example.com", provider.lastEmail)
	assert.Equal(t, "123456", provider.lastSecret)
}

func TestLoginWithBiometric_NoCapability(t *testing.T) {
	ctrl := NewController(&stubProvider{}, nil, nil, zap.NewNop())

	_, err := ctrl.LoginWithBiometric()
	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
}

func TestLoginWithBiometric_Cancelled(t *testing.T) {
	provider := &stubProvider{session: memberSession("user")}
	assertor := &stubAssertor{err: domain.ErrCeremonyCancelled}
	bridge := &stubBridge{}
	ctrl := NewController(provider, assertor, bridge, zap.NewNop())

	_, err := ctrl.LoginWithBiometric()
	assert.ErrorIs(t, err, domain.ErrCeremonyCancelled)
	assert.False(t, ctrl.IsAuthenticated())
	assert.Zero(t, bridge.gotUserId)
}

func TestRoleHelpers(t *testing.T) {
	provider := &stubProvider{}
	ctrl := NewController(provider, nil, nil, zap.NewNop())

	assert.False(t, ctrl.IsAdmin())
	assert.False(t, ctrl.IsSuperuser())
	assert.False(t, ctrl.CanManageEvents())

	provider.session = memberSession("user")
	_, err := ctrl.Login("member@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, ctrl.IsAdmin())
	assert.False(t, ctrl.CanManageEvents())

	provider.session = memberSession("admin")
	_, err = ctrl.Login("admin@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, ctrl.IsAdmin())
	assert.False(t, ctrl.IsSuperuser())
	assert.True(t, ctrl.CanManageEvents())

	provider.session = memberSession("superuser")
	_, err = ctrl.Login("root@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, ctrl.IsAdmin())
	assert.True(t, ctrl.IsSuperuser())
	assert.True(t, ctrl.CanManageEvents())
}

// A listener that blows up must not take the login down or starve the
// listeners after it.
func TestListenerPanicIsolation(t *testing.T) {
	provider := &stubProvider{session: memberSession("user")}
	ctrl := NewController(provider, nil, nil, zap.NewNop())

	var called int
	ctrl.AddListener(func(*Profile) { panic("boom") })
	ctrl.AddListener(func(*Profile) { called++ })

	_, err := ctrl.Login("member@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, called)
}

func TestUnsubscribe(t *testing.T) {
	provider := &stubProvider{session: memberSession("user")}
	ctrl := NewController(provider, nil, nil, zap.NewNop())

	var called int
	unsubscribe := ctrl.AddListener(func(*Profile) { called++ })

	_, err := ctrl.Login("member@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, called)

	unsubscribe()
	unsubscribe()

	ctrl.Logout()
	assert.Equal(t, 1, called)
}
