package services

import (
	"biometric_auth_ms/domain"
	"biometric_auth_ms/dtos/request"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func identityFixture(t *testing.T) (*memStore, *fakeRedis, *fakeKafka, IIdentityService) {
	t.Helper()
	store := newMemStore()
	redis := newFakeRedis()
	kafka := &fakeKafka{}
	jwtSvc := NewJWTService([]byte("test-secret"), "test-issuer", time.Hour, 24*time.Hour)
	identity := NewIdentityService(nil, &fakeUserQuery{s: store}, &fakeUserCommand{s: store}, jwtSvc, redis, kafka)
	return store, redis, kafka, identity
}

func seedMember(store *memStore, password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return store.addUser(&domain.User{
		AuthID:   "auth-uuid-1",
		Email:    "member@example.com",
		Password: string(hash),
		Role:     "user",
		IsActive: true,
	})
}

func TestIssueLoginArtifact(t *testing.T) {
	store, _, kafka, identity := identityFixture(t)
	user := seedMember(store, "pw")

	artifact, err := identity.IssueLoginArtifact(user.Email)

	require.NoError(t, err)
	assert.Equal(t, user.Email, artifact.Email)
	assert.Len(t, artifact.EmailOtp, 6)
	assert.Len(t, artifact.HashedToken, 64)

	// Persisted on the user row with an expiry
	assert.Equal(t, artifact.EmailOtp, user.EmailOtp)
	assert.Equal(t, artifact.HashedToken, user.HashedToken)
	require.NotNil(t, user.OtpExpireDate)
	assert.WithinDuration(t, time.Now().Add(artifactTTL), *user.OtpExpireDate, time.Minute)

	assert.Len(t, kafka.artifacts, 1)
}

func TestIssueLoginArtifact_UnknownEmail(t *testing.T) {
	_, _, _, identity := identityFixture(t)

	artifact, err := identity.IssueLoginArtifact("ghost@example.com")

	assert.Nil(t, artifact)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestVerifyLoginArtifact_SingleUse(t *testing.T) {
	store, _, _, identity := identityFixture(t)
	user := seedMember(store, "pw")

	artifact, err := identity.IssueLoginArtifact(user.Email)
	require.NoError(t, err)

	resp, err := identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{
		Email:    user.Email,
		EmailOTP: artifact.EmailOtp,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, user.AuthID, resp.User.AuthID)

	// The artifact is cleared on first use, a replayed code fails
	_, err = identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{
		Email:    user.Email,
		EmailOTP: artifact.EmailOtp,
	})
	assert.ErrorIs(t, err, domain.ErrArtifactInvalid)
}

func TestVerifyLoginArtifact_TokenVariant(t *testing.T) {
	store, _, _, identity := identityFixture(t)
	user := seedMember(store, "pw")

	artifact, err := identity.IssueLoginArtifact(user.Email)
	require.NoError(t, err)

	resp, err := identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{
		Email: user.Email,
		Token: artifact.HashedToken,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestVerifyLoginArtifact_Expired(t *testing.T) {
	store, _, _, identity := identityFixture(t)
	user := seedMember(store, "pw")

	artifact, err := identity.IssueLoginArtifact(user.Email)
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	user.OtpExpireDate = &expired

	_, err = identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{
		Email:    user.Email,
		EmailOTP: artifact.EmailOtp,
	})
	assert.ErrorIs(t, err, domain.ErrArtifactInvalid)
}

func TestVerifyLoginArtifact_WrongCode(t *testing.T) {
	store, _, _, identity := identityFixture(t)
	user := seedMember(store, "pw")

	_, err := identity.IssueLoginArtifact(user.Email)
	require.NoError(t, err)

	_, err = identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{
		Email:    user.Email,
		EmailOTP: "000000",
	})
	assert.ErrorIs(t, err, domain.ErrArtifactInvalid)

	_, err = identity.VerifyLoginArtifact(&request.VerifyLoginOtpRequest{Email: user.Email})
	assert.ErrorIs(t, err, domain.ErrArtifactInvalid)
}

func TestSignInWithPassword(t *testing.T) {
	store, redis, _, identity := identityFixture(t)
	user := seedMember(store, "correct horse")

	resp, err := identity.SignInWithPassword(&request.LoginLocalRequest{
		Email:    user.Email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.Id, resp.User.Id)
	assert.Equal(t, resp.Tokens.RefreshToken, redis.refresh[user.Id])

	_, err = identity.SignInWithPassword(&request.LoginLocalRequest{
		Email:    user.Email,
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	store, redis, _, identity := identityFixture(t)
	user := seedMember(store, "pw")

	resp, err := identity.SignInWithPassword(&request.LoginLocalRequest{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	tokens, err := identity.RefreshToken(&request.RefreshTokenReq{RefreshToken: resp.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.Equal(t, tokens.RefreshToken, redis.refresh[user.Id])

	// A signed-out refresh token is refused even though the JWT still parses
	require.NoError(t, identity.SignOut(user.Id))
	_, err = identity.RefreshToken(&request.RefreshTokenReq{RefreshToken: tokens.RefreshToken})
	assert.Error(t, err)
}

// A validly signed token whose subject is not numeric is refused instead of
// panicking the handler.
func TestRefreshToken_NonNumericSubject(t *testing.T) {
	_, _, _, identity := identityFixture(t)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-user-id",
		"iss": "test-issuer",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tokens, err := identity.RefreshToken(&request.RefreshTokenReq{RefreshToken: signed})
	assert.Nil(t, tokens)
	assert.Error(t, err)
}
