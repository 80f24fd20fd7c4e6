package access

import (
	"testing"
	"time"

	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TokenIssuer_WhenIssuedToken_ShouldResolveToSamePrincipal(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	session, err := issuer.Issue(Company(42))
	require.NoError(t, err)

	principal, err := issuer.Resolve(session.Token)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(Company(42), principal)
	assert.Equal(Company(42), session.Principal)
}

func Test_TokenIssuer_WhenTokenEmpty_ShouldResolveAnonymous(t *testing.T) {
	principal, err := NewTokenIssuer("secret", time.Hour).Resolve("")

	assert.NoError(t, err)
	assert.True(t, principal.IsAnonymous())
}

func Test_TokenIssuer_WhenSignedWithOtherSecret_ShouldBeUnauthorized(t *testing.T) {
	session, err := NewTokenIssuer("other", time.Hour).Issue(Student(1))
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Resolve(session.Token)

	assert.ErrorIs(t, err, failures.ErrUnauthorized)
}

func Test_TokenIssuer_WhenExpired_ShouldBeUnauthorized(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	session, err := issuer.Issue(Admin(1))
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Resolve(session.Token)

	assert.ErrorIs(t, err, failures.ErrUnauthorized)
}

func Test_TokenIssuer_WhenGarbage_ShouldBeUnauthorized(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Resolve("not-a-token")

	assert.ErrorIs(t, err, failures.ErrUnauthorized)
}

func Test_TokenIssuer_WhenAnonymous_ShouldRefuseToIssue(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Issue(Anonymous())

	assert.ErrorIs(t, err, failures.ErrUnauthorized)
}

func Test_BcryptHasher_ShouldVerifyOnlyOriginalPassword(t *testing.T) {
	assert := assert.New(t)
	hasher := NewBcryptHasher(4)

	hash, err := hasher.Hash("hunter2")

	assert.NoError(err)
	assert.NotEqual("hunter2", hash)
	assert.True(hasher.Verify(hash, "hunter2"))
	assert.False(hasher.Verify(hash, "hunter3"))
}
