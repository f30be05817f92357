package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqua/auth"
)

func newTestService() *auth.Service {
	verifier := auth.NewStaticVerifier("juan", "361045")
	return auth.NewService(verifier, []byte("test-secret"), time.Hour)
}

func TestVerifier(t *testing.T) {
	verifier := auth.NewStaticVerifier("juan", "361045")

	assert.NoError(t, verifier.Verify(auth.Credentials{Username: "juan", Password: "361045"}))
	assert.NoError(t, verifier.Verify(auth.Credentials{Username: "Juan", Password: "361045"}),
		"usernames compare case-insensitively")
	assert.Error(t, verifier.Verify(auth.Credentials{Username: "juan", Password: "wrong"}))
	assert.Error(t, verifier.Verify(auth.Credentials{Username: "pedro", Password: "361045"}))
	assert.Error(t, verifier.Verify(auth.Credentials{}))
}

func TestSignInAndVerify(t *testing.T) {
	service := newTestService()

	token, session, err := service.SignIn(auth.Credentials{Username: "juan", Password: "361045"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, session.Admin)
	assert.Equal(t, "juan", session.Subject)

	verified, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.TokenID, verified.TokenID)
	assert.True(t, verified.Admin)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	service := newTestService()

	_, _, err := service.SignIn(auth.Credentials{Username: "juan", Password: "nope"})
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	service := newTestService()

	_, err := service.VerifyToken("not-a-token")
	assert.Error(t, err)

	// A token signed with a different secret must be rejected.
	other := auth.NewService(auth.NewStaticVerifier("juan", "361045"), []byte("other-secret"), time.Hour)
	token, _, err := other.SignIn(auth.Credentials{Username: "juan", Password: "361045"})
	require.NoError(t, err)
	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestSignOutRevokes(t *testing.T) {
	service := newTestService()

	token, _, err := service.SignIn(auth.Credentials{Username: "juan", Password: "361045"})
	require.NoError(t, err)

	require.NoError(t, service.SignOut(token))

	_, err = service.VerifyToken(token)
	assert.Error(t, err, "a signed-out token must no longer verify")

	err = service.SignOut(token)
	assert.Error(t, err, "signing out an already-revoked token reports the upstream failure")
}

func TestSessionChangeBroadcast(t *testing.T) {
	service := newTestService()

	id, events := service.Subscribe()
	defer service.DeSubscribe(id)

	token, _, err := service.SignIn(auth.Credentials{Username: "juan", Password: "361045"})
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.True(t, event.SignedIn)
		assert.Equal(t, "juan", event.Subject)
	case <-time.After(time.Second):
		t.Fatal("expected a signed-in event")
	}

	require.NoError(t, service.SignOut(token))
	select {
	case event := <-events:
		assert.False(t, event.SignedIn)
	case <-time.After(time.Second):
		t.Fatal("expected a signed-out event")
	}
}

func TestDeSubscribe(t *testing.T) {
	service := newTestService()

	id, events := service.Subscribe()
	require.NoError(t, service.DeSubscribe(id))

	_, open := <-events
	assert.False(t, open, "channel should be closed after DeSubscribe")

	assert.Error(t, service.DeSubscribe(id), "double DeSubscribe should fail")
}
