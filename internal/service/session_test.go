package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSessionStoresEncodedPayload(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewSessionService(repo)
	users := newMemUserRepo()
	ctx := context.Background()
	user := seedUser(t, users, "alice", "alice@x.com")

	expiresAt := time.Now().Add(7 * 24 * time.Hour)
	id, err := svc.Record(ctx, user, "10.0.0.1", "curl/8", "cli", "1|secret", 1, expiresAt)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	sessions, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	raw, err := base64.StdEncoding.DecodeString(sessions[0].Payload)
	require.NoError(t, err)

	var payload sessionPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "1|secret", payload.Token)
	assert.WithinDuration(t, expiresAt, payload.ExpiresAt, time.Second)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewSessionService(repo)
	users := newMemUserRepo()
	ctx := context.Background()
	user := seedUser(t, users, "alice", "alice@x.com")
	other := seedUser(t, users, "bob", "bob@x.com")

	expiry := time.Now().Add(time.Hour)
	_, err := svc.Record(ctx, user, "10.0.0.1", "ua-old", "", "1|a", 1, expiry)
	require.NoError(t, err)
	_, err = svc.Record(ctx, user, "10.0.0.2", "ua-new", "", "2|b", 2, expiry)
	require.NoError(t, err)
	_, err = svc.Record(ctx, other, "10.0.0.3", "ua-other", "", "3|c", 3, expiry)
	require.NoError(t, err)

	sessions, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "ua-new", sessions[0].UserAgent)
	assert.Equal(t, "ua-old", sessions[1].UserAgent)
}

func TestDeleteByTokenIsIdempotent(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewSessionService(repo)
	users := newMemUserRepo()
	ctx := context.Background()
	user := seedUser(t, users, "alice", "alice@x.com")

	_, err := svc.Record(ctx, user, "10.0.0.1", "ua", "", "1|a", 1, time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByToken(ctx, 1))
	// A second delete for the same token is a no-op, not an error.
	require.NoError(t, svc.DeleteByToken(ctx, 1))

	sessions, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteScopedToOwner(t *testing.T) {
	repo := newMemSessionRepo()
	svc := NewSessionService(repo)
	users := newMemUserRepo()
	ctx := context.Background()
	alice := seedUser(t, users, "alice", "alice@x.com")
	bob := seedUser(t, users, "bob", "bob@x.com")

	id, err := svc.Record(ctx, alice, "10.0.0.1", "ua", "", "1|a", 1, time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Bob cannot delete Alice's session.
	require.NoError(t, svc.Delete(ctx, id, bob.ID))
	sessions, err := svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, svc.Delete(ctx, id, alice.ID))
	sessions, err = svc.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
