package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/condominio/portal/internal/core/domain"
	"github.com/condominio/portal/internal/core/ports"
)

func TestSessionKeys(t *testing.T) {
	assert.Equal(t, "session:abc:current_user", userKey("abc"))
	assert.Equal(t, "session:abc:access_token", tokenKey("abc"))
}

func TestSessionStorage_SaveLoadDeletePairedKeys(t *testing.T) {
	fake := newFakeRedis()
	s := NewSessionStorage(fake)
	ctx := context.Background()

	_, err := s.Load(ctx, "abc")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, s.Save(ctx, "abc", ports.SessionRecord{CurrentUser: []byte(`{"id":"1"}`), AccessToken: "tok"}, time.Hour))
	assert.Equal(t, 1, fake.txs, "both keys must be written in one transaction")
	assert.Equal(t, time.Hour, fake.ttls[userKey("abc")])
	assert.Equal(t, time.Hour, fake.ttls[tokenKey("abc")])

	rec, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(rec.CurrentUser))
	assert.Equal(t, "tok", rec.AccessToken)

	require.NoError(t, s.Delete(ctx, "abc"))
	assert.False(t, fake.has(userKey("abc")))
	assert.False(t, fake.has(tokenKey("abc")))
	require.NoError(t, s.Delete(ctx, "abc"))

	_, err = s.Load(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStorage_LoadReturnsHalfRecord(t *testing.T) {
	fake := newFakeRedis()
	fake.set(userKey("abc"), `{"id":"1"}`)

	rec, err := NewSessionStorage(fake).Load(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, string(rec.CurrentUser))
	assert.Empty(t, rec.AccessToken, "a lone key is surfaced so the store can reject it as malformed")
}

func TestSessionStorage_LoadUnreachableIsNotMissing(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	_, err := NewSessionStorage(client).Load(context.Background(), "abc")

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrSessionNotFound))
}
