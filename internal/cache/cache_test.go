package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "credit:products", Key("products"))
	assert.Equal(t, "credit:purchases:client:7", Key("purchases", "client", "7"))
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("b"), 0))

	got, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	got[0] = 'z'
	again, err := m.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), again, "returned slices must not alias the entry")

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)

	got, err = m.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)

	require.NoError(t, m.Delete(ctx, "forever"))
	_, err = m.Get(ctx, "forever")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type item struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	in := []item{{Name: "Tea", Price: 5}, {Name: "Rice", Price: 2.5}}
	require.NoError(t, SetJSON(ctx, m, Key("products"), in, 0))

	var out []item
	require.NoError(t, GetJSON(ctx, m, Key("products"), &out))
	assert.Equal(t, in, out)

	require.NoError(t, m.Set(ctx, "broken", []byte("{"), 0))
	assert.Error(t, GetJSON(ctx, m, "broken", &out))

	assert.ErrorIs(t, GetJSON(ctx, m, "absent", &out), ErrMiss)
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1")
	assert.Error(t, err)

	_, err = NewRedisCache(ctx, "")
	assert.Error(t, err)
}

func TestRedisCacheErrorsAreWrapped(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	c := NewRedisCacheFromClient(rdb)
	defer func() { _ = c.Close() }()

	_, err := c.Get(context.Background(), Key("clients"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
	assert.Contains(t, err.Error(), "credit:clients")
}
