package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       int64
	Timezone string
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(1 * 1024 * 1024)

	value := cachedUser{ID: 42, Timezone: "America/New_York"}
	require.NoError(t, c.Set("key", value, time.Minute))

	var result cachedUser
	require.NoError(t, c.Get("key", &result))
	assert.Equal(t, value, result)

	require.NoError(t, c.Delete("key"))
	assert.Error(t, c.Get("key", &result))
}

func TestFetch(t *testing.T) {
	c := NewMemoryCache(1 * 1024 * 1024)

	calls := 0
	load := func() (cachedUser, error) {
		calls++
		return cachedUser{ID: 7, Timezone: "Europe/Berlin"}, nil
	}

	v1, err := Fetch(c, UserKey(7), time.Minute, load)
	require.NoError(t, err)
	v2, err := Fetch(c, UserKey(7), time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestFetchPropagatesLoaderError(t *testing.T) {
	c := NewMemoryCache(1 * 1024 * 1024)

	_, err := Fetch(c, "missing", time.Minute, func() (cachedUser, error) {
		return cachedUser{}, errors.New("not found")
	})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "preferences:9:schedule_post:recently_used_custom_date",
		PreferenceKey(9, "schedule_post", "recently_used_custom_date"))
}
