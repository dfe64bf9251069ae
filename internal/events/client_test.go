package events

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/config"
	derrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/linkverify"
)

var validKey = regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

func TestCacheKey(t *testing.T) {
	urls := []string{
		"https://next.router.vuejs.org/",
		"https://vuejs.github.io/vue-test-utils-next-docs/guide/introduction.html",
		"https://example.com/search?q=vue&lang=es",
	}
	seen := map[string]bool{}
	for _, u := range urls {
		key := CacheKey(u)
		assert.Regexp(t, validKey, key)
		assert.Equal(t, key, CacheKey(u))
		assert.False(t, seen[key])
		seen[key] = true
	}
}

func TestDecodeCacheEntry(t *testing.T) {
	checked := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data, err := json.Marshal(&linkverify.CacheEntry{URL: "https://vuex.vuejs.org/", Status: 200, IsValid: true, LastChecked: checked})
	require.NoError(t, err)

	entry, err := DecodeCacheEntry(data)
	require.NoError(t, err)
	assert.Equal(t, "https://vuex.vuejs.org/", entry.URL)
	assert.True(t, entry.IsValid)
	assert.True(t, checked.Equal(entry.LastChecked))

	_, err = DecodeCacheEntry([]byte("{"))
	assert.Error(t, err)
}

func TestOpen_DisabledWithoutURL(t *testing.T) {
	pub, cache, err := Open(context.Background(), config.EventsConfig{})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, pub)
	assert.Nil(t, cache)
	assert.NoError(t, pub.PublishBuild(context.Background(), &BuildSummary{BuildID: "b"}))
	assert.NoError(t, pub.Close())
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), config.EventsConfig{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestConnect_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	_, err := Connect(context.Background(), config.EventsConfig{NATSURL: "nats://127.0.0.1:1", Subject: "a", BuildSubject: "b", KVBucket: "c"})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryEvents))
}
