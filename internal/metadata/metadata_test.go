package metadata

import (
	"context"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const baseUri = "ipfs://QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/"

func newClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	return client
}

func TestGatewayUrls(t *testing.T) {
	urls := GatewayUrls(baseUri+"1.json", []string{"https://a.example/", "https://b.example"})
	assert.Equal(t, []string{
		"https://a.example/ipfs/QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/1.json",
		"https://b.example/ipfs/QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/1.json",
	}, urls)

	assert.True(t, IsIpfs("ipfs://bafy/1.json"))
	assert.False(t, IsIpfs("https://example.com/1.json"))
	assert.Nil(t, GatewayUrls("https://example.com/1.json", []string{"https://a.example"}))
}

func TestGetItemMetadataFallsBackAcrossGateways(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	var hits int32
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/ipfs/QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/1.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"Monster #1","image":"ipfs://img/1.png"}`))
	}))
	defer up.Close()

	s := NewMetadataService(newClient(), cache.New(time.Minute, time.Minute), []string{down.URL, up.URL})

	md, err := s.GetItemMetadata(context.Background(), baseUri+"1.json")
	require.NoError(t, err)
	assert.Equal(t, "Monster #1", md["name"])

	_, err = s.GetItemMetadata(context.Background(), baseUri+"1.json")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second lookup is served from cache")

	s.Purge()
	_, err = s.GetItemMetadata(context.Background(), baseUri+"1.json")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetItemMetadataErrors(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	s := NewMetadataService(newClient(), cache.New(time.Minute, time.Minute), []string{down.URL})

	_, err := s.GetItemMetadata(context.Background(), baseUri+"1.json")
	assert.ErrorIs(t, err, ErrNotAvailable)

	_, err = s.GetItemMetadata(context.Background(), "not a uri")
	assert.ErrorIs(t, err, ErrUnsupportedUri)
}
