package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"net/http"
)

var (
	ErrUnsupportedUri = errors.New("metadata uri is neither http nor ipfs")
	ErrNotAvailable   = errors.New("metadata not available")
)

type Metadata map[string]interface{}

type Service interface {
	GetItemMetadata(ctx context.Context, tokenUri string) (Metadata, error)
	Purge()
}

type service struct {
	client    *retryablehttp.Client
	cache     *cache.Cache
	ipfsHosts []string
}

func NewMetadataService(client *retryablehttp.Client, cache *cache.Cache, ipfsHosts []string) Service {
	return service{client, cache, ipfsHosts}
}

// GetItemMetadata fetches the JSON document behind a token uri. Ipfs uris are
// tried against each gateway in turn.
func (s service) GetItemMetadata(ctx context.Context, tokenUri string) (Metadata, error) {
	if md, exists := s.cache.Get(tokenUri); exists {
		return md.(Metadata), nil
	}

	var urls []string
	if IsIpfs(tokenUri) {
		urls = GatewayUrls(tokenUri, s.ipfsHosts)
	} else if IsUrl(tokenUri) {
		urls = []string{tokenUri}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUri, tokenUri)
	}

	var lastErr error
	for _, u := range urls {
		md, err := s.fetch(ctx, u)
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("url", u)).Warn("[Metadata] Fetch failed")
			lastErr = err
			continue
		}

		s.cache.Set(tokenUri, md, cache.DefaultExpiration)
		return md, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrNotAvailable, lastErr)
}

// Purge drops every cached document.
func (s service) Purge() {
	zap.L().With(zap.Int("items", s.cache.ItemCount())).Info("[Metadata] Purging cache")
	s.cache.Flush()
}

func (s service) fetch(ctx context.Context, url string) (Metadata, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}

	var md Metadata
	if err := json.Unmarshal(buf.Bytes(), &md); err != nil {
		return nil, err
	}

	return md, nil
}
