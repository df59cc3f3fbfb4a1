package di

import (
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newTestContainer(t *testing.T) *Container {
	t.Setenv("DATA_DIR", t.TempDir())

	ctn, err := NewContainer()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctn.Delete() })

	return ctn
}

func TestHttpClientsAreConfiguredPerConcern(t *testing.T) {
	t.Setenv("IPFS_TIMEOUT", "3")
	t.Setenv("PAYOUT_RETRIES", "7")
	ctn := newTestContainer(t)

	ipfs := ctn.Get("ipfs.client").(*retryablehttp.Client)
	payoutClient := ctn.Get("payout.client").(*retryablehttp.Client)

	assert.NotSame(t, ipfs, payoutClient)
	assert.Equal(t, 3*time.Second, ipfs.HTTPClient.Timeout)
	assert.Equal(t, 2, ipfs.RetryMax)
	assert.Equal(t, 30*time.Second, payoutClient.HTTPClient.Timeout)
	assert.Equal(t, 7, payoutClient.RetryMax)
}

func TestMarketplaceRequiresValidAddress(t *testing.T) {
	for _, value := range []string{"", "not-an-address", "0x0000000000000000000000000000000000000000"} {
		t.Run(value, func(t *testing.T) {
			t.Setenv("MARKETPLACE_ADDRESS", value)
			ctn := newTestContainer(t)

			_, err := ctn.SafeGet("marketplace")
			assert.Error(t, err)
		})
	}
}

func TestMarketplaceServesConfiguredCollection(t *testing.T) {
	ctn := newTestContainer(t)

	engine, err := ctn.SafeGet("marketplace")
	require.NoError(t, err)
	assert.Equal(t, []string{ctn.GetRegistry().Address().Hex()}, hexes(engine.(*marketplace.Engine)))
}

func hexes(e *marketplace.Engine) []string {
	out := make([]string, 0)
	for _, addr := range e.Collections() {
		out = append(out, addr.Hex())
	}

	return out
}
