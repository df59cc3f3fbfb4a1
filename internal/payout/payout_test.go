package payout

import (
	"context"
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
)

var seller = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

func newWallet(t *testing.T) (*store.BadgerStore, *Wallet) {
	bs, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return bs, NewWallet(bs, repository.NewAccountRepository(bs))
}

func TestWalletCreditsBalance(t *testing.T) {
	_, w := newWallet(t)
	ctx := context.Background()

	require.NoError(t, w.Pay(ctx, seller, big.NewInt(300)))
	require.NoError(t, w.Pay(ctx, seller, big.NewInt(200)))

	balance, err := w.Balance(ctx, seller)
	require.NoError(t, err)
	assert.Equal(t, "500", balance.String())

	assert.ErrorIs(t, w.Pay(ctx, common.Address{}, big.NewInt(1)), entity.ErrInvalidReceiver)
	assert.ErrorIs(t, w.Pay(ctx, seller, big.NewInt(-1)), entity.ErrInvalidAmount)
}

func TestWalletPaymentJoinsCallerTransaction(t *testing.T) {
	bs, w := newWallet(t)
	ctx := context.Background()

	err := bs.Update(ctx, func(ctx context.Context) error {
		if err := w.Pay(ctx, seller, big.NewInt(300)); err != nil {
			return err
		}
		return entity.ErrTransferFailed
	})
	assert.ErrorIs(t, err, entity.ErrTransferFailed)

	balance, err := w.Balance(ctx, seller)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}

func TestWebhookPosts(t *testing.T) {
	var got webhookRequest
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	require.NoError(t, NewWebhook(srv.URL, client).Pay(context.Background(), seller, big.NewInt(42)))
	assert.Equal(t, seller.Hex(), got.To)
	assert.Equal(t, "42", got.Amount)
	assert.NotEmpty(t, key)
}

func TestWebhookRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil

	err := NewWebhook(srv.URL, client).Pay(context.Background(), seller, big.NewInt(42))
	assert.Error(t, err)
}
