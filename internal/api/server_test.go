package api

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/payout"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var (
	collectionAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	marketAddr     = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	admin          = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	seller         = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	buyer          = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

func newRouter(t *testing.T, gateway string) *mux.Router {
	bs, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	actionRepo := repository.NewActionRepository(bs)
	wallet := payout.NewWallet(bs, repository.NewAccountRepository(bs))

	reg, err := registry.NewRegistry(context.Background(), registry.Config{
		Address: collectionAddr,
		Admin:   admin,
		Name:    registry.DefaultName,
		Symbol:  registry.DefaultSymbol,
		Price:   big.NewInt(100),
		BaseUri: registry.DefaultBaseUri,
	}, bs, repository.NewItemRepository(bs), repository.NewSettingsRepository(bs), actionRepo, wallet)
	require.NoError(t, err)

	engine, err := marketplace.NewEngine(marketAddr, bs, repository.NewListingRepository(bs), repository.NewProceedsRepository(bs), actionRepo, wallet)
	require.NoError(t, err)
	engine.AddCollection(reg)

	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	md := metadata.NewMetadataService(client, cache.New(time.Minute, time.Minute), []string{gateway})

	return NewServer(reg, engine, md).Router()
}

func do(t *testing.T, router http.Handler, method, path string, caller *common.Address, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if caller != nil {
		req.Header.Set(CallerHeader, caller.Hex())
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestMintListBuyOverHttp(t *testing.T) {
	router := newRouter(t, "http://127.0.0.1:0")
	listingUrl := "/listings/" + collectionAddr.Hex() + "/1"

	rec := do(t, router, http.MethodPost, "/collection/mint", &seller, map[string]string{"payment": "100"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var item itemResponse
	decodeBody(t, rec, &item)
	assert.Equal(t, uint64(1), item.Id)
	assert.Equal(t, seller, item.Owner)
	assert.Equal(t, registry.DefaultBaseUri+"1.json", item.TokenUri)

	rec = do(t, router, http.MethodPost, listingUrl, &seller, map[string]string{"price": "500"})
	assert.Equal(t, http.StatusConflict, rec.Code, "marketplace is not approved yet")

	rec = do(t, router, http.MethodPost, "/collection/items/1/approve", &seller, map[string]string{"to": marketAddr.Hex()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, listingUrl, &seller, map[string]string{"price": "500"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var listing listingResponse
	decodeBody(t, rec, &listing)
	assert.True(t, listing.Listed)
	assert.Equal(t, "500", listing.Price)
	assert.Equal(t, seller, listing.Seller)

	rec = do(t, router, http.MethodPost, listingUrl+"/buy", &buyer, map[string]string{"payment": "499"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, router, http.MethodPost, listingUrl+"/buy", &buyer, map[string]string{"payment": "500"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	listing = listingResponse{}
	decodeBody(t, rec, &listing)
	assert.False(t, listing.Listed)
	assert.Equal(t, "0", listing.Price)
	assert.Equal(t, common.Address{}, listing.Seller)

	rec = do(t, router, http.MethodGet, "/proceeds/"+seller.Hex(), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var proceeds amountResponse
	decodeBody(t, rec, &proceeds)
	assert.Equal(t, "500", proceeds.Amount)

	rec = do(t, router, http.MethodPost, "/proceeds/withdraw", &seller, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/proceeds/withdraw", &seller, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/collection/items/1", nil, nil)
	decodeBody(t, rec, &item)
	assert.Equal(t, buyer, item.Owner)
}

func TestErrorMapping(t *testing.T) {
	router := newRouter(t, "http://127.0.0.1:0")

	rec := do(t, router, http.MethodPost, "/collection/mint", nil, map[string]string{"payment": "100"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/collection/mint", &seller, map[string]string{"payment": "99"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, router, http.MethodPut, "/collection/price", &seller, map[string]string{"price": "1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body jsonError
	decodeBody(t, rec, &body)
	assert.Equal(t, "not_owner", body.Error)

	rec = do(t, router, http.MethodGet, "/collection/items/7", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/listings/"+collectionAddr.Hex()+"/7", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing listingResponse
	decodeBody(t, rec, &listing)
	assert.False(t, listing.Listed)

	rec = do(t, router, http.MethodDelete, "/listings/0x0000000000000000000000000000000000000001/1", &seller, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCollections(t *testing.T) {
	router := newRouter(t, "http://127.0.0.1:0")

	rec := do(t, router, http.MethodGet, "/collections", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var collections []common.Address
	decodeBody(t, rec, &collections)
	assert.Equal(t, []common.Address{collectionAddr}, collections)
}

func TestGetMetadata(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Monster #1"}`))
	}))
	defer gateway.Close()

	router := newRouter(t, gateway.URL)

	rec := do(t, router, http.MethodGet, "/collection/items/1/metadata", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/collection/mint", &seller, map[string]string{"payment": "100"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/collection/items/1/metadata", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var md map[string]interface{}
	decodeBody(t, rec, &md)
	assert.Equal(t, "Monster #1", md["name"])
}
