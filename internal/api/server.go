package api

import (
	"encoding/json"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"github.com/ZilDuck/nft-marketplace/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

const (
	CallerHeader = "X-Caller"

	listingPath = "/listings/{collection}/{itemId:[0-9]+}"
)

type Server struct {
	registry        *registry.Registry
	market          *marketplace.Engine
	metadataService metadata.Service
}

func NewServer(registry *registry.Registry, market *marketplace.Engine, metadataService metadata.Service) Server {
	return Server{registry, market, metadataService}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/collection", s.handleGetCollection).Methods("GET")
	r.HandleFunc("/collection/mint", s.handleMint).Methods("POST")
	r.HandleFunc("/collection/price", s.handleChangePrice).Methods("PUT")
	r.HandleFunc("/collection/base-uri", s.handleSetBaseUri).Methods("PUT")
	r.HandleFunc("/collection/withdraw", s.handleWithdraw).Methods("POST")
	r.HandleFunc("/collection/balances/{owner}", s.handleBalanceOf).Methods("GET")
	r.HandleFunc("/collection/operators/{operator}", s.handleSetApprovalForAll).Methods("PUT")
	r.HandleFunc("/collection/items/{itemId:[0-9]+}", s.handleGetItem).Methods("GET")
	r.HandleFunc("/collection/items/{itemId:[0-9]+}/metadata", s.handleGetMetadata).Methods("GET")
	r.HandleFunc("/collection/items/{itemId:[0-9]+}/approve", s.handleApprove).Methods("POST")
	r.HandleFunc("/collection/items/{itemId:[0-9]+}/transfer", s.handleTransfer).Methods("POST")

	r.HandleFunc("/collections", s.handleGetCollections).Methods("GET")
	r.HandleFunc("/listings", s.handleGetListings).Methods("GET")
	r.HandleFunc(listingPath, s.handleGetListing).Methods("GET")
	r.HandleFunc(listingPath, s.handleListItem).Methods("POST")
	r.HandleFunc(listingPath, s.handleUpdateListing).Methods("PUT")
	r.HandleFunc(listingPath, s.handleCancelListing).Methods("DELETE")
	r.HandleFunc(listingPath+"/buy", s.handleBuyItem).Methods("POST")
	r.HandleFunc(listingPath+"/history", s.handleHistory).Methods("GET")

	r.HandleFunc("/proceeds", s.handleTotals).Methods("GET")
	r.HandleFunc("/proceeds/withdraw", s.handleWithdrawProceeds).Methods("POST")
	r.HandleFunc("/proceeds/{address}", s.handleGetProceeds).Methods("GET")
	r.HandleFunc("/activity", s.handleActivity).Methods("GET")

	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "NFT Marketplace")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func getCaller(r *http.Request) (common.Address, error) {
	caller := r.Header.Get(CallerHeader)
	if !common.IsHexAddress(caller) {
		return common.Address{}, ErrMissingCaller
	}

	return common.HexToAddress(caller), nil
}

func getItemId(r *http.Request) (uint64, error) {
	itemId, ok := mux.Vars(r)["itemId"]
	if !ok {
		return 0, fmt.Errorf("%w: missing item id", ErrBadRequest)
	}

	id, err := strconv.ParseUint(itemId, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid item id", ErrBadRequest)
	}

	return id, nil
}

func getAddress(r *http.Request, name string) (common.Address, error) {
	value := mux.Vars(r)[name]
	if value == "" {
		value = r.URL.Query().Get(name)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: invalid %s address", ErrBadRequest, name)
	}

	return common.HexToAddress(value), nil
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	return nil
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zap.L().With(zap.String("path", r.URL.Path)).Debug("[Api] Route not found")
		WriteJSONError(w, http.StatusNotFound, "not_found", "Page not found")
	})
}
