package api

import (
	"bytes"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ethereum/go-ethereum/common"
	"math/big"
	"net/http"
	"sort"
	"strconv"
)

// listingResponse renders an absent listing as the all zero record with
// Listed set to false.
type listingResponse struct {
	Listed     bool           `json:"listed"`
	ItemId     uint64         `json:"itemId"`
	Price      string         `json:"price"`
	Collection common.Address `json:"collection"`
	Seller     common.Address `json:"seller"`
	Slug       string         `json:"slug,omitempty"`
}

func newListingResponse(l *entity.Listing) listingResponse {
	if l == nil {
		return listingResponse{Price: "0"}
	}

	return listingResponse{
		Listed:     true,
		ItemId:     l.ItemId,
		Price:      l.Price.String(),
		Collection: l.Collection,
		Seller:     l.Seller,
		Slug:       l.Slug(),
	}
}

func (s Server) handleGetListings(w http.ResponseWriter, r *http.Request) {
	var filter entity.ListingFilter
	query := r.URL.Query()

	if query.Get("collection") != "" {
		collection, err := getAddress(r, "collection")
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Collection = &collection
	}
	if query.Get("seller") != "" {
		seller, err := getAddress(r, "seller")
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Seller = &seller
	}
	filter.Limit = getLimit(r, 100)

	listings, err := s.market.Listings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]listingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, newListingResponse(&listings[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	collection, id, err := getListingKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.writeListing(w, r, collection, id, http.StatusOK)
}

func (s Server) handleListItem(w http.ResponseWriter, r *http.Request) {
	caller, collection, id, price, ok := s.listingRequest(w, r)
	if !ok {
		return
	}

	if err := s.market.ListItem(r.Context(), caller, id, collection, price); err != nil {
		writeError(w, err)
		return
	}

	s.writeListing(w, r, collection, id, http.StatusCreated)
}

func (s Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	caller, collection, id, price, ok := s.listingRequest(w, r)
	if !ok {
		return
	}

	if err := s.market.UpdateListing(r.Context(), caller, price, id, collection); err != nil {
		writeError(w, err)
		return
	}

	s.writeListing(w, r, collection, id, http.StatusOK)
}

func (s Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	collection, id, err := getListingKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.market.CancelListing(r.Context(), caller, id, collection); err != nil {
		writeError(w, err)
		return
	}

	s.writeListing(w, r, collection, id, http.StatusOK)
}

func (s Server) handleBuyItem(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	collection, id, err := getListingKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payment, err := entity.ParseWei(req.Payment)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.market.BuyItem(r.Context(), caller, id, collection, payment); err != nil {
		writeError(w, err)
		return
	}

	s.writeListing(w, r, collection, id, http.StatusOK)
}

func (s Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	collection, id, err := getListingKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	actions, err := s.market.History(r.Context(), collection, id, getLimit(r, 0))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actions)
}

func (s Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	actions, err := s.market.RecentActivity(r.Context(), getLimit(r, 50))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, actions)
}

func (s Server) handleGetProceeds(w http.ResponseWriter, r *http.Request) {
	address, err := getAddress(r, "address")
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := s.market.GetProceeds(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, amountResponse{balance.String()})
}

func (s Server) handleWithdrawProceeds(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	amount, err := s.market.WithdrawProceeds(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, amountResponse{amount.String()})
}

func (s Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.market.Totals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sales":       totals.Sales.String(),
		"withdrawn":   totals.Withdrawn.String(),
		"excess":      totals.Excess.String(),
		"outstanding": totals.Outstanding().String(),
	})
}

func (s Server) listingRequest(w http.ResponseWriter, r *http.Request) (caller, collection common.Address, id uint64, price *big.Int, ok bool) {
	var err error
	if caller, err = getCaller(r); err != nil {
		writeError(w, err)
		return
	}
	if collection, id, err = getListingKey(r); err != nil {
		writeError(w, err)
		return
	}

	var req amountRequest
	if err = decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if price, err = entity.ParseWei(req.Price); err != nil {
		writeError(w, err)
		return
	}

	return caller, collection, id, price, true
}

func (s Server) writeListing(w http.ResponseWriter, r *http.Request, collection common.Address, id uint64, status int) {
	listing, err := s.market.GetListing(r.Context(), collection, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, status, newListingResponse(listing))
}

func getListingKey(r *http.Request) (common.Address, uint64, error) {
	collection, err := getAddress(r, "collection")
	if err != nil {
		return common.Address{}, 0, err
	}

	id, err := getItemId(r)
	if err != nil {
		return common.Address{}, 0, err
	}

	return collection, id, nil
}

func getLimit(r *http.Request, defaultValue int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return defaultValue
	}

	return limit
}

func (s Server) handleGetCollections(w http.ResponseWriter, r *http.Request) {
	collections := s.market.Collections()
	sort.Slice(collections, func(i, j int) bool {
		return bytes.Compare(collections[i].Bytes(), collections[j].Bytes()) < 0
	})

	writeJSON(w, http.StatusOK, collections)
}
