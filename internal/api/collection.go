package api

import (
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"net/http"
	"time"
)

type collectionResponse struct {
	Address common.Address `json:"address"`
	Admin   common.Address `json:"admin"`
	Name    string         `json:"name"`
	Symbol  string         `json:"symbol"`
	Price   string         `json:"price"`
	BaseUri string         `json:"baseUri"`
	Revenue string         `json:"revenue"`
	Supply  uint64         `json:"supply"`
}

type itemResponse struct {
	Collection common.Address `json:"collection"`
	Id         uint64         `json:"id"`
	Slug       string         `json:"slug"`
	Owner      common.Address `json:"owner"`
	Approved   common.Address `json:"approved"`
	TokenUri   string         `json:"tokenUri"`
	MintedAt   time.Time      `json:"mintedAt"`
}

type amountRequest struct {
	Payment string `json:"payment,omitempty"`
	Price   string `json:"price,omitempty"`
}

type amountResponse struct {
	Amount string `json:"amount"`
}

func (s Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	settings, err := s.registry.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collectionResponse{
		Address: s.registry.Address(),
		Admin:   s.registry.Admin(),
		Name:    settings.Name,
		Symbol:  settings.Symbol,
		Price:   settings.Price.String(),
		BaseUri: settings.BaseUri,
		Revenue: settings.Revenue.String(),
		Supply:  settings.Supply,
	})
}

func (s Server) handleMint(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
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

	id, err := s.registry.Mint(r.Context(), caller, payment)
	if err != nil {
		writeError(w, err)
		return
	}

	s.writeItem(w, r, id, http.StatusCreated)
}

func (s Server) handleChangePrice(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	price, err := entity.ParseWei(req.Price)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.registry.ChangePrice(r.Context(), caller, price); err != nil {
		writeError(w, err)
		return
	}

	s.handleGetCollection(w, r)
}

func (s Server) handleSetBaseUri(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		BaseUri string `json:"baseUri"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.registry.SetBaseURI(r.Context(), caller, req.BaseUri); err != nil {
		writeError(w, err)
		return
	}

	s.handleGetCollection(w, r)
}

func (s Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	amount, err := s.registry.Withdraw(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, amountResponse{amount.String()})
}

func (s Server) handleBalanceOf(w http.ResponseWriter, r *http.Request) {
	owner, err := getAddress(r, "owner")
	if err != nil {
		writeError(w, err)
		return
	}

	count, err := s.registry.BalanceOf(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"owner": owner, "balance": count})
}

func (s Server) handleSetApprovalForAll(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	operator, err := getAddress(r, "operator")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.registry.SetApprovalForAll(r.Context(), caller, operator, req.Approved); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"owner": caller, "operator": operator, "approved": req.Approved})
}

func (s Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := getItemId(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s.writeItem(w, r, id, http.StatusOK)
}

func (s Server) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := getItemId(r)
	if err != nil {
		writeError(w, err)
		return
	}

	uri, err := s.registry.TokenURI(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	md, err := s.metadataService.GetItemMetadata(r.Context(), uri)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("itemId", id)).Warn("[Api] Metadata not available")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, md)
}

func (s Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := getItemId(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		To common.Address `json:"to"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.registry.Approve(r.Context(), caller, req.To, id); err != nil {
		writeError(w, err)
		return
	}

	s.writeItem(w, r, id, http.StatusOK)
}

func (s Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, err := getCaller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := getItemId(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		From common.Address `json:"from"`
		To   common.Address `json:"to"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.registry.TransferFrom(r.Context(), caller, req.From, req.To, id); err != nil {
		writeError(w, err)
		return
	}

	s.writeItem(w, r, id, http.StatusOK)
}

func (s Server) writeItem(w http.ResponseWriter, r *http.Request, id uint64, status int) {
	item, err := s.registry.Item(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	uri, err := s.registry.TokenURI(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, status, itemResponse{
		Collection: item.Collection,
		Id:         item.Id,
		Slug:       item.Slug(),
		Owner:      item.Owner,
		Approved:   item.Approved,
		TokenUri:   uri,
		MintedAt:   item.MintedAt,
	})
}
