package api

import (
	"encoding/json"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/metadata"
	"go.uber.org/zap"
	"net/http"
)

var (
	ErrMissingCaller = errors.New("missing or invalid X-Caller header")
	ErrBadRequest    = errors.New("bad request")
)

type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().With(zap.Error(err)).Warn("[Api] Failed to encode response")
	}
}

var statusCodes = []struct {
	err    error
	status int
	code   string
}{
	{ErrMissingCaller, http.StatusBadRequest, "missing_caller"},
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{entity.ErrInvalidPrice, http.StatusBadRequest, "invalid_price"},
	{entity.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{entity.ErrInvalidReceiver, http.StatusBadRequest, "invalid_receiver"},
	{entity.ErrInsufficientPayment, http.StatusPaymentRequired, "insufficient_payment"},
	{entity.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{entity.ErrNotItemOwner, http.StatusForbidden, "not_item_owner"},
	{entity.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{entity.ErrUnknownItem, http.StatusNotFound, "unknown_item"},
	{entity.ErrUnknownCollection, http.StatusNotFound, "unknown_collection"},
	{entity.ErrNotListed, http.StatusNotFound, "not_listed"},
	{entity.ErrAlreadyListed, http.StatusConflict, "already_listed"},
	{entity.ErrNotApprovedForSale, http.StatusConflict, "not_approved_for_sale"},
	{entity.ErrNoProceeds, http.StatusConflict, "no_proceeds"},
	{entity.ErrTransferRejected, http.StatusConflict, "transfer_rejected"},
	{entity.ErrTransferFailed, http.StatusBadGateway, "transfer_failed"},
	{metadata.ErrNotAvailable, http.StatusBadGateway, "metadata_unavailable"},
	{metadata.ErrUnsupportedUri, http.StatusBadGateway, "metadata_unavailable"},
}

// writeError maps a ledger error to its status code. Unknown errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, err error) {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			WriteJSONError(w, sc.status, sc.code, err.Error())
			return
		}
	}

	zap.L().With(zap.Error(err)).Error("[Api] Request failed")
	WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
}
