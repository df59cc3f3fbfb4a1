package entity

import (
	"github.com/ethereum/go-ethereum/common"
	"time"
)

type Action struct {
	Id         string         `json:"id"`
	Action     ActionType     `json:"action"`
	Collection common.Address `json:"collection"`
	ItemId     uint64         `json:"itemId"`
	From       common.Address `json:"from"`
	To         common.Address `json:"to"`
	Cost       string         `json:"cost"`
	Memo       string         `json:"memo,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type ActionType string

const (
	MintAction             ActionType = "mint"
	TransferAction         ActionType = "transfer"
	ApprovalAction         ActionType = "approval"
	ApprovalForAllAction   ActionType = "approvalForAll"
	PriceChangeAction      ActionType = "priceChange"
	BaseUriAction          ActionType = "baseUri"
	RevenueWithdrawAction  ActionType = "revenueWithdraw"
	ListingAction          ActionType = "listing"
	ListingUpdateAction    ActionType = "listingUpdate"
	DelistingAction        ActionType = "delisting"
	SaleAction             ActionType = "sale"
	ProceedsWithdrawAction ActionType = "proceedsWithdraw"
)

func (a Action) IsItemAction() bool {
	return a.ItemId != 0
}
