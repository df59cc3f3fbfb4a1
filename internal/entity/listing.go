package entity

import (
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gosimple/slug"
	"math/big"
	"time"
)

// Listing is a seller's standing offer. A missing listing is represented by a
// nil *Listing, never by a zero valued one.
type Listing struct {
	ItemId     uint64         `json:"itemId"`
	Price      *big.Int       `json:"price"`
	Collection common.Address `json:"collection"`
	Seller     common.Address `json:"seller"`
	ListedAt   time.Time      `json:"listedAt"`
}

func (l Listing) Slug() string {
	return slug.Make(fmt.Sprintf("listing-%d-%s", l.ItemId, l.Collection.Hex()))
}

type ListingFilter struct {
	Collection *common.Address
	Seller     *common.Address
	Limit      int
}

func (f ListingFilter) Matches(l Listing) bool {
	if f.Collection != nil && *f.Collection != l.Collection {
		return false
	}
	if f.Seller != nil && *f.Seller != l.Seller {
		return false
	}
	return true
}
