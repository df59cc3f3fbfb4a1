package entity

import (
	"fmt"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gosimple/slug"
	"time"
)

type Item struct {
	Collection common.Address `json:"collection"`
	Id         uint64         `json:"id"`
	Owner      common.Address `json:"owner"`
	Approved   common.Address `json:"approved"`
	MintedAt   time.Time      `json:"mintedAt"`
}

func (i Item) Slug() string {
	return CreateItemSlug(i.Id, i.Collection)
}

func CreateItemSlug(id uint64, collection common.Address) string {
	return slug.Make(fmt.Sprintf("item-%d-%s", id, collection.Hex()))
}

func (i Item) IsApproved(operator common.Address) bool {
	return i.Approved != (common.Address{}) && i.Approved == operator
}

func TokenUri(baseUri string, id uint64) string {
	return fmt.Sprintf("%s%d.json", baseUri, id)
}
