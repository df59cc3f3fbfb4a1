package marketplace

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ethereum/go-ethereum/common"
)

// GetListing returns nil, nil when the item is not listed.
func (e *Engine) GetListing(ctx context.Context, collection common.Address, itemId uint64) (*entity.Listing, error) {
	var listing *entity.Listing
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		listing, err = e.listingRepo.GetListing(ctx, collection, itemId)
		return err
	})

	return listing, err
}

func (e *Engine) Listings(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	var listings []entity.Listing
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		listings, err = e.listingRepo.GetListings(ctx, filter)
		return err
	})

	return listings, err
}

// History lists the actions recorded against an item in the order they happened.
func (e *Engine) History(ctx context.Context, collection common.Address, itemId uint64, limit int) ([]entity.Action, error) {
	var actions []entity.Action
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		actions, err = e.actionRepo.GetItemActions(ctx, collection, itemId, limit)
		return err
	})

	return actions, err
}

func (e *Engine) RecentActivity(ctx context.Context, limit int) ([]entity.Action, error) {
	var actions []entity.Action
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		actions, err = e.actionRepo.GetRecentActions(ctx, limit)
		return err
	})

	return actions, err
}
