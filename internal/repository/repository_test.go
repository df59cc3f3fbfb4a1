package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
	"time"
)

var (
	collectionAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	seller         = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

func openStore(t *testing.T) *store.BadgerStore {
	bs, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = bs.Close() })

	return bs
}

func TestActionHistory(t *testing.T) {
	bs := openStore(t)
	repo := NewActionRepository(bs)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, bs.Update(ctx, func(ctx context.Context) error {
		for i, a := range []entity.ActionType{entity.MintAction, entity.ListingAction, entity.SaleAction} {
			action := &entity.Action{Action: a, Collection: collectionAddr, ItemId: 1, CreatedAt: start.Add(time.Duration(i) * time.Second)}
			if err := repo.AddAction(ctx, action); err != nil {
				return err
			}
			assert.NotEmpty(t, action.Id)
		}
		return repo.AddAction(ctx, &entity.Action{Action: entity.ProceedsWithdrawAction, To: seller, CreatedAt: start.Add(time.Minute)})
	}))

	history, err := repo.GetItemActions(ctx, collectionAddr, 1, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entity.MintAction, history[0].Action)
	assert.Equal(t, entity.SaleAction, history[2].Action)

	recent, err := repo.GetRecentActions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, entity.ProceedsWithdrawAction, recent[0].Action)
	assert.Equal(t, seller, recent[0].To)
	assert.Equal(t, entity.SaleAction, recent[1].Action)
}

func TestListingsSpanCollections(t *testing.T) {
	bs := openStore(t)
	repo := NewListingRepository(bs)
	ctx := context.Background()
	other := common.HexToAddress("0x0000000000000000000000000000000000000abc")

	require.NoError(t, bs.Update(ctx, func(ctx context.Context) error {
		for _, l := range []entity.Listing{
			{ItemId: 1, Price: big.NewInt(10), Collection: collectionAddr, Seller: seller},
			{ItemId: 2, Price: big.NewInt(20), Collection: collectionAddr, Seller: seller},
			{ItemId: 1, Price: big.NewInt(30), Collection: other, Seller: seller},
		} {
			if err := repo.SaveListing(ctx, l); err != nil {
				return err
			}
		}
		return nil
	}))

	listing, err := repo.GetListing(ctx, other, 1)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "30", listing.Price.String())

	missing, err := repo.GetListing(ctx, other, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	listings, err := repo.GetListings(ctx, entity.ListingFilter{Collection: &collectionAddr})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, uint64(2), listings[1].ItemId)
	assert.Equal(t, collectionAddr, listings[1].Collection)

	all, err := repo.GetListings(ctx, entity.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProceedsTotalsDefault(t *testing.T) {
	bs := openStore(t)
	repo := NewProceedsRepository(bs)
	ctx := context.Background()

	totals, err := repo.GetTotals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.Sales.Sign())
	assert.Zero(t, totals.Outstanding().Sign())

	balance, err := repo.GetProceeds(ctx, seller)
	require.NoError(t, err)
	assert.Zero(t, balance.Sign())
}
