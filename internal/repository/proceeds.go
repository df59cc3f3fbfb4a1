package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"math/big"
)

const (
	prefixProceeds = "MARKET:PROCEEDS:"
	keyTotals      = "MARKET:TOTALS"
)

type ProceedsRepository interface {
	GetProceeds(ctx context.Context, seller common.Address) (*big.Int, error)
	SetProceeds(ctx context.Context, seller common.Address, amount *big.Int) error

	GetTotals(ctx context.Context) (entity.ProceedsTotals, error)
	SaveTotals(ctx context.Context, totals entity.ProceedsTotals) error
}

type proceedsRepository struct {
	store *store.BadgerStore
}

type totalsRecord struct {
	Sales     []byte
	Withdrawn []byte
	Excess    []byte
}

func NewProceedsRepository(store *store.BadgerStore) ProceedsRepository {
	return proceedsRepository{store}
}

func (r proceedsRepository) GetProceeds(ctx context.Context, seller common.Address) (*big.Int, error) {
	val, err := r.store.GetRaw(ctx, store.Key(prefixProceeds, seller.Bytes()))
	if err != nil {
		return nil, err
	}

	return entity.BytesToAmount(val), nil
}

func (r proceedsRepository) SetProceeds(ctx context.Context, seller common.Address, amount *big.Int) error {
	key := store.Key(prefixProceeds, seller.Bytes())
	if amount.Sign() == 0 {
		return r.store.Delete(ctx, key)
	}

	return r.store.SetRaw(ctx, key, entity.AmountToBytes(amount))
}

func (r proceedsRepository) GetTotals(ctx context.Context) (entity.ProceedsTotals, error) {
	var rec totalsRecord
	found, err := r.store.Get(ctx, []byte(keyTotals), &rec)
	if err != nil || !found {
		return entity.NewProceedsTotals(), err
	}

	return entity.ProceedsTotals{
		Sales:     entity.BytesToAmount(rec.Sales),
		Withdrawn: entity.BytesToAmount(rec.Withdrawn),
		Excess:    entity.BytesToAmount(rec.Excess),
	}, nil
}

func (r proceedsRepository) SaveTotals(ctx context.Context, totals entity.ProceedsTotals) error {
	rec := totalsRecord{
		Sales:     entity.AmountToBytes(totals.Sales),
		Withdrawn: entity.AmountToBytes(totals.Withdrawn),
		Excess:    entity.AmountToBytes(totals.Excess),
	}

	return r.store.Set(ctx, []byte(keyTotals), rec)
}
