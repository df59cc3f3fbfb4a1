package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"time"
)

const (
	prefixItem     = "REGISTRY:ITEM:"
	prefixOwned    = "REGISTRY:OWNED:"
	prefixOperator = "REGISTRY:OPERATOR:"
)

type ItemRepository interface {
	GetItem(ctx context.Context, collection common.Address, id uint64) (*entity.Item, error)
	SaveItem(ctx context.Context, item entity.Item) error

	GetOwnedCount(ctx context.Context, collection, owner common.Address) (uint64, error)
	SetOwnedCount(ctx context.Context, collection, owner common.Address, count uint64) error

	IsOperator(ctx context.Context, collection, owner, operator common.Address) (bool, error)
	SetOperator(ctx context.Context, collection, owner, operator common.Address, approved bool) error
}

type itemRepository struct {
	store *store.BadgerStore
}

type itemRecord struct {
	Owner    []byte
	Approved []byte
	MintedAt time.Time
}

func NewItemRepository(store *store.BadgerStore) ItemRepository {
	return itemRepository{store}
}

func (r itemRepository) GetItem(ctx context.Context, collection common.Address, id uint64) (*entity.Item, error) {
	var rec itemRecord
	found, err := r.store.Get(ctx, itemKey(collection, id), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrItemNotFound
	}

	return &entity.Item{
		Collection: collection,
		Id:         id,
		Owner:      common.BytesToAddress(rec.Owner),
		Approved:   common.BytesToAddress(rec.Approved),
		MintedAt:   rec.MintedAt,
	}, nil
}

func (r itemRepository) SaveItem(ctx context.Context, item entity.Item) error {
	rec := itemRecord{
		Owner:    item.Owner.Bytes(),
		Approved: item.Approved.Bytes(),
		MintedAt: item.MintedAt,
	}

	return r.store.Set(ctx, itemKey(item.Collection, item.Id), rec)
}

func (r itemRepository) GetOwnedCount(ctx context.Context, collection, owner common.Address) (uint64, error) {
	val, err := r.store.GetRaw(ctx, store.Key(prefixOwned, collection.Bytes(), owner.Bytes()))
	if err != nil {
		return 0, err
	}

	return store.BytesToUint64(val), nil
}

func (r itemRepository) SetOwnedCount(ctx context.Context, collection, owner common.Address, count uint64) error {
	key := store.Key(prefixOwned, collection.Bytes(), owner.Bytes())
	if count == 0 {
		return r.store.Delete(ctx, key)
	}

	return r.store.SetRaw(ctx, key, store.Uint64ToBytes(count))
}

func (r itemRepository) IsOperator(ctx context.Context, collection, owner, operator common.Address) (bool, error) {
	val, err := r.store.GetRaw(ctx, store.Key(prefixOperator, collection.Bytes(), owner.Bytes(), operator.Bytes()))
	if err != nil {
		return false, err
	}

	return len(val) > 0, nil
}

func (r itemRepository) SetOperator(ctx context.Context, collection, owner, operator common.Address, approved bool) error {
	key := store.Key(prefixOperator, collection.Bytes(), owner.Bytes(), operator.Bytes())
	if !approved {
		return r.store.Delete(ctx, key)
	}

	return r.store.SetRaw(ctx, key, []byte{1})
}

func itemKey(collection common.Address, id uint64) []byte {
	return store.Key(prefixItem, collection.Bytes(), store.Uint64ToBytes(id))
}
