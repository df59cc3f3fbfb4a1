package repository

import (
	"context"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vmihailenco/msgpack/v4"
	"time"
)

const prefixListing = "MARKET:LISTING:"

type ListingRepository interface {
	GetListing(ctx context.Context, collection common.Address, itemId uint64) (*entity.Listing, error)
	SaveListing(ctx context.Context, listing entity.Listing) error
	DeleteListing(ctx context.Context, collection common.Address, itemId uint64) error
	GetListings(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error)
}

type listingRepository struct {
	store *store.BadgerStore
}

type listingRecord struct {
	Price    []byte
	Seller   []byte
	ListedAt time.Time
}

func NewListingRepository(store *store.BadgerStore) ListingRepository {
	return listingRepository{store}
}

// GetListing returns nil when no listing exists for the key.
func (r listingRepository) GetListing(ctx context.Context, collection common.Address, itemId uint64) (*entity.Listing, error) {
	var rec listingRecord
	found, err := r.store.Get(ctx, listingKey(collection, itemId), &rec)
	if err != nil || !found {
		return nil, err
	}

	listing := rec.toEntity(collection, itemId)
	return &listing, nil
}

func (r listingRepository) SaveListing(ctx context.Context, listing entity.Listing) error {
	rec := listingRecord{
		Price:    entity.AmountToBytes(listing.Price),
		Seller:   listing.Seller.Bytes(),
		ListedAt: listing.ListedAt,
	}

	return r.store.Set(ctx, listingKey(listing.Collection, listing.ItemId), rec)
}

func (r listingRepository) DeleteListing(ctx context.Context, collection common.Address, itemId uint64) error {
	return r.store.Delete(ctx, listingKey(collection, itemId))
}

func (r listingRepository) GetListings(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	prefix := []byte(prefixListing)
	if filter.Collection != nil {
		prefix = store.Key(prefixListing, filter.Collection.Bytes())
	}

	listings := make([]entity.Listing, 0)
	err := r.store.Iterate(ctx, prefix, 0, func(key, val []byte) error {
		var rec listingRecord
		if err := msgpack.Unmarshal(val, &rec); err != nil {
			return err
		}

		id := key[len(prefixListing):]
		listing := rec.toEntity(common.BytesToAddress(id[:common.AddressLength]), store.BytesToUint64(id[common.AddressLength:]))
		if !filter.Matches(listing) {
			return nil
		}
		if filter.Limit > 0 && len(listings) == filter.Limit {
			return errStopIteration
		}
		listings = append(listings, listing)

		return nil
	})
	if err == errStopIteration {
		err = nil
	}

	return listings, err
}

func (rec listingRecord) toEntity(collection common.Address, itemId uint64) entity.Listing {
	return entity.Listing{
		ItemId:     itemId,
		Price:      entity.BytesToAmount(rec.Price),
		Collection: collection,
		Seller:     common.BytesToAddress(rec.Seller),
		ListedAt:   rec.ListedAt,
	}
}

func listingKey(collection common.Address, itemId uint64) []byte {
	return store.Key(prefixListing, collection.Bytes(), store.Uint64ToBytes(itemId))
}
