package marketplace

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/payout"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"math/big"
	"sync"
	"time"
)

// Collection is the part of a token registry the marketplace trades against.
type Collection interface {
	Address() common.Address
	OwnerOf(ctx context.Context, id uint64) (common.Address, error)
	GetApproved(ctx context.Context, id uint64) (common.Address, error)
	IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error)
	TransferFrom(ctx context.Context, caller, from, to common.Address, id uint64) error
}

type Engine struct {
	address common.Address

	store        store.Transactor
	listingRepo  repository.ListingRepository
	proceedsRepo repository.ProceedsRepository
	actionRepo   repository.ActionRepository
	payer        payout.Payer

	mu          sync.RWMutex
	collections map[common.Address]Collection
}

func NewEngine(
	address common.Address,
	store store.Transactor,
	listingRepo repository.ListingRepository,
	proceedsRepo repository.ProceedsRepository,
	actionRepo repository.ActionRepository,
	payer payout.Payer,
) (*Engine, error) {
	if address == (common.Address{}) {
		return nil, errors.New("marketplace address is required")
	}

	return &Engine{
		address:      address,
		store:        store,
		listingRepo:  listingRepo,
		proceedsRepo: proceedsRepo,
		actionRepo:   actionRepo,
		payer:        payer,
		collections:  make(map[common.Address]Collection),
	}, nil
}

// Address is the identity the engine uses as operator when moving sold items.
func (e *Engine) Address() common.Address {
	return e.address
}

func (e *Engine) AddCollection(c Collection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	zap.L().With(zap.String("collection", c.Address().Hex())).Info("[Marketplace] Collection registered")
	e.collections[c.Address()] = c
}

func (e *Engine) Collections() []common.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	addrs := make([]common.Address, 0, len(e.collections))
	for addr := range e.collections {
		addrs = append(addrs, addr)
	}

	return addrs
}

func (e *Engine) collection(addr common.Address) (Collection, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownCollection, addr.Hex())
	}

	return c, nil
}

func (e *Engine) ListItem(ctx context.Context, caller common.Address, itemId uint64, collection common.Address, price *big.Int) error {
	c, err := e.collection(collection)
	if err != nil {
		return err
	}

	err = e.store.Update(ctx, func(ctx context.Context) error {
		if err := e.requireOwner(ctx, c, caller, itemId); err != nil {
			return err
		}
		if err := validatePrice(price); err != nil {
			return err
		}

		existing, err := e.listingRepo.GetListing(ctx, collection, itemId)
		if err != nil {
			return err
		}
		if existing != nil {
			return entity.ErrAlreadyListed
		}

		approved, err := e.isApprovedForSale(ctx, c, caller, itemId)
		if err != nil {
			return err
		}
		if !approved {
			return entity.ErrNotApprovedForSale
		}

		listing := entity.Listing{
			ItemId:     itemId,
			Price:      new(big.Int).Set(price),
			Collection: collection,
			Seller:     caller,
			ListedAt:   time.Now().UTC(),
		}
		if err := e.listingRepo.SaveListing(ctx, listing); err != nil {
			return err
		}

		return e.record(ctx, event.ItemListedEvent, &entity.Action{
			Action:     entity.ListingAction,
			Collection: collection,
			ItemId:     itemId,
			From:       caller,
			Cost:       price.String(),
		})
	})
	if err != nil {
		return err
	}

	zap.L().With(zap.String("seller", caller.Hex()), zap.Uint64("itemId", itemId), zap.String("price", price.String())).Info("[Marketplace] Item listed")
	return nil
}

func (e *Engine) CancelListing(ctx context.Context, caller common.Address, itemId uint64, collection common.Address) error {
	c, err := e.collection(collection)
	if err != nil {
		return err
	}

	return e.store.Update(ctx, func(ctx context.Context) error {
		if err := e.requireOwner(ctx, c, caller, itemId); err != nil {
			return err
		}

		listing, err := e.listingRepo.GetListing(ctx, collection, itemId)
		if err != nil {
			return err
		}
		if listing == nil {
			return entity.ErrNotListed
		}

		if err := e.listingRepo.DeleteListing(ctx, collection, itemId); err != nil {
			return err
		}

		return e.record(ctx, event.ListingCanceledEvent, &entity.Action{
			Action:     entity.DelistingAction,
			Collection: collection,
			ItemId:     itemId,
			From:       caller,
			Cost:       listing.Price.String(),
		})
	})
}

// UpdateListing replaces the price of an active listing. Seller and item are
// left as they were.
func (e *Engine) UpdateListing(ctx context.Context, caller common.Address, newPrice *big.Int, itemId uint64, collection common.Address) error {
	c, err := e.collection(collection)
	if err != nil {
		return err
	}

	return e.store.Update(ctx, func(ctx context.Context) error {
		if err := e.requireOwner(ctx, c, caller, itemId); err != nil {
			return err
		}

		listing, err := e.listingRepo.GetListing(ctx, collection, itemId)
		if err != nil {
			return err
		}
		if listing == nil {
			return entity.ErrNotListed
		}
		if err := validatePrice(newPrice); err != nil {
			return err
		}

		listing.Price = new(big.Int).Set(newPrice)
		if err := e.listingRepo.SaveListing(ctx, *listing); err != nil {
			return err
		}

		return e.record(ctx, event.ListingUpdatedEvent, &entity.Action{
			Action:     entity.ListingUpdateAction,
			Collection: collection,
			ItemId:     itemId,
			From:       caller,
			Cost:       newPrice.String(),
		})
	})
}

// BuyItem sells a listed item to buyer. Proceeds are credited and the listing
// removed before the item is moved, so a receiver hook re-entering the engine
// observes the sale as done. A failed transfer discards all of it.
// Any payment above the listing price is retained and counted as excess.
func (e *Engine) BuyItem(ctx context.Context, buyer common.Address, itemId uint64, collection common.Address, payment *big.Int) error {
	c, err := e.collection(collection)
	if err != nil {
		return err
	}
	if err := entity.ValidateAmount(payment); err != nil {
		return err
	}

	var sold entity.Listing
	err = e.store.Update(ctx, func(ctx context.Context) error {
		listing, err := e.listingRepo.GetListing(ctx, collection, itemId)
		if err != nil {
			return err
		}
		if listing == nil {
			return entity.ErrNotListed
		}
		if payment.Cmp(listing.Price) < 0 {
			return fmt.Errorf("%w: paid %s, listed at %s", entity.ErrInsufficientPayment, payment, listing.Price)
		}
		sold = *listing

		if err := e.creditSale(ctx, *listing, payment); err != nil {
			return err
		}
		if err := e.listingRepo.DeleteListing(ctx, collection, itemId); err != nil {
			return err
		}

		if err := c.TransferFrom(ctx, e.address, listing.Seller, buyer, itemId); err != nil {
			return err
		}

		return e.record(ctx, event.ItemBoughtEvent, &entity.Action{
			Action:     entity.SaleAction,
			Collection: collection,
			ItemId:     itemId,
			From:       listing.Seller,
			To:         buyer,
			Cost:       listing.Price.String(),
		})
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("itemId", itemId), zap.String("buyer", buyer.Hex())).Warn("[Marketplace] Purchase failed")
		return err
	}

	zap.L().With(
		zap.String("seller", sold.Seller.Hex()),
		zap.String("buyer", buyer.Hex()),
		zap.Uint64("itemId", itemId),
		zap.String("price", sold.Price.String()),
	).Info("[Marketplace] Item sold")

	return nil
}

func (e *Engine) creditSale(ctx context.Context, listing entity.Listing, payment *big.Int) error {
	balance, err := e.proceedsRepo.GetProceeds(ctx, listing.Seller)
	if err != nil {
		return err
	}
	if balance, err = entity.AddAmounts(balance, listing.Price); err != nil {
		return err
	}
	if err := e.proceedsRepo.SetProceeds(ctx, listing.Seller, balance); err != nil {
		return err
	}

	totals, err := e.proceedsRepo.GetTotals(ctx)
	if err != nil {
		return err
	}
	if totals.Sales, err = entity.AddAmounts(totals.Sales, listing.Price); err != nil {
		return err
	}
	if totals.Excess, err = entity.AddAmounts(totals.Excess, new(big.Int).Sub(payment, listing.Price)); err != nil {
		return err
	}

	return e.proceedsRepo.SaveTotals(ctx, totals)
}

func (e *Engine) requireOwner(ctx context.Context, c Collection, caller common.Address, itemId uint64) error {
	owner, err := c.OwnerOf(ctx, itemId)
	if err != nil {
		return err
	}
	if owner != caller {
		return entity.ErrNotItemOwner
	}

	return nil
}

func (e *Engine) isApprovedForSale(ctx context.Context, c Collection, owner common.Address, itemId uint64) (bool, error) {
	approved, err := c.GetApproved(ctx, itemId)
	if err != nil {
		return false, err
	}
	if approved != (common.Address{}) && approved == e.address {
		return true, nil
	}

	return c.IsApprovedForAll(ctx, owner, e.address)
}

func (e *Engine) record(ctx context.Context, eventType event.Type, action *entity.Action) error {
	if err := e.actionRepo.AddAction(ctx, action); err != nil {
		return err
	}

	emitted := *action
	store.AfterCommit(ctx, func() {
		event.EmitEvent(eventType, emitted)
	})

	return nil
}

func validatePrice(price *big.Int) error {
	if err := entity.ValidateAmount(price); err != nil {
		return err
	}
	if price.Sign() == 0 {
		return entity.ErrInvalidPrice
	}

	return nil
}
