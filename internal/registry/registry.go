package registry

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
)

const (
	DefaultName    = "Monster NFT"
	DefaultSymbol  = "MNFT"
	DefaultBaseUri = "ipfs://QmXztwDKYaBkyAqZj8LYby6aUfyAzSR4UkSnxpU4aqHnUU/"
)

type Config struct {
	Address common.Address
	Admin   common.Address
	Name    string
	Symbol  string
	Price   *big.Int
	BaseUri string
}

// Receiver is notified when an item lands on an address it was registered
// for. Returning an error rejects the transfer.
type Receiver interface {
	OnItemReceived(ctx context.Context, operator, from common.Address, itemId uint64) error
}

type ReceiverFunc func(ctx context.Context, operator, from common.Address, itemId uint64) error

func (f ReceiverFunc) OnItemReceived(ctx context.Context, operator, from common.Address, itemId uint64) error {
	return f(ctx, operator, from, itemId)
}

type Registry struct {
	address common.Address
	admin   common.Address

	store        store.Transactor
	itemRepo     repository.ItemRepository
	settingsRepo repository.SettingsRepository
	actionRepo   repository.ActionRepository
	payer        payout.Payer

	mu        sync.RWMutex
	receivers map[common.Address]Receiver
}

// NewRegistry opens the registry stored under cfg.Address, creating its
// settings from cfg on first use. Settings already persisted take precedence.
func NewRegistry(
	ctx context.Context,
	cfg Config,
	store store.Transactor,
	itemRepo repository.ItemRepository,
	settingsRepo repository.SettingsRepository,
	actionRepo repository.ActionRepository,
	payer payout.Payer,
) (*Registry, error) {
	if cfg.Address == (common.Address{}) {
		return nil, errors.New("registry address is required")
	}
	if cfg.Admin == (common.Address{}) {
		return nil, errors.New("registry administrator is required")
	}
	if err := entity.ValidateAmount(cfg.Price); err != nil {
		return nil, fmt.Errorf("registry price: %w", err)
	}

	r := &Registry{
		address:      cfg.Address,
		admin:        cfg.Admin,
		store:        store,
		itemRepo:     itemRepo,
		settingsRepo: settingsRepo,
		actionRepo:   actionRepo,
		payer:        payer,
		receivers:    make(map[common.Address]Receiver),
	}

	err := store.Update(ctx, func(ctx context.Context) error {
		_, err := settingsRepo.GetSettings(ctx, cfg.Address)
		if !errors.Is(err, repository.ErrSettingsNotFound) {
			return err
		}

		zap.L().With(zap.String("collection", cfg.Address.Hex()), zap.String("price", cfg.Price.String())).Info("[Registry] Initialising collection")
		return settingsRepo.SaveSettings(ctx, cfg.Address, entity.RegistrySettings{
			Name:    cfg.Name,
			Symbol:  cfg.Symbol,
			Price:   new(big.Int).Set(cfg.Price),
			BaseUri: cfg.BaseUri,
			Revenue: new(big.Int),
		})
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) Address() common.Address {
	return r.address
}

func (r *Registry) Admin() common.Address {
	return r.admin
}

func (r *Registry) RegisterReceiver(addr common.Address, receiver Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if receiver == nil {
		delete(r.receivers, addr)
		return
	}
	r.receivers[addr] = receiver
}

func (r *Registry) receiver(addr common.Address) Receiver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.receivers[addr]
}

// Mint assigns the next sequential id to caller. Overpayment is kept as
// revenue.
func (r *Registry) Mint(ctx context.Context, caller common.Address, payment *big.Int) (uint64, error) {
	if caller == (common.Address{}) {
		return 0, fmt.Errorf("%w: mint to the zero address", entity.ErrInvalidReceiver)
	}
	if err := entity.ValidateAmount(payment); err != nil {
		return 0, err
	}

	var id uint64
	err := r.store.Update(ctx, func(ctx context.Context) error {
		settings, err := r.settingsRepo.GetSettings(ctx, r.address)
		if err != nil {
			return err
		}
		if payment.Cmp(settings.Price) < 0 {
			return fmt.Errorf("%w: paid %s, price is %s", entity.ErrInsufficientPayment, payment, settings.Price)
		}

		revenue, err := entity.AddAmounts(settings.Revenue, payment)
		if err != nil {
			return err
		}

		id = settings.Supply + 1
		settings.Supply = id
		settings.Revenue = revenue
		if err := r.settingsRepo.SaveSettings(ctx, r.address, *settings); err != nil {
			return err
		}

		item := entity.Item{Collection: r.address, Id: id, Owner: caller, MintedAt: timeNow()}
		if err := r.itemRepo.SaveItem(ctx, item); err != nil {
			return err
		}
		if err := r.adjustOwned(ctx, caller, 1); err != nil {
			return err
		}

		return r.record(ctx, event.ItemMintedEvent, &entity.Action{
			Action:     entity.MintAction,
			Collection: r.address,
			ItemId:     id,
			To:         caller,
			Cost:       payment.String(),
		})
	})
	if err != nil {
		return 0, err
	}

	zap.L().With(zap.String("owner", caller.Hex()), zap.Uint64("itemId", id)).Info("[Registry] Item minted")
	return id, nil
}

// ChangePrice replaces the mint price. No floor is enforced, a zero price is
// accepted.
func (r *Registry) ChangePrice(ctx context.Context, caller common.Address, newPrice *big.Int) error {
	if caller != r.admin {
		return entity.ErrNotOwner
	}
	if err := entity.ValidateAmount(newPrice); err != nil {
		return err
	}

	return r.store.Update(ctx, func(ctx context.Context) error {
		settings, err := r.settingsRepo.GetSettings(ctx, r.address)
		if err != nil {
			return err
		}

		settings.Price = new(big.Int).Set(newPrice)
		if err := r.settingsRepo.SaveSettings(ctx, r.address, *settings); err != nil {
			return err
		}

		return r.record(ctx, event.PriceChangedEvent, &entity.Action{
			Action:     entity.PriceChangeAction,
			Collection: r.address,
			From:       caller,
			Cost:       newPrice.String(),
		})
	})
}

// Withdraw pays the accumulated mint revenue to the administrator. The revenue
// is zeroed before the payout is attempted and restored by rollback if it fails.
func (r *Registry) Withdraw(ctx context.Context, caller common.Address) (*big.Int, error) {
	if caller != r.admin {
		return nil, entity.ErrNotOwner
	}

	amount := new(big.Int)
	err := r.store.Update(ctx, func(ctx context.Context) error {
		settings, err := r.settingsRepo.GetSettings(ctx, r.address)
		if err != nil {
			return err
		}

		amount.Set(settings.Revenue)
		settings.Revenue = new(big.Int)
		if err := r.settingsRepo.SaveSettings(ctx, r.address, *settings); err != nil {
			return err
		}

		if amount.Sign() > 0 {
			if err := r.payer.Pay(ctx, r.admin, amount); err != nil {
				return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
			}
		}

		return r.record(ctx, event.RevenueWithdrawnEvent, &entity.Action{
			Action:     entity.RevenueWithdrawAction,
			Collection: r.address,
			To:         r.admin,
			Cost:       amount.String(),
		})
	})
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("[Registry] Revenue withdrawal failed")
		return nil, err
	}

	zap.L().With(zap.String("admin", r.admin.Hex()), zap.String("amount", amount.String())).Info("[Registry] Revenue withdrawn")
	return amount, nil
}

func (r *Registry) SetBaseURI(ctx context.Context, caller common.Address, baseUri string) error {
	if caller != r.admin {
		return entity.ErrNotOwner
	}

	return r.store.Update(ctx, func(ctx context.Context) error {
		settings, err := r.settingsRepo.GetSettings(ctx, r.address)
		if err != nil {
			return err
		}

		settings.BaseUri = baseUri
		if err := r.settingsRepo.SaveSettings(ctx, r.address, *settings); err != nil {
			return err
		}

		return r.record(ctx, event.BaseUriUpdatedEvent, &entity.Action{
			Action:     entity.BaseUriAction,
			Collection: r.address,
			From:       caller,
			Memo:       baseUri,
		})
	})
}

func (r *Registry) record(ctx context.Context, eventType event.Type, action *entity.Action) error {
	if err := r.actionRepo.AddAction(ctx, action); err != nil {
		return err
	}

	emitted := *action
	store.AfterCommit(ctx, func() {
		event.EmitEvent(eventType, emitted)
	})

	return nil
}

func (r *Registry) adjustOwned(ctx context.Context, owner common.Address, delta int) error {
	count, err := r.itemRepo.GetOwnedCount(ctx, r.address, owner)
	if err != nil {
		return err
	}

	if delta < 0 && count < uint64(-delta) {
		return fmt.Errorf("owned count underflow for %s", owner.Hex())
	}

	return r.itemRepo.SetOwnedCount(ctx, r.address, owner, uint64(int64(count)+int64(delta)))
}
