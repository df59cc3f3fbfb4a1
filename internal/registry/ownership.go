package registry

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"math/big"
	"time"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// TransferFrom moves id from `from` to `to`. The caller must be the owner, the
// approved address for id or an operator of the owner. The receiver hook of
// `to` runs after ownership has been updated.
func (r *Registry) TransferFrom(ctx context.Context, caller, from, to common.Address, id uint64) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", entity.ErrInvalidReceiver)
	}

	return r.store.Update(ctx, func(ctx context.Context) error {
		item, err := r.item(ctx, id)
		if err != nil {
			return err
		}
		if item.Owner != from {
			return fmt.Errorf("%w: transfer from incorrect owner %s", entity.ErrNotItemOwner, from.Hex())
		}

		authorized, err := r.isAuthorized(ctx, *item, caller)
		if err != nil {
			return err
		}
		if !authorized {
			return entity.ErrNotAuthorized
		}

		item.Owner = to
		item.Approved = common.Address{}
		if err := r.itemRepo.SaveItem(ctx, *item); err != nil {
			return err
		}
		if err := r.adjustOwned(ctx, from, -1); err != nil {
			return err
		}
		if err := r.adjustOwned(ctx, to, 1); err != nil {
			return err
		}

		err = r.record(ctx, event.ItemTransferredEvent, &entity.Action{
			Action:     entity.TransferAction,
			Collection: r.address,
			ItemId:     id,
			From:       from,
			To:         to,
		})
		if err != nil {
			return err
		}

		if recv := r.receiver(to); recv != nil {
			if err := recv.OnItemReceived(ctx, caller, from, id); err != nil {
				zap.L().With(zap.Error(err), zap.Uint64("itemId", id), zap.String("to", to.Hex())).Warn("[Registry] Receiver rejected transfer")
				return fmt.Errorf("%w: %w", entity.ErrTransferRejected, err)
			}
		}

		return nil
	})
}

func (r *Registry) Approve(ctx context.Context, caller, to common.Address, id uint64) error {
	return r.store.Update(ctx, func(ctx context.Context) error {
		item, err := r.item(ctx, id)
		if err != nil {
			return err
		}
		if to == item.Owner {
			return fmt.Errorf("%w: approval to current owner", entity.ErrInvalidReceiver)
		}

		if caller != item.Owner {
			operator, err := r.itemRepo.IsOperator(ctx, r.address, item.Owner, caller)
			if err != nil {
				return err
			}
			if !operator {
				return entity.ErrNotAuthorized
			}
		}

		item.Approved = to
		if err := r.itemRepo.SaveItem(ctx, *item); err != nil {
			return err
		}

		return r.record(ctx, event.ItemApprovedEvent, &entity.Action{
			Action:     entity.ApprovalAction,
			Collection: r.address,
			ItemId:     id,
			From:       item.Owner,
			To:         to,
		})
	})
}

func (r *Registry) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	if caller == operator {
		return fmt.Errorf("%w: approve to caller", entity.ErrInvalidReceiver)
	}

	return r.store.Update(ctx, func(ctx context.Context) error {
		if err := r.itemRepo.SetOperator(ctx, r.address, caller, operator, approved); err != nil {
			return err
		}

		return r.record(ctx, event.ApprovalForAllEvent, &entity.Action{
			Action:     entity.ApprovalForAllAction,
			Collection: r.address,
			From:       caller,
			To:         operator,
			Memo:       fmt.Sprintf("%t", approved),
		})
	})
}

func (r *Registry) Item(ctx context.Context, id uint64) (*entity.Item, error) {
	var item *entity.Item
	err := r.store.View(ctx, func(ctx context.Context) (err error) {
		item, err = r.item(ctx, id)
		return err
	})

	return item, err
}

func (r *Registry) OwnerOf(ctx context.Context, id uint64) (common.Address, error) {
	item, err := r.Item(ctx, id)
	if err != nil {
		return common.Address{}, err
	}

	return item.Owner, nil
}

func (r *Registry) GetApproved(ctx context.Context, id uint64) (common.Address, error) {
	item, err := r.Item(ctx, id)
	if err != nil {
		return common.Address{}, err
	}

	return item.Approved, nil
}

func (r *Registry) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var approved bool
	err := r.store.View(ctx, func(ctx context.Context) (err error) {
		approved, err = r.itemRepo.IsOperator(ctx, r.address, owner, operator)
		return err
	})

	return approved, err
}

func (r *Registry) BalanceOf(ctx context.Context, owner common.Address) (uint64, error) {
	var count uint64
	err := r.store.View(ctx, func(ctx context.Context) (err error) {
		count, err = r.itemRepo.GetOwnedCount(ctx, r.address, owner)
		return err
	})

	return count, err
}

// TokenURI is the metadata pointer of a minted item: base uri + id + ".json".
func (r *Registry) TokenURI(ctx context.Context, id uint64) (string, error) {
	var uri string
	err := r.store.View(ctx, func(ctx context.Context) error {
		if _, err := r.item(ctx, id); err != nil {
			return err
		}

		settings, err := r.settingsRepo.GetSettings(ctx, r.address)
		if err != nil {
			return err
		}

		uri = entity.TokenUri(settings.BaseUri, id)
		return nil
	})

	return uri, err
}

func (r *Registry) Settings(ctx context.Context) (*entity.RegistrySettings, error) {
	var settings *entity.RegistrySettings
	err := r.store.View(ctx, func(ctx context.Context) (err error) {
		settings, err = r.settingsRepo.GetSettings(ctx, r.address)
		return err
	})

	return settings, err
}

func (r *Registry) Price(ctx context.Context) (*big.Int, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return nil, err
	}

	return settings.Price, nil
}

func (r *Registry) BaseURI(ctx context.Context) (string, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return "", err
	}

	return settings.BaseUri, nil
}

func (r *Registry) TotalSupply(ctx context.Context) (uint64, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return 0, err
	}

	return settings.Supply, nil
}

func (r *Registry) item(ctx context.Context, id uint64) (*entity.Item, error) {
	item, err := r.itemRepo.GetItem(ctx, r.address, id)
	if errors.Is(err, repository.ErrItemNotFound) {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnknownItem, id)
	}

	return item, err
}

func (r *Registry) isAuthorized(ctx context.Context, item entity.Item, caller common.Address) (bool, error) {
	if caller == item.Owner || item.IsApproved(caller) {
		return true, nil
	}

	return r.itemRepo.IsOperator(ctx, r.address, item.Owner, caller)
}

func (r *Registry) Revenue(ctx context.Context) (*big.Int, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return nil, err
	}

	return settings.Revenue, nil
}

func (r *Registry) Name(ctx context.Context) (string, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return "", err
	}

	return settings.Name, nil
}

func (r *Registry) Symbol(ctx context.Context) (string, error) {
	settings, err := r.Settings(ctx)
	if err != nil {
		return "", err
	}

	return settings.Symbol, nil
}
