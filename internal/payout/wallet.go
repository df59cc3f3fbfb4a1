package payout

import (
	"context"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/repository"
	"github.com/ZilDuck/nft-marketplace/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"math/big"
)

// Wallet credits payouts to account balances kept in the same store as the
// ledger, so a payout commits or rolls back together with the withdrawal.
type Wallet struct {
	store       store.Transactor
	accountRepo repository.AccountRepository
}

func NewWallet(store store.Transactor, accountRepo repository.AccountRepository) *Wallet {
	return &Wallet{store, accountRepo}
}

func (w *Wallet) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%w: zero address", entity.ErrInvalidReceiver)
	}
	if err := entity.ValidateAmount(amount); err != nil {
		return err
	}

	return w.store.Update(ctx, func(ctx context.Context) error {
		balance, err := w.accountRepo.GetBalance(ctx, to)
		if err != nil {
			return err
		}

		balance, err = entity.AddAmounts(balance, amount)
		if err != nil {
			return err
		}

		if err := w.accountRepo.SetBalance(ctx, to, balance); err != nil {
			return err
		}

		zap.L().With(zap.String("to", to.Hex()), zap.String("amount", amount.String())).Debug("[Wallet] Credited account")
		return nil
	})
}

func (w *Wallet) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := w.store.View(ctx, func(ctx context.Context) (err error) {
		balance, err = w.accountRepo.GetBalance(ctx, account)
		return err
	})

	return balance, err
}
