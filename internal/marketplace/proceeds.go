package marketplace

import (
	"context"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"math/big"
)

// WithdrawProceeds pays the caller's whole balance out. The balance is zeroed
// before the payout runs; a failed payout rolls the withdrawal back.
func (e *Engine) WithdrawProceeds(ctx context.Context, caller common.Address) (*big.Int, error) {
	amount := new(big.Int)
	err := e.store.Update(ctx, func(ctx context.Context) error {
		balance, err := e.proceedsRepo.GetProceeds(ctx, caller)
		if err != nil {
			return err
		}
		if balance.Sign() == 0 {
			return entity.ErrNoProceeds
		}
		amount.Set(balance)

		if err := e.proceedsRepo.SetProceeds(ctx, caller, new(big.Int)); err != nil {
			return err
		}

		totals, err := e.proceedsRepo.GetTotals(ctx)
		if err != nil {
			return err
		}
		totals.Withdrawn = new(big.Int).Add(totals.Withdrawn, amount)
		if err := e.proceedsRepo.SaveTotals(ctx, totals); err != nil {
			return err
		}

		if err := e.payer.Pay(ctx, caller, amount); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
		}

		return e.record(ctx, event.ProceedsWithdrawnEvent, &entity.Action{
			Action: entity.ProceedsWithdrawAction,
			To:     caller,
			Cost:   amount.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	zap.L().With(zap.String("seller", caller.Hex()), zap.String("amount", amount.String())).Info("[Marketplace] Proceeds withdrawn")
	return amount, nil
}

func (e *Engine) GetProceeds(ctx context.Context, seller common.Address) (*big.Int, error) {
	var balance *big.Int
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		balance, err = e.proceedsRepo.GetProceeds(ctx, seller)
		return err
	})

	return balance, err
}

func (e *Engine) Totals(ctx context.Context) (entity.ProceedsTotals, error) {
	var totals entity.ProceedsTotals
	err := e.store.View(ctx, func(ctx context.Context) (err error) {
		totals, err = e.proceedsRepo.GetTotals(ctx)
		return err
	})

	return totals, err
}
