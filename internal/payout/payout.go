package payout

import (
	"context"
	"github.com/ethereum/go-ethereum/common"
	"math/big"
)

// Payer delivers funds held by the ledger to an external account. It is
// invoked with the context of the withdrawing transaction, after the ledger
// has already been debited, so any call back into the ledger observes the
// debited state.
type Payer interface {
	Pay(ctx context.Context, to common.Address, amount *big.Int) error
}

type PayerFunc func(ctx context.Context, to common.Address, amount *big.Int) error

func (f PayerFunc) Pay(ctx context.Context, to common.Address, amount *big.Int) error {
	return f(ctx, to, amount)
}
