package entity

import "math/big"

type RegistrySettings struct {
	Name    string
	Symbol  string
	Price   *big.Int
	BaseUri string
	Revenue *big.Int
	Supply  uint64
}

// ProceedsTotals tracks the aggregate flows of the proceeds ledger:
// the sum of all balances plus Withdrawn always equals Sales.
type ProceedsTotals struct {
	Sales     *big.Int `json:"sales"`
	Withdrawn *big.Int `json:"withdrawn"`
	Excess    *big.Int `json:"excess"`
}

func NewProceedsTotals() ProceedsTotals {
	return ProceedsTotals{Sales: new(big.Int), Withdrawn: new(big.Int), Excess: new(big.Int)}
}

// Outstanding is what the ledger still owes to sellers.
func (t ProceedsTotals) Outstanding() *big.Int {
	return new(big.Int).Sub(t.Sales, t.Withdrawn)
}
