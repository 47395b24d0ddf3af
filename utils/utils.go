package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Units
const (
	SOL_UNIT = 1e9 // 1 SOL = 10^9 lamports
)

var solUnit = decimal.NewFromInt(SOL_UNIT)

// LamportsFromSOL parses a decimal SOL amount such as "0.01" into lamports.
// Amounts with more than 9 decimal places are rejected rather than rounded.
func LamportsFromSOL(sol string) (uint64, error) {
	d, err := decimal.NewFromString(sol)
	if err != nil {
		return 0, fmt.Errorf("invalid SOL amount %q: %w", sol, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid SOL amount %q: negative", sol)
	}
	lamports := d.Mul(solUnit)
	if !lamports.Equal(lamports.Truncate(0)) {
		return 0, fmt.Errorf("invalid SOL amount %q: more than 9 decimal places", sol)
	}
	if !lamports.BigInt().IsUint64() {
		return 0, fmt.Errorf("invalid SOL amount %q: overflows lamports", sol)
	}
	return lamports.BigInt().Uint64(), nil
}

// SOLFromLamports renders lamports as a SOL string, e.g. 10000000 => "0.01".
func SOLFromLamports(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0).Div(solUnit).String()
}
