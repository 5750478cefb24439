package keeper

import (
	"math/big"

	"cosmossdk.io/math"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

var maxUint256 = new(big.Int).Lsh(big.NewInt(1), 256)

// SafeAdd adds two amounts with overflow checking
func SafeAdd(a, b math.Int) (math.Int, error) {
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.CmpAbs(maxUint256) >= 0 {
		return math.Int{}, types.ErrAdditionOverflow
	}
	return math.NewIntFromBigInt(result), nil
}

// SafeSub subtracts two amounts, failing when the result would be negative
func SafeSub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, types.ErrSubtractionOverflow.Wrapf("cannot subtract %s from %s", b, a)
	}
	return math.NewIntFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt())), nil
}

// SafeMul multiplies two amounts with overflow checking
func SafeMul(a, b math.Int) (math.Int, error) {
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.CmpAbs(maxUint256) >= 0 {
		return math.Int{}, types.ErrAdditionOverflow.Wrap("multiplication overflow")
	}
	return math.NewIntFromBigInt(result), nil
}
