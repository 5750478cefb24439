package keeper

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

// Median returns the median of values. For an even count it is the mean of
// the two central values, truncated toward zero. values is left untouched.
func Median(values []math.Int) (math.Int, error) {
	n := len(values)
	if n == 0 {
		return math.Int{}, fmt.Errorf("median of empty list")
	}

	if n%2 == 1 {
		return selectRank(values, (n+1)/2), nil
	}

	lo := selectRank(values, n/2)
	hi := selectRank(values, n/2+1)
	sum := new(big.Int).Add(lo.BigInt(), hi.BigInt())
	return math.NewIntFromBigInt(sum.Quo(sum, big.NewInt(2))), nil
}

// selectRank returns the k-th smallest value (1-indexed) using a three-way
// quickselect pivoting on the middle element. Runs of equal values are never
// recursed into.
func selectRank(values []math.Int, k int) math.Int {
	list := values
	for {
		pivot := list[len(list)/2]

		var less, greater []math.Int
		for _, v := range list {
			switch {
			case v.LT(pivot):
				less = append(less, v)
			case v.GT(pivot):
				greater = append(greater, v)
			}
		}

		switch {
		case k <= len(less):
			list = less
		case k > len(list)-len(greater):
			k -= len(list) - len(greater)
			list = greater
		default:
			return pivot
		}
	}
}
