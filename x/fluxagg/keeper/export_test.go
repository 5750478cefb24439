package keeper

// This file exports private keeper methods for white-box tests.

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func (k Keeper) ValidateOracleRound(ctx context.Context, oracle sdk.AccAddress, roundID uint32) types.Rejection {
	return k.validateOracleRound(ctx, oracle, roundID)
}

func (k Keeper) Supersedable(ctx context.Context, roundID uint32) bool {
	return k.supersedable(ctx, roundID)
}

func (k Keeper) TimedOut(ctx context.Context, roundID uint32) bool {
	return k.timedOut(ctx, roundID)
}

func (k Keeper) AcceptingSubmissions(ctx context.Context, roundID uint32) bool {
	return k.acceptingSubmissions(ctx, roundID)
}

func (k Keeper) SetFunds(ctx context.Context, funds types.Funds) error {
	return k.setFunds(ctx, funds)
}

func (k Keeper) SetOracleStatus(ctx context.Context, oracle sdk.AccAddress, status types.OracleStatus) error {
	return k.setOracleStatus(ctx, oracle, status)
}

func (k Keeper) Metrics() *FluxMetrics {
	return k.metrics
}

func SelectRank(values []math.Int, rank int) math.Int {
	return selectRank(values, rank)
}
