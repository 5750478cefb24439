package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GetParams gets all parameters from the store
func (k Keeper) GetParams(ctx context.Context) types.Params {
	var params types.Params
	found, err := k.getValue(ctx, ParamsKey, &params)
	if err != nil || !found {
		return types.DefaultParams()
	}
	return params
}

// SetParams sets the module parameters
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return k.setValue(ctx, ParamsKey, params)
}

// GetRoundConfig returns the configuration applied to rounds that start next.
func (k Keeper) GetRoundConfig(ctx context.Context) types.RoundConfig {
	var cfg types.RoundConfig
	found, err := k.getValue(ctx, RoundConfigKey, &cfg)
	if err != nil || !found {
		return types.DefaultRoundConfig()
	}
	if cfg.PaymentAmount.IsNil() {
		cfg.PaymentAmount = math.ZeroInt()
	}
	return cfg
}

func (k Keeper) setRoundConfig(ctx context.Context, cfg types.RoundConfig) error {
	return k.setValue(ctx, RoundConfigKey, cfg)
}

// Decimals returns the number of decimals of the answers.
func (k Keeper) Decimals(ctx context.Context) uint32 {
	return k.GetParams(ctx).Decimals
}

// Description returns the human readable description of the feed.
func (k Keeper) Description(ctx context.Context) string {
	return k.GetParams(ctx).Description
}

// Version returns the aggregator interface version.
func (k Keeper) Version() uint64 {
	return types.Version
}
