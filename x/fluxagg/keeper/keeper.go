package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// Keeper maintains the state of the fluxagg module
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	authority  string // aggregator owner (usually governance module account)

	// answer validators reachable by address; the configured address is state
	validators map[string]types.AnswerValidator
	metrics    *FluxMetrics
}

// NewKeeper creates a new fluxagg Keeper instance
func NewKeeper(
	key storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	authority string,
) *Keeper {
	if _, err := sdk.AccAddressFromBech32(authority); err != nil {
		panic(fmt.Sprintf("invalid authority address %q: %s", authority, err))
	}

	return &Keeper{
		storeKey:   key,
		bankKeeper: bankKeeper,
		authority:  authority,
		validators: make(map[string]types.AnswerValidator),
		metrics:    NewFluxMetrics(),
	}
}

// getStore returns the KVStore for the fluxagg module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx context.Context) log.Logger {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// GetAuthority returns the aggregator owner
func (k Keeper) GetAuthority() string {
	return k.authority
}

// RegisterAnswerValidator makes v reachable under addr. It is only called
// once SetValidator points the aggregator at addr.
func (k Keeper) RegisterAnswerValidator(addr sdk.AccAddress, v types.AnswerValidator) {
	k.validators[addr.String()] = v
}

func (k Keeper) requireOwner(caller sdk.AccAddress) error {
	if caller.String() != k.authority {
		return types.ErrOnlyOwner
	}
	return nil
}

// atomically runs fn against a cached context and commits its writes and
// events only when fn succeeds.
func (k Keeper) atomically(ctx context.Context, fn func(ctx sdk.Context) error) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	cacheCtx, write := sdkCtx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

// blockTime is the block time in unix seconds, clamped at zero.
func blockTime(ctx context.Context) uint64 {
	unix := sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix)
}
