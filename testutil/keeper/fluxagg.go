package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdkstd "github.com/cosmos/cosmos-sdk/std"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// FaucetModuleName is a minting module account used to fund test accounts.
const FaucetModuleName = "faucet"

// GenesisTime is the block time of contexts returned by FluxaggKeeper.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// BlockedRecipient cannot receive funds from the bank keeper, which makes
// every ledger transfer to it fail.
var BlockedRecipient = sdk.AccAddress([]byte("blocked_recipient___"))

// FluxaggKeeper creates a test keeper for the fluxagg module backed by real
// auth and bank keepers on an in-memory store. The aggregator is initialized
// from the default genesis and owned by the gov module account.
func FluxaggKeeper(t testing.TB) (*keeper.Keeper, bankkeeper.BaseKeeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	authStoreKey := storetypes.NewKVStoreKey(authtypes.StoreKey)
	bankStoreKey := storetypes.NewKVStoreKey(banktypes.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(authStoreKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(bankStoreKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	registry := codectypes.NewInterfaceRegistry()
	sdkstd.RegisterInterfaces(registry)
	authtypes.RegisterInterfaces(registry)
	banktypes.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)
	authority := authtypes.NewModuleAddress(govtypes.ModuleName)

	maccPerms := map[string][]string{
		types.ModuleName:    nil,
		FaucetModuleName:    {authtypes.Minter},
		govtypes.ModuleName: nil,
	}

	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		runtime.NewKVStoreService(authStoreKey),
		authtypes.ProtoBaseAccount,
		maccPerms,
		address.NewBech32Codec(sdk.GetConfig().GetBech32AccountAddrPrefix()),
		sdk.GetConfig().GetBech32AccountAddrPrefix(),
		authority.String(),
	)

	blockedAddrs := map[string]bool{
		BlockedRecipient.String(): true,
	}

	bankKeeper := bankkeeper.NewBaseKeeper(
		cdc,
		runtime.NewKVStoreService(bankStoreKey),
		accountKeeper,
		blockedAddrs,
		authority.String(),
		log.NewNopLogger(),
	)

	k := keeper.NewKeeper(storeKey, bankKeeper, authority.String())

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Time: GenesisTime}, false, log.NewNopLogger())
	require.NoError(t, bankKeeper.SetParams(ctx, banktypes.DefaultParams()))
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, bankKeeper, ctx
}

// FundAccount mints amount of the aggregator denom into addr.
func FundAccount(t testing.TB, ctx sdk.Context, bk bankkeeper.BaseKeeper, addr sdk.AccAddress, amount int64) {
	coins := sdk.NewCoins(sdk.NewCoin(types.DefaultDenom, math.NewInt(amount)))
	require.NoError(t, bk.MintCoins(ctx, FaucetModuleName, coins))
	require.NoError(t, bk.SendCoinsFromModuleToAccount(ctx, FaucetModuleName, addr, coins))
}

// Owner returns the aggregator owner used by FluxaggKeeper.
func Owner() sdk.AccAddress {
	return authtypes.NewModuleAddress(govtypes.ModuleName)
}

// TestAddr returns a deterministic 20 byte account address.
func TestAddr(name string) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz)
}

// AdvanceTime returns ctx with its block time moved forward by d.
func AdvanceTime(ctx sdk.Context, d time.Duration) sdk.Context {
	return ctx.WithBlockTime(ctx.BlockTime().Add(d))
}
