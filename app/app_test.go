package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/fluxagg/app"
	"github.com/paw-chain/fluxagg/testutil/network"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

func TestInitChain(t *testing.T) {
	n := network.New(t)
	require.Equal(t, int64(1), n.App.LastBlockHeight())

	_, err := n.App.InitChain(app.NewDefaultGenesisState(n.App.AppCodec()))
	require.ErrorIs(t, err, app.ErrAlreadyInitialized)

	require.NoError(t, n.App.CheckInvariants(context.Background()))
}

func TestExecRequiresGenesis(t *testing.T) {
	app.SetConfig()
	fluxApp, err := app.NewFluxApp(log.NewNopLogger(), dbm.NewMemDB())
	require.NoError(t, err)

	_, err = fluxApp.Exec(context.Background(), "noop", func(sdk.Context) error { return nil })
	require.ErrorIs(t, err, app.ErrNotInitialized)
	require.ErrorIs(t, fluxApp.Query(context.Background(), func(sdk.Context) error { return nil }), app.ErrNotInitialized)
}

func TestInitChainRejectsInvalidGenesis(t *testing.T) {
	app.SetConfig()
	fluxApp, err := app.NewFluxApp(log.NewNopLogger(), dbm.NewMemDB())
	require.NoError(t, err)

	genesis := app.NewDefaultGenesisState(fluxApp.AppCodec())
	genesis[types.ModuleName] = []byte(`{"params":{"denom":""}}`)

	_, err = fluxApp.InitChain(genesis)
	require.Error(t, err)
	require.Equal(t, int64(0), fluxApp.LastBlockHeight())
}

func TestExecCommitsOnlyOnSuccess(t *testing.T) {
	n := network.New(t)
	funder := network.TestAddr("funder")
	n.Fund(funder, 100)
	height := n.App.LastBlockHeight()

	k := n.App.FluxaggKeeper
	failure := errors.New("abort")
	_, err := n.App.Exec(context.Background(), "deposit", func(ctx sdk.Context) error {
		if err := k.Deposit(ctx, funder, math.NewInt(60)); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)
	require.Equal(t, height, n.App.LastBlockHeight())

	require.NoError(t, n.App.Query(context.Background(), func(ctx sdk.Context) error {
		require.True(t, k.AvailableFunds(ctx).IsZero())
		require.Equal(t, int64(100), n.App.BankKeeper.GetBalance(ctx, funder, types.DefaultDenom).Amount.Int64())
		return nil
	}))

	res := n.Exec(func(ctx sdk.Context) error {
		return k.Deposit(ctx, funder, math.NewInt(60))
	})
	require.Equal(t, height+1, res.Height)
	require.NotEmpty(t, res.Events)
}

func TestRoundLifecycle(t *testing.T) {
	n := network.New(t)
	oracles := n.SetupFeed(2, 100, 1, 2, 2, 0)

	require.NoError(t, n.Submit(oracles[0], 1, 100))
	require.NoError(t, n.Submit(oracles[1], 1, 102))
	require.ErrorIs(t, n.Submit(oracles[1], 1, 102), types.ErrReportedPreviousRound)

	k := n.App.FluxaggKeeper
	require.NoError(t, n.App.Query(context.Background(), func(ctx sdk.Context) error {
		answer, err := k.LatestAnswer(ctx)
		require.NoError(t, err)
		require.Equal(t, math.NewInt(101), answer)
		require.Equal(t, math.NewInt(98), k.AvailableFunds(ctx))
		require.Equal(t, math.NewInt(2), k.AllocatedFunds(ctx))
		return nil
	}))

	require.NoError(t, n.App.CheckInvariants(context.Background()))
}

func TestQueryUsesCurrentClock(t *testing.T) {
	n := network.New(t)
	n.Clock.Advance(time.Hour)

	require.NoError(t, n.App.Query(context.Background(), func(ctx sdk.Context) error {
		require.Equal(t, network.GenesisTime.Add(time.Hour), ctx.BlockTime())
		return nil
	}))
}

func TestExportGenesisRoundTrip(t *testing.T) {
	n := network.New(t)
	oracles := n.SetupFeed(2, 100, 1, 2, 2, 0)
	require.NoError(t, n.Submit(oracles[0], 1, 100))
	require.NoError(t, n.Submit(oracles[1], 1, 110))

	exported, err := n.App.ExportGenesis(context.Background())
	require.NoError(t, err)

	app.SetConfig()
	restored, err := app.NewFluxApp(log.NewNopLogger(), dbm.NewMemDB(),
		app.WithClock(n.Clock.Now), app.WithAuthority(n.Owner.String()))
	require.NoError(t, err)
	_, err = restored.InitChain(exported)
	require.NoError(t, err)

	reexported, err := restored.ExportGenesis(context.Background())
	require.NoError(t, err)
	require.JSONEq(t, string(exported[types.ModuleName]), string(reexported[types.ModuleName]))

	require.NoError(t, restored.Query(context.Background(), func(ctx sdk.Context) error {
		answer, err := restored.FluxaggKeeper.LatestAnswer(ctx)
		require.NoError(t, err)
		require.Equal(t, math.NewInt(105), answer)
		require.Equal(t, int64(100), restored.BankKeeper.GetBalance(ctx, types.ModuleAddress(), types.DefaultDenom).Amount.Int64())
		return nil
	}))
	require.NoError(t, restored.CheckInvariants(context.Background()))
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()

	db, err := dbm.NewGoLevelDB("application", dir, nil)
	require.NoError(t, err)
	n := network.NewWithDB(t, db)
	funder := network.TestAddr("funder")
	n.Fund(funder, 250)
	height := n.App.LastBlockHeight()
	require.NoError(t, n.App.Close())

	db, err = dbm.NewGoLevelDB("application", dir, nil)
	require.NoError(t, err)
	reopened := network.NewWithDB(t, db)
	defer reopened.App.Close()

	require.Equal(t, height, reopened.App.LastBlockHeight())
	require.NoError(t, reopened.App.Query(context.Background(), func(ctx sdk.Context) error {
		require.Equal(t, int64(250), reopened.App.BankKeeper.GetBalance(ctx, funder, types.DefaultDenom).Amount.Int64())
		return nil
	}))
}

func TestGenesisBalances(t *testing.T) {
	app.SetConfig()
	encoding := app.MakeEncodingConfig()
	cfg := app.DefaultGenesisConfig()
	cfg.Balances = []app.GenesisBalance{{Address: network.TestAddr("rich").String(), Amount: 1_000}}

	genesis, err := app.NewGenesisState(encoding.Codec, cfg)
	require.NoError(t, err)

	fluxApp, err := app.NewFluxApp(log.NewNopLogger(), dbm.NewMemDB())
	require.NoError(t, err)
	_, err = fluxApp.InitChain(genesis)
	require.NoError(t, err)

	require.NoError(t, fluxApp.Query(context.Background(), func(ctx sdk.Context) error {
		require.Equal(t, int64(1_000), fluxApp.BankKeeper.GetBalance(ctx, network.TestAddr("rich"), types.DefaultDenom).Amount.Int64())
		return nil
	}))

	cfg.Balances = []app.GenesisBalance{{Address: "nope", Amount: 1}}
	_, err = app.NewGenesisState(encoding.Codec, cfg)
	require.Error(t, err)
}
