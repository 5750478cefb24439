// Package network runs an in-process fluxd application for tests.
package network

import (
	"context"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/fluxagg/app"
)

// GenesisTime is the block time of the genesis commit.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// Clock is a manually advanced block time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// Now returns the current block time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Network is a single fluxd application on an in-memory database.
type Network struct {
	t     testing.TB
	App   *app.FluxApp
	Clock *Clock
	Owner sdk.AccAddress
}

// New starts an application owned by Owner and initialized from the default
// genesis. Additional options are applied after the defaults.
func New(t testing.TB, opts ...app.Option) *Network {
	return NewWithDB(t, dbm.NewMemDB(), opts...)
}

// NewWithDB is New on a caller supplied database.
func NewWithDB(t testing.TB, db dbm.DB, opts ...app.Option) *Network {
	app.SetConfig()

	clock := &Clock{now: GenesisTime}
	owner := TestAddr("owner")

	options := append([]app.Option{
		app.WithClock(clock.Now),
		app.WithAuthority(owner.String()),
	}, opts...)

	fluxApp, err := app.NewFluxApp(log.NewNopLogger(), db, options...)
	require.NoError(t, err)

	if fluxApp.LastBlockHeight() == 0 {
		_, err = fluxApp.InitChain(app.NewDefaultGenesisState(fluxApp.AppCodec()))
		require.NoError(t, err)
	}

	return &Network{t: t, App: fluxApp, Clock: clock, Owner: owner}
}

// Exec runs fn as one committed operation and fails the test on error.
func (n *Network) Exec(fn func(ctx sdk.Context) error) app.ExecResult {
	res, err := n.App.Exec(context.Background(), "test", fn)
	require.NoError(n.t, err)
	return res
}

// Fund mints amount into addr.
func (n *Network) Fund(addr sdk.AccAddress, amount int64) {
	_, err := n.App.FundAccount(context.Background(), addr, amount)
	require.NoError(n.t, err)
}

// SetupFeed adds count oracles administered by themselves, deposits funds and
// configures the round parameters. It returns the oracle addresses.
func (n *Network) SetupFeed(count int, deposit, payment int64, minSub, maxSub, delay uint32) []sdk.AccAddress {
	oracles := make([]sdk.AccAddress, count)
	for i := range oracles {
		oracles[i] = TestAddr("oracle-" + string(rune('a'+i)))
	}

	funder := TestAddr("funder")
	if deposit > 0 {
		n.Fund(funder, deposit)
	}

	k := n.App.FluxaggKeeper
	n.Exec(func(ctx sdk.Context) error {
		if deposit > 0 {
			if err := k.Deposit(ctx, funder, math.NewInt(deposit)); err != nil {
				return err
			}
		}
		if err := k.ChangeOracles(ctx, n.Owner, nil, oracles, oracles, minSub, maxSub, delay); err != nil {
			return err
		}
		cfg := k.GetRoundConfig(ctx)
		return k.UpdateFutureRounds(ctx, n.Owner, math.NewInt(payment), minSub, maxSub, delay, cfg.Timeout)
	})

	return oracles
}

// Submit reports value for roundID on behalf of oracle.
func (n *Network) Submit(oracle sdk.AccAddress, roundID uint32, value int64) error {
	_, err := n.App.Exec(context.Background(), "submit", func(ctx sdk.Context) error {
		return n.App.FluxaggKeeper.Submit(ctx, oracle, roundID, math.NewInt(value))
	})
	return err
}

// TestAddr returns a deterministic 20 byte account address.
func TestAddr(name string) sdk.AccAddress {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz)
}
