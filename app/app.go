// Package app provides the fluxd application implementation.
//
// The application owns a multistore on a cosmos-db database and wires the
// auth and bank keepers together with the fluxagg keeper. Every state change
// runs through Exec, which serializes calls, applies them to a cached branch
// of the store and commits a new version only when the call succeeds.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authcodec "github.com/cosmos/cosmos-sdk/x/auth/codec"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"

	"github.com/paw-chain/fluxagg/x/fluxagg"
	fluxaggkeeper "github.com/paw-chain/fluxagg/x/fluxagg/keeper"
	fluxaggtypes "github.com/paw-chain/fluxagg/x/fluxagg/types"
)

const (
	Name = "fluxd"

	// FaucetModuleName is the minting module account behind FundAccount.
	FaucetModuleName = "faucet"
)

var (
	// DefaultNodeHome is the default home directory for the application daemon.
	DefaultNodeHome string

	ErrNotInitialized     = errors.New("application state is not initialized")
	ErrAlreadyInitialized = errors.New("application state is already initialized")
)

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	DefaultNodeHome = filepath.Join(userHomeDir, "."+Name)
}

// ExecResult describes a committed state change.
type ExecResult struct {
	Height int64       `json:"height"`
	Events []sdk.Event `json:"events"`
	Time   time.Time   `json:"time"`
}

// Option configures a FluxApp.
type Option func(*FluxApp)

// WithClock overrides the source of block times.
func WithClock(clock func() time.Time) Option {
	return func(app *FluxApp) { app.clock = clock }
}

// WithAuthority sets the aggregator owner. Defaults to the gov module account.
func WithAuthority(authority string) Option {
	return func(app *FluxApp) { app.authority = authority }
}

// WithAccessGate guards the read facade returned by Querier.
func WithAccessGate(gate fluxaggtypes.AccessGate) Option {
	return func(app *FluxApp) { app.gate = gate }
}

// WithTelemetry records operation metrics and traces through tm.
func WithTelemetry(tm *TelemetryMiddleware) Option {
	return func(app *FluxApp) { app.telemetry = tm }
}

// WithChainID sets the chain id stamped on block headers.
func WithChainID(chainID string) Option {
	return func(app *FluxApp) { app.chainID = chainID }
}

// FluxApp extends an ABCI-less application with the fluxagg module and the
// bank ledger that holds its funds.
type FluxApp struct {
	mu sync.RWMutex

	logger            log.Logger
	db                dbm.DB
	cms               storetypes.CommitMultiStore
	appCodec          codec.Codec
	interfaceRegistry types.InterfaceRegistry
	keys              map[string]*storetypes.KVStoreKey

	chainID   string
	authority string
	clock     func() time.Time
	gate      fluxaggtypes.AccessGate
	telemetry *TelemetryMiddleware

	// keepers
	AccountKeeper authkeeper.AccountKeeper
	BankKeeper    bankkeeper.BaseKeeper
	FluxaggKeeper *fluxaggkeeper.Keeper

	fluxaggModule fluxagg.AppModule
	invariants    *invariantRegistry
}

// NewFluxApp returns a reference to an initialized FluxApp backed by db.
func NewFluxApp(logger log.Logger, db dbm.DB, opts ...Option) (*FluxApp, error) {
	SetConfig()

	encodingConfig := MakeEncodingConfig()

	app := &FluxApp{
		logger:            logger.With("module", "app"),
		db:                db,
		appCodec:          encodingConfig.Codec,
		interfaceRegistry: encodingConfig.InterfaceRegistry,
		keys: storetypes.NewKVStoreKeys(
			authtypes.StoreKey, banktypes.StoreKey, fluxaggtypes.StoreKey,
		),
		chainID:    DefaultChainID,
		authority:  authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		clock:      time.Now,
		invariants: newInvariantRegistry(),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.cms = store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range app.keys {
		app.cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := app.cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load latest version: %w", err)
	}

	app.AccountKeeper = authkeeper.NewAccountKeeper(
		app.appCodec,
		runtime.NewKVStoreService(app.keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		maccPerms,
		authcodec.NewBech32Codec(Bech32PrefixAccAddr),
		Bech32PrefixAccAddr,
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
	)

	app.BankKeeper = bankkeeper.NewBaseKeeper(
		app.appCodec,
		runtime.NewKVStoreService(app.keys[banktypes.StoreKey]),
		app.AccountKeeper,
		BlockedModuleAccountAddrs(),
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		logger,
	)

	app.FluxaggKeeper = fluxaggkeeper.NewKeeper(
		app.keys[fluxaggtypes.StoreKey],
		app.BankKeeper,
		app.authority,
	)

	app.fluxaggModule = fluxagg.NewAppModule(app.FluxaggKeeper)
	app.fluxaggModule.RegisterInvariants(app.invariants)

	return app, nil
}

// Name returns the name of the App
func (app *FluxApp) Name() string { return Name }

// AppCodec returns the app codec.
func (app *FluxApp) AppCodec() codec.Codec {
	return app.appCodec
}

// InterfaceRegistry returns the app InterfaceRegistry
func (app *FluxApp) InterfaceRegistry() types.InterfaceRegistry {
	return app.interfaceRegistry
}

// GetKey returns the KVStoreKey for the provided store key.
func (app *FluxApp) GetKey(storeKey string) *storetypes.KVStoreKey {
	return app.keys[storeKey]
}

// Authority returns the aggregator owner address.
func (app *FluxApp) Authority() string {
	return app.authority
}

// LastBlockHeight returns the last committed height.
func (app *FluxApp) LastBlockHeight() int64 {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cms.LastCommitID().Version
}

// Querier returns the access controlled read facade of the aggregator.
func (app *FluxApp) Querier() fluxaggkeeper.Querier {
	return fluxaggkeeper.NewQuerier(*app.FluxaggKeeper, app.gate)
}

func (app *FluxApp) header() cmtproto.Header {
	return cmtproto.Header{
		ChainID: app.chainID,
		Height:  app.cms.LastCommitID().Version + 1,
		Time:    app.clock().UTC(),
	}
}

// InitChain loads genesis into an empty store and commits the first version.
func (app *FluxApp) InitChain(genesis GenesisState) (ExecResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.cms.LastCommitID().Version != 0 {
		return ExecResult{}, ErrAlreadyInitialized
	}

	return app.commit("init_chain", func(ctx sdk.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("genesis initialization failed: %v", r)
			}
		}()

		var authGenesis authtypes.GenesisState
		if err := app.appCodec.UnmarshalJSON(genesis[authtypes.ModuleName], &authGenesis); err != nil {
			return fmt.Errorf("failed to unmarshal %s genesis state: %w", authtypes.ModuleName, err)
		}
		app.AccountKeeper.InitGenesis(ctx, authGenesis)

		var bankGenesis banktypes.GenesisState
		if err := app.appCodec.UnmarshalJSON(genesis[banktypes.ModuleName], &bankGenesis); err != nil {
			return fmt.Errorf("failed to unmarshal %s genesis state: %w", banktypes.ModuleName, err)
		}
		app.BankKeeper.InitGenesis(ctx, &bankGenesis)

		if err := app.fluxaggModule.ValidateGenesis(app.appCodec, nil, genesis[fluxaggtypes.ModuleName]); err != nil {
			return err
		}
		app.fluxaggModule.InitGenesis(ctx, app.appCodec, genesis[fluxaggtypes.ModuleName])
		return nil
	})
}

// Exec runs fn against a branch of the latest state and commits a new version
// when it returns nil. Calls are serialized.
func (app *FluxApp) Exec(ctx context.Context, operation string, fn func(ctx sdk.Context) error) (ExecResult, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.cms.LastCommitID().Version == 0 {
		return ExecResult{}, ErrNotInitialized
	}

	ctx, end := TraceOperation(ctx, operation)
	defer end()

	start := time.Now()
	res, err := app.commit(operation, func(sdkCtx sdk.Context) error {
		return fn(sdkCtx.WithContext(ctx))
	})
	if app.telemetry != nil {
		app.telemetry.RecordOperation(ctx, operation, time.Since(start), err == nil)
		if err == nil {
			app.telemetry.RecordBlockHeight(ctx, res.Height)
		}
	}
	return res, err
}

func (app *FluxApp) commit(operation string, fn func(ctx sdk.Context) error) (ExecResult, error) {
	header := app.header()
	cacheMS := app.cms.CacheMultiStore()
	ctx := sdk.NewContext(cacheMS, header, false, app.logger)

	if err := fn(ctx); err != nil {
		return ExecResult{}, err
	}

	cacheMS.Write()
	commitID := app.cms.Commit()

	app.logger.Debug("committed state", "operation", operation, "height", commitID.Version)

	return ExecResult{
		Height: commitID.Version,
		Events: ctx.EventManager().Events(),
		Time:   header.Time,
	}, nil
}

// Query runs fn against a read-only branch of the latest state at the current
// block time.
func (app *FluxApp) Query(ctx context.Context, fn func(ctx sdk.Context) error) error {
	app.mu.RLock()
	defer app.mu.RUnlock()

	if app.cms.LastCommitID().Version == 0 {
		return ErrNotInitialized
	}

	sdkCtx := sdk.NewContext(app.cms.CacheMultiStore(), app.header(), false, app.logger)
	return fn(sdkCtx.WithContext(ctx))
}

// ExportGenesis exports the state of every module as a genesis document.
func (app *FluxApp) ExportGenesis(ctx context.Context) (GenesisState, error) {
	genesis := make(GenesisState)
	err := app.Query(ctx, func(ctx sdk.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("genesis export failed: %v", r)
			}
		}()

		authGenesis := app.AccountKeeper.ExportGenesis(ctx)
		if genesis[authtypes.ModuleName], err = app.appCodec.MarshalJSON(authGenesis); err != nil {
			return err
		}
		bankGenesis := app.BankKeeper.ExportGenesis(ctx)
		if genesis[banktypes.ModuleName], err = app.appCodec.MarshalJSON(bankGenesis); err != nil {
			return err
		}
		genesis[fluxaggtypes.ModuleName] = app.fluxaggModule.ExportGenesis(ctx, app.appCodec)
		return nil
	})
	return genesis, err
}

// FundAccount mints amount of the aggregator denom into addr. It exists for
// development ledgers that have no other source of coins.
func (app *FluxApp) FundAccount(ctx context.Context, addr sdk.AccAddress, amount int64) (ExecResult, error) {
	return app.Exec(ctx, "fund", func(ctx sdk.Context) error {
		if amount <= 0 {
			return fmt.Errorf("amount must be positive: %d", amount)
		}
		denom := app.FluxaggKeeper.GetParams(ctx).Denom
		coins := sdk.NewCoins(sdk.NewInt64Coin(denom, amount))
		if err := app.BankKeeper.MintCoins(ctx, FaucetModuleName, coins); err != nil {
			return err
		}
		return app.BankKeeper.SendCoinsFromModuleToAccount(ctx, FaucetModuleName, addr, coins)
	})
}

// CheckInvariants runs every registered invariant against the latest state.
func (app *FluxApp) CheckInvariants(ctx context.Context) error {
	return app.Query(ctx, func(ctx sdk.Context) error {
		return app.invariants.assert(ctx)
	})
}

// Close releases the underlying database.
func (app *FluxApp) Close() error {
	return app.db.Close()
}

type invariantRegistry struct {
	routes map[string]sdk.Invariant
}

func newInvariantRegistry() *invariantRegistry {
	return &invariantRegistry{routes: make(map[string]sdk.Invariant)}
}

func (r *invariantRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r.routes[moduleName+"/"+route] = invar
}

func (r *invariantRegistry) assert(ctx sdk.Context) error {
	names := make([]string, 0, len(r.routes))
	for name := range r.routes {
		names = append(names, name)
	}
	sort.Strings(names)

	var broken []string
	for _, name := range names {
		if msg, stop := r.routes[name](ctx); stop {
			broken = append(broken, msg)
		}
	}
	if len(broken) > 0 {
		return fmt.Errorf("invariants broken:\n%s", strings.Join(broken, "\n"))
	}
	return nil
}

// GetMaccPerms returns a copy of the module account permissions
func GetMaccPerms() map[string][]string {
	dup := make(map[string][]string, len(maccPerms))
	for acc, perms := range maccPerms {
		dup[acc] = perms
	}
	return dup
}

// BlockedModuleAccountAddrs returns all the app's blocked module account
// addresses.
func BlockedModuleAccountAddrs() map[string]bool {
	modAccAddrs := make(map[string]bool)
	for acc := range GetMaccPerms() {
		modAccAddrs[authtypes.NewModuleAddress(acc).String()] = true
	}

	return modAccAddrs
}

// module account permissions
var maccPerms = map[string][]string{
	authtypes.FeeCollectorName: nil,
	govtypes.ModuleName:        nil,
	FaucetModuleName:           {authtypes.Minter},
	fluxaggtypes.ModuleName:    nil,
}

// MarshalGenesis encodes a genesis document with stable indentation.
func MarshalGenesis(genesis GenesisState) ([]byte, error) {
	return json.MarshalIndent(genesis, "", "  ")
}
