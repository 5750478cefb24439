package app

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/paw-chain/fluxagg/x/fluxagg"
	fluxaggtypes "github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// GenesisState represents the genesis state of the application.
// It is a map from module name to module genesis state.
type GenesisState map[string]json.RawMessage

// GenesisBalance is an initial ledger balance in the aggregator denom.
type GenesisBalance struct {
	Address string `mapstructure:"address" json:"address"`
	Amount  int64  `mapstructure:"amount" json:"amount"`
}

// GenesisConfig holds configuration parameters for genesis state
type GenesisConfig struct {
	ChainID            string           `mapstructure:"chain-id"`
	Denom              string           `mapstructure:"denom"`
	Decimals           uint32           `mapstructure:"decimals"`
	Description        string           `mapstructure:"description"`
	Timeout            uint64           `mapstructure:"timeout"`
	MinSubmissionValue int64            `mapstructure:"min-submission-value"`
	MaxSubmissionValue int64            `mapstructure:"max-submission-value"`
	Balances           []GenesisBalance `mapstructure:"balances"`
}

// DefaultGenesisConfig returns the configuration of a local development ledger
func DefaultGenesisConfig() GenesisConfig {
	params := fluxaggtypes.DefaultParams()
	return GenesisConfig{
		ChainID:            DefaultChainID,
		Denom:              fluxaggtypes.DefaultDenom,
		Decimals:           fluxaggtypes.DefaultDecimals,
		Description:        fluxaggtypes.DefaultDescription,
		Timeout:            fluxaggtypes.DefaultTimeout,
		MinSubmissionValue: params.MinSubmissionValue.Int64(),
		MaxSubmissionValue: params.MaxSubmissionValue.Int64(),
	}
}

// NewDefaultGenesisState generates the default state for the application.
func NewDefaultGenesisState(cdc codec.JSONCodec) GenesisState {
	genesis, err := NewGenesisState(cdc, DefaultGenesisConfig())
	if err != nil {
		panic(err)
	}
	return genesis
}

// NewGenesisState builds a genesis document from cfg.
func NewGenesisState(cdc codec.JSONCodec, cfg GenesisConfig) (GenesisState, error) {
	SetConfig()
	genesis := make(GenesisState)

	// Auth module - account authentication
	authGenesis := authtypes.DefaultGenesisState()
	bz, err := cdc.MarshalJSON(authGenesis)
	if err != nil {
		return nil, err
	}
	genesis[authtypes.ModuleName] = bz

	// Bank module - the ledger backing the aggregator funds
	bankGenesis := banktypes.DefaultGenesisState()
	bankGenesis.Params = banktypes.Params{
		SendEnabled:        []*banktypes.SendEnabled{},
		DefaultSendEnabled: true,
	}
	for _, b := range cfg.Balances {
		if _, err := sdk.AccAddressFromBech32(b.Address); err != nil {
			return nil, fmt.Errorf("invalid genesis balance address %q: %w", b.Address, err)
		}
		if b.Amount <= 0 {
			return nil, fmt.Errorf("genesis balance of %s must be positive", b.Address)
		}
		bankGenesis.Balances = append(bankGenesis.Balances, banktypes.Balance{
			Address: b.Address,
			Coins:   sdk.NewCoins(sdk.NewInt64Coin(cfg.Denom, b.Amount)),
		})
	}
	if bz, err = cdc.MarshalJSON(bankGenesis); err != nil {
		return nil, err
	}
	genesis[banktypes.ModuleName] = bz

	// Fluxagg module - aggregator parameters and round configuration
	fluxGenesis := fluxaggtypes.DefaultGenesis()
	fluxGenesis.Params = fluxaggtypes.Params{
		Denom:              cfg.Denom,
		Decimals:           cfg.Decimals,
		Description:        cfg.Description,
		MinSubmissionValue: math.NewInt(cfg.MinSubmissionValue),
		MaxSubmissionValue: math.NewInt(cfg.MaxSubmissionValue),
	}
	fluxGenesis.RoundConfig.Timeout = cfg.Timeout
	if err := fluxGenesis.Validate(); err != nil {
		return nil, err
	}
	genesis[fluxaggtypes.ModuleName] = mustMarshalJSON(fluxGenesis)

	return genesis, nil
}

// FluxaggGenesis decodes the fluxagg section of genesis.
func (gs GenesisState) FluxaggGenesis() (fluxaggtypes.GenesisState, error) {
	return fluxagg.UnmarshalGenesis(gs[fluxaggtypes.ModuleName])
}

// Helper functions
func mustMarshalJSON(v interface{}) json.RawMessage {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return bz
}
