package types

import (
	"math"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "fluxagg"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey is the message route for the module
	RouterKey = ModuleName
)

const (
	// Version is the aggregator interface version reported to consumers.
	Version uint64 = 3

	// ReserveRounds is the number of future rounds of payments that must stay
	// available before the owner can withdraw funds.
	ReserveRounds uint64 = 2

	// MaxOracleCount caps the size of the enabled oracle set.
	MaxOracleCount = 77

	// RoundMax is the ending round sentinel of an enabled oracle and the
	// largest valid round id.
	RoundMax uint32 = math.MaxUint32
)

// DefaultAuthority returns the governance module address, the default owner
// of the aggregator.
func DefaultAuthority() string {
	return authtypes.NewModuleAddress(govtypes.ModuleName).String()
}

// ModuleAddress is the account holding the aggregator's funds on the ledger.
func ModuleAddress() []byte {
	return authtypes.NewModuleAddress(ModuleName)
}
