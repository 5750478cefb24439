package keeper

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

var (
	// ParamsKey is the key for module parameters
	ParamsKey = []byte{0x01}

	// RoundConfigKey is the key for the configuration of future rounds
	RoundConfigKey = []byte{0x02}

	// FundsKey is the key for the available/allocated bookkeeping
	FundsKey = []byte{0x03}

	// CountersKey is the key for the reporting and latest round ids
	CountersKey = []byte{0x04}

	// ValidatorKey is the key for the answer validator address
	ValidatorKey = []byte{0x05}

	// RoundKeyPrefix is the prefix for finalized rounds
	RoundKeyPrefix = []byte{0x10}

	// RoundDetailsKeyPrefix is the prefix for in-progress round details
	RoundDetailsKeyPrefix = []byte{0x11}

	// OracleStatusKeyPrefix is the prefix for oracle statuses
	OracleStatusKeyPrefix = []byte{0x20}

	// OracleListKeyPrefix is the prefix for the dense oracle address list
	OracleListKeyPrefix = []byte{0x21}

	// OracleCountKey stores the length of the oracle address list
	OracleCountKey = []byte{0x22}

	// RequesterKeyPrefix is the prefix for authorized requesters
	RequesterKeyPrefix = []byte{0x30}
)

func roundIDBytes(roundID uint32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, roundID)
	return bz
}

// GetRoundKey returns the store key for a round
func GetRoundKey(roundID uint32) []byte {
	return append(append([]byte{}, RoundKeyPrefix...), roundIDBytes(roundID)...)
}

// GetRoundDetailsKey returns the store key for the details of an open round
func GetRoundDetailsKey(roundID uint32) []byte {
	return append(append([]byte{}, RoundDetailsKeyPrefix...), roundIDBytes(roundID)...)
}

// GetOracleStatusKey returns the store key for an oracle status
func GetOracleStatusKey(oracle sdk.AccAddress) []byte {
	return append(append([]byte{}, OracleStatusKeyPrefix...), oracle...)
}

// GetOracleListKey returns the store key for a slot of the oracle list
func GetOracleListKey(index uint16) []byte {
	bz := make([]byte, 2)
	binary.BigEndian.PutUint16(bz, index)
	return append(append([]byte{}, OracleListKeyPrefix...), bz...)
}

// GetRequesterKey returns the store key for a requester
func GetRequesterKey(requester sdk.AccAddress) []byte {
	return append(append([]byte{}, RequesterKeyPrefix...), requester...)
}

// roundIDFromKey decodes the round id suffix of a round or details key.
func roundIDFromKey(key []byte) uint32 {
	return binary.BigEndian.Uint32(key[len(key)-4:])
}
