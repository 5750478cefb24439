package api

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RoundResponse is the answer view of a round with the feed metadata
type RoundResponse struct {
	types.RoundData
	Decimals    uint32 `json:"decimals"`
	Description string `json:"description"`
}

// OracleResponse is the public status of one oracle
type OracleResponse struct {
	Address string `json:"address"`
	types.OracleStatus
}

// OraclesResponse lists every enabled oracle
type OraclesResponse struct {
	Oracles []OracleResponse `json:"oracles"`
	Count   uint32           `json:"count"`
}

// FundsResponse is the accounting view of the aggregator funds
type FundsResponse struct {
	Denom           string   `json:"denom"`
	Available       math.Int `json:"available"`
	Allocated       math.Int `json:"allocated"`
	LedgerBalance   math.Int `json:"ledger_balance"`
	RequiredReserve math.Int `json:"required_reserve"`
}

// ConfigResponse is the configuration of the feed and its future rounds
type ConfigResponse struct {
	Params           types.Params      `json:"params"`
	RoundConfig      types.RoundConfig `json:"round_config"`
	Version          uint64            `json:"version"`
	Validator        string            `json:"validator,omitempty"`
	OracleCount      uint32            `json:"oracle_count"`
	ReportingRoundID uint32            `json:"reporting_round_id"`
	LatestRoundID    uint32            `json:"latest_round_id"`
	Height           int64             `json:"height"`
}
