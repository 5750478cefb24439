package types

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	DefaultDenom       = "upaw"
	DefaultDecimals    = 8
	DefaultDescription = "PAW / USD"
	DefaultTimeout     = 1800 // seconds
)

// Params are the aggregator settings fixed at genesis.
type Params struct {
	Denom              string   `json:"denom"`
	Decimals           uint32   `json:"decimals"`
	Description        string   `json:"description"`
	MinSubmissionValue math.Int `json:"min_submission_value"`
	MaxSubmissionValue math.Int `json:"max_submission_value"`
}

// DefaultParams returns default aggregator parameters
func DefaultParams() Params {
	return Params{
		Denom:              DefaultDenom,
		Decimals:           DefaultDecimals,
		Description:        DefaultDescription,
		MinSubmissionValue: math.OneInt(),
		MaxSubmissionValue: math.NewInt(1_000_000_000_000_000_000),
	}
}

// Validate checks the parameters are consistent.
func (p Params) Validate() error {
	if err := sdk.ValidateDenom(p.Denom); err != nil {
		return fmt.Errorf("invalid denom: %w", err)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if p.MinSubmissionValue.IsNil() || p.MaxSubmissionValue.IsNil() {
		return fmt.Errorf("submission bounds must be set")
	}
	if p.MinSubmissionValue.GT(p.MaxSubmissionValue) {
		return fmt.Errorf("min submission value %s exceeds max %s", p.MinSubmissionValue, p.MaxSubmissionValue)
	}
	return nil
}

// RoundConfig holds the settings applied to rounds that have not started yet.
type RoundConfig struct {
	PaymentAmount      math.Int `json:"payment_amount"`
	MinSubmissionCount uint32   `json:"min_submission_count"`
	MaxSubmissionCount uint32   `json:"max_submission_count"`
	RestartDelay       uint32   `json:"restart_delay"`
	Timeout            uint64   `json:"timeout"`
}

// DefaultRoundConfig returns the configuration of an aggregator without oracles.
func DefaultRoundConfig() RoundConfig {
	return RoundConfig{
		PaymentAmount: math.ZeroInt(),
		Timeout:       DefaultTimeout,
	}
}

// ValidateBasic checks the stateless part of a round configuration.
func (c RoundConfig) ValidateBasic() error {
	if c.PaymentAmount.IsNil() || c.PaymentAmount.IsNegative() {
		return ErrInvalidPaymentAmount
	}
	if c.MaxSubmissionCount < c.MinSubmissionCount {
		return ErrMaxBelowMin
	}
	return nil
}
