package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisRound is a finalized round keyed by its id.
type GenesisRound struct {
	RoundID uint32 `json:"round_id"`
	Round   Round  `json:"round"`
}

// GenesisRoundDetails is the in-progress state of an open round.
type GenesisRoundDetails struct {
	RoundID uint32       `json:"round_id"`
	Details RoundDetails `json:"details"`
}

// GenesisOracle is an oracle status keyed by the oracle address. Enabled
// oracles rebuild the oracle list from their Index.
type GenesisOracle struct {
	Address string       `json:"address"`
	Status  OracleStatus `json:"status"`
}

// GenesisRequester is a requester keyed by its address.
type GenesisRequester struct {
	Address   string    `json:"address"`
	Requester Requester `json:"requester"`
}

// GenesisState is the complete aggregator state.
type GenesisState struct {
	Params       Params                `json:"params"`
	RoundConfig  RoundConfig           `json:"round_config"`
	Validator    string                `json:"validator,omitempty"`
	Funds        Funds                 `json:"funds"`
	Counters     Counters              `json:"counters"`
	Rounds       []GenesisRound        `json:"rounds"`
	RoundDetails []GenesisRoundDetails `json:"round_details"`
	Oracles      []GenesisOracle       `json:"oracles"`
	Requesters   []GenesisRequester    `json:"requesters"`
}

// DefaultGenesis returns the default genesis state for the fluxagg module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:       DefaultParams(),
		RoundConfig:  DefaultRoundConfig(),
		Funds:        NewFunds(),
		Rounds:       []GenesisRound{},
		RoundDetails: []GenesisRoundDetails{},
		Oracles:      []GenesisOracle{},
		Requesters:   []GenesisRequester{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	if err := gs.RoundConfig.ValidateBasic(); err != nil {
		return fmt.Errorf("round config: %w", err)
	}
	if gs.Validator != "" {
		if _, err := sdk.AccAddressFromBech32(gs.Validator); err != nil {
			return fmt.Errorf("invalid validator address: %w", err)
		}
	}
	if gs.Funds.Available.IsNil() || gs.Funds.Allocated.IsNil() ||
		gs.Funds.Available.IsNegative() || gs.Funds.Allocated.IsNegative() {
		return fmt.Errorf("funds must be non-negative")
	}
	if gs.Counters.LatestRoundID > gs.Counters.ReportingRoundID {
		return fmt.Errorf("latest round %d is ahead of reporting round %d",
			gs.Counters.LatestRoundID, gs.Counters.ReportingRoundID)
	}

	rounds := make(map[uint32]struct{}, len(gs.Rounds))
	for _, r := range gs.Rounds {
		if _, dup := rounds[r.RoundID]; dup {
			return fmt.Errorf("duplicate round %d", r.RoundID)
		}
		if r.Round.AnsweredInRound > r.RoundID {
			return fmt.Errorf("round %d answered in future round %d", r.RoundID, r.Round.AnsweredInRound)
		}
		rounds[r.RoundID] = struct{}{}
	}

	details := make(map[uint32]struct{}, len(gs.RoundDetails))
	for _, d := range gs.RoundDetails {
		if _, dup := details[d.RoundID]; dup {
			return fmt.Errorf("duplicate round details %d", d.RoundID)
		}
		if _, ok := rounds[d.RoundID]; !ok {
			return fmt.Errorf("round details %d without a started round", d.RoundID)
		}
		if d.Details.MaxSubmissions < d.Details.MinSubmissions {
			return fmt.Errorf("round details %d: %w", d.RoundID, ErrMaxBelowMin)
		}
		details[d.RoundID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(gs.Oracles))
	indexes := make(map[uint16]struct{})
	for _, o := range gs.Oracles {
		if _, err := sdk.AccAddressFromBech32(o.Address); err != nil {
			return fmt.Errorf("invalid oracle address %q: %w", o.Address, err)
		}
		if _, dup := seen[o.Address]; dup {
			return fmt.Errorf("duplicate oracle %s", o.Address)
		}
		seen[o.Address] = struct{}{}
		if o.Status.Admin == "" {
			return fmt.Errorf("oracle %s: %w", o.Address, ErrEmptyAdmin)
		}
		if o.Status.Withdrawable.IsNil() || o.Status.Withdrawable.IsNegative() {
			return fmt.Errorf("oracle %s: withdrawable must be non-negative", o.Address)
		}
		if !o.Status.Enabled() {
			continue
		}
		if _, dup := indexes[o.Status.Index]; dup {
			return fmt.Errorf("oracle %s: duplicate index %d", o.Address, o.Status.Index)
		}
		indexes[o.Status.Index] = struct{}{}
	}
	if len(indexes) > MaxOracleCount {
		return ErrMaxOracles
	}
	for i := range indexes {
		if int(i) >= len(indexes) {
			return fmt.Errorf("oracle index %d out of range for %d enabled oracles", i, len(indexes))
		}
	}

	requesters := make(map[string]struct{}, len(gs.Requesters))
	for _, r := range gs.Requesters {
		if _, err := sdk.AccAddressFromBech32(r.Address); err != nil {
			return fmt.Errorf("invalid requester address %q: %w", r.Address, err)
		}
		if _, dup := requesters[r.Address]; dup {
			return fmt.Errorf("duplicate requester %s", r.Address)
		}
		requesters[r.Address] = struct{}{}
	}

	return nil
}
