package keeper

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// InitGenesis initializes the fluxagg module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, data types.GenesisState) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}

	if err := k.SetParams(ctx, data.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}
	if err := k.setRoundConfig(ctx, data.RoundConfig); err != nil {
		return fmt.Errorf("failed to set round config: %w", err)
	}
	if data.Validator != "" {
		if err := k.setValue(ctx, ValidatorKey, data.Validator); err != nil {
			return fmt.Errorf("failed to set validator: %w", err)
		}
	}
	if err := k.setFunds(ctx, data.Funds); err != nil {
		return fmt.Errorf("failed to set funds: %w", err)
	}
	if err := k.setCounters(ctx, data.Counters); err != nil {
		return fmt.Errorf("failed to set counters: %w", err)
	}

	for _, r := range data.Rounds {
		if err := k.setRound(ctx, r.RoundID, r.Round); err != nil {
			return fmt.Errorf("failed to set round %d: %w", r.RoundID, err)
		}
	}
	for _, d := range data.RoundDetails {
		if err := k.setRoundDetails(ctx, d.RoundID, d.Details); err != nil {
			return fmt.Errorf("failed to set round details %d: %w", d.RoundID, err)
		}
	}

	var enabled uint32
	for _, o := range data.Oracles {
		oracle, err := sdk.AccAddressFromBech32(o.Address)
		if err != nil {
			return fmt.Errorf("invalid oracle address %s: %w", o.Address, err)
		}
		if err := k.setOracleStatus(ctx, oracle, o.Status); err != nil {
			return fmt.Errorf("failed to set oracle %s: %w", o.Address, err)
		}
		if o.Status.Enabled() {
			k.getStore(ctx).Set(GetOracleListKey(o.Status.Index), oracle)
			enabled++
		}
	}
	k.setOracleCount(ctx, enabled)

	for _, r := range data.Requesters {
		requester, err := sdk.AccAddressFromBech32(r.Address)
		if err != nil {
			return fmt.Errorf("invalid requester address %s: %w", r.Address, err)
		}
		if err := k.setRequester(ctx, requester, r.Requester); err != nil {
			return fmt.Errorf("failed to set requester %s: %w", r.Address, err)
		}
	}

	// A fresh aggregator backdates round 0 so round 1 can open immediately.
	if len(data.Rounds) == 0 && data.Counters.ReportingRoundID == 0 {
		round := types.NewRound()
		round.UpdatedAt = 1
		if now := blockTime(ctx); now > data.RoundConfig.Timeout+1 {
			round.UpdatedAt = now - data.RoundConfig.Timeout
		}
		if err := k.setRound(ctx, 0, round); err != nil {
			return fmt.Errorf("failed to seed round 0: %w", err)
		}
	}

	k.Logger(ctx).Info("fluxagg genesis initialized",
		"oracles", enabled, "rounds", len(data.Rounds), "reporting_round", data.Counters.ReportingRoundID)
	return nil
}

// ExportGenesis exports the fluxagg module's state to a genesis state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := &types.GenesisState{
		Params:       k.GetParams(ctx),
		RoundConfig:  k.GetRoundConfig(ctx),
		Validator:    k.GetValidator(ctx),
		Funds:        k.GetFunds(ctx),
		Counters:     k.getCounters(ctx),
		Rounds:       []types.GenesisRound{},
		RoundDetails: []types.GenesisRoundDetails{},
		Oracles:      []types.GenesisOracle{},
		Requesters:   []types.GenesisRequester{},
	}

	k.IterateRounds(ctx, func(roundID uint32, round types.Round) bool {
		gs.Rounds = append(gs.Rounds, types.GenesisRound{RoundID: roundID, Round: round})
		return false
	})
	k.IterateRoundDetails(ctx, func(roundID uint32, details types.RoundDetails) bool {
		gs.RoundDetails = append(gs.RoundDetails, types.GenesisRoundDetails{RoundID: roundID, Details: details})
		return false
	})
	k.IterateOracleStatuses(ctx, func(oracle sdk.AccAddress, status types.OracleStatus) bool {
		gs.Oracles = append(gs.Oracles, types.GenesisOracle{Address: oracle.String(), Status: status})
		return false
	})
	k.IterateRequesters(ctx, func(requester sdk.AccAddress, r types.Requester) bool {
		gs.Requesters = append(gs.Requesters, types.GenesisRequester{Address: requester.String(), Requester: r})
		return false
	})

	sort.SliceStable(gs.Oracles, func(i, j int) bool { return gs.Oracles[i].Address < gs.Oracles[j].Address })
	sort.SliceStable(gs.Requesters, func(i, j int) bool { return gs.Requesters[i].Address < gs.Requesters[j].Address })

	return gs, nil
}
