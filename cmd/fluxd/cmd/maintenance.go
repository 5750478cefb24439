package cmd

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/robfig/cron/v3"
)

// maintenance runs the background jobs of a serving node.
type maintenance struct {
	cron   *cron.Cron
	node   *node
	logger log.Logger
}

func newMaintenance(n *node, cfg MaintenanceConfig) (*maintenance, error) {
	m := &maintenance{
		cron:   cron.New(),
		node:   n,
		logger: n.logger.With("module", "maintenance"),
	}

	if cfg.InvariantSchedule != "" {
		if _, err := m.cron.AddFunc(cfg.InvariantSchedule, m.checkInvariants); err != nil {
			return nil, fmt.Errorf("register invariant check: %w", err)
		}
	}
	if cfg.FundsRefreshSchedule != "" {
		if _, err := m.cron.AddFunc(cfg.FundsRefreshSchedule, m.refreshFunds); err != nil {
			return nil, fmt.Errorf("register funds refresh: %w", err)
		}
	}
	return m, nil
}

// Start starts the cron scheduler.
func (m *maintenance) Start() {
	m.cron.Start()
	m.logger.Info("maintenance scheduler started", "jobs", len(m.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs.
func (m *maintenance) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Info("maintenance scheduler stopped")
}

func (m *maintenance) checkInvariants() {
	if err := m.node.app.CheckInvariants(context.Background()); err != nil {
		m.logger.Error("invariant check failed", "error", err)
		return
	}
	m.logger.Debug("invariants hold")
}

// refreshFunds picks up value sent to the aggregator outside of Deposit.
// Nothing is committed while the available funds are current.
func (m *maintenance) refreshFunds() {
	k := m.node.app.FluxaggKeeper

	var stale bool
	err := m.node.app.Query(context.Background(), func(ctx sdk.Context) error {
		funds := k.GetFunds(ctx)
		stale = !k.LedgerBalance(ctx).Sub(funds.Allocated).Equal(funds.Available)
		return nil
	})
	if err != nil {
		m.logger.Error("failed to read funds", "error", err)
		return
	}
	if !stale {
		return
	}

	res, err := m.node.exec(context.Background(), "update_available_funds", func(ctx sdk.Context) error {
		return k.UpdateAvailableFunds(ctx)
	})
	if err != nil {
		m.logger.Error("failed to refresh available funds", "error", err)
		return
	}
	m.logger.Info("refreshed available funds", "height", res.Height)
}
