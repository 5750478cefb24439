package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/app"
	"github.com/paw-chain/fluxagg/pkg/events"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// node is an opened ledger with its configuration.
type node struct {
	home   string
	cfg    *Config
	logger log.Logger
	app    *app.FluxApp
	gate   *types.AllowListGate
	sink   *events.Sink
}

// openNode opens the ledger under the home flag of cmd. The genesis file is
// loaded on the first open.
func openNode(cmd *cobra.Command, opts ...app.Option) (*node, error) {
	home, err := homeDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := ReadConfig(home)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	gate, err := newAccessGate(cfg.Access)
	if err != nil {
		return nil, err
	}

	opts = append([]app.Option{app.WithAccessGate(gate)}, opts...)
	if cfg.Fluxagg.Authority != "" {
		opts = append(opts, app.WithAuthority(cfg.Fluxagg.Authority))
	}
	if cfg.Fluxagg.ChainID != "" {
		opts = append(opts, app.WithChainID(cfg.Fluxagg.ChainID))
	}

	db, err := dbm.NewGoLevelDB(databaseName, filepath.Join(home, dataDir), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	fluxApp, err := app.NewFluxApp(logger, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	n := &node{home: home, cfg: cfg, logger: logger, app: fluxApp, gate: gate}

	if fluxApp.LastBlockHeight() == 0 {
		if err := n.loadGenesis(); err != nil {
			_ = fluxApp.Close()
			return nil, err
		}
	}

	return n, nil
}

func newAccessGate(cfg AccessConfig) (*types.AllowListGate, error) {
	readers := make([]sdk.AccAddress, 0, len(cfg.AllowedReaders))
	for _, raw := range cfg.AllowedReaders {
		reader, err := sdk.AccAddressFromBech32(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed reader %q: %w", raw, err)
		}
		readers = append(readers, reader)
	}

	gate := types.NewAllowListGate(readers...)
	if !cfg.Enabled {
		gate.DisableAccessCheck()
	}
	return gate, nil
}

func (n *node) loadGenesis() error {
	bz, err := os.ReadFile(genesisPath(n.home))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no genesis file at %s, run %s init first", genesisPath(n.home), app.Name)
		}
		return err
	}

	var genesis app.GenesisState
	if err := json.Unmarshal(bz, &genesis); err != nil {
		return fmt.Errorf("failed to decode genesis: %w", err)
	}

	res, err := n.app.InitChain(genesis)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger from genesis: %w", err)
	}
	n.logger.Info("initialized ledger from genesis", "height", res.Height)
	return nil
}

// connectEvents attaches the configured event sink.
func (n *node) connectEvents() error {
	if n.cfg.Events.MQTTBroker == "" {
		return nil
	}

	pub, err := events.NewMQTTPublisher(events.MQTTConfig{
		Broker:   n.cfg.Events.MQTTBroker,
		ClientID: n.cfg.Events.ClientID,
		Username: n.cfg.Events.Username,
		Password: n.cfg.Events.Password,
		QoS:      n.cfg.Events.QoS,
		Timeout:  n.cfg.Events.Timeout,
	}, n.logger)
	if err != nil {
		return err
	}
	n.sink = events.NewSink(pub, n.cfg.Events.TopicPrefix, n.logger)
	return nil
}

// exec runs fn as one committed operation and publishes its events.
func (n *node) exec(ctx context.Context, operation string, fn func(ctx sdk.Context) error) (app.ExecResult, error) {
	res, err := n.app.Exec(ctx, operation, fn)
	if err != nil {
		return res, err
	}
	if err := n.sink.Publish(ctx, operation, res.Height, res.Time, res.Events); err != nil {
		n.logger.Error("events were committed but not published", "operation", operation, "error", err)
	}
	return res, nil
}

func (n *node) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return errors.Join(n.sink.Close(ctx), n.app.Close())
}
