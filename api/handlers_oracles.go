package api

import (
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// handleListOracles lists the enabled oracles in index order
func (s *Server) handleListOracles(c *gin.Context) {
	k := s.backend.Querier().Keeper

	var resp OraclesResponse
	err := s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		oracles := k.GetOracles(ctx)
		resp.Oracles = make([]OracleResponse, 0, len(oracles))
		for _, oracle := range oracles {
			status, _ := k.GetOracleStatus(ctx, oracle)
			resp.Oracles = append(resp.Oracles, OracleResponse{Address: oracle.String(), OracleStatus: status})
		}
		resp.Count = k.OracleCount(ctx)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetOracle returns the status of one oracle, including disabled ones
func (s *Server) handleGetOracle(c *gin.Context) {
	oracle, err := ValidateAddress(c.Param("address"))
	if err != nil {
		badRequest(c, err)
		return
	}

	k := s.backend.Querier().Keeper

	var (
		resp  OracleResponse
		found bool
	)
	err = s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		resp.Address = oracle.String()
		resp.OracleStatus, found = k.GetOracleStatus(ctx, oracle)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Oracle not found", Code: "NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleOracleRoundState returns what an oracle would see when preparing a
// submission. Without a round query parameter the round is suggested.
func (s *Server) handleOracleRoundState(c *gin.Context) {
	oracle, err := ValidateAddress(c.Param("address"))
	if err != nil {
		badRequest(c, err)
		return
	}

	var roundID uint32
	if raw, ok := c.GetQuery("round"); ok {
		if roundID, err = ParseRoundID(raw); err != nil {
			badRequest(c, err)
			return
		}
	}

	k := s.backend.Querier().Keeper
	var resp types.OracleRoundState
	err = s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		resp = k.OracleRoundState(ctx, oracle, roundID)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleFunds returns the accounting of the aggregator funds
func (s *Server) handleFunds(c *gin.Context) {
	k := s.backend.Querier().Keeper

	var resp FundsResponse
	err := s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		funds := k.GetFunds(ctx)
		reserve, err := k.RequiredReserve(ctx, k.GetRoundConfig(ctx).PaymentAmount)
		if err != nil {
			return err
		}
		resp = FundsResponse{
			Denom:           k.GetParams(ctx).Denom,
			Available:       funds.Available,
			Allocated:       funds.Allocated,
			LedgerBalance:   k.LedgerBalance(ctx),
			RequiredReserve: reserve,
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleConfig returns the feed parameters and the future round configuration
func (s *Server) handleConfig(c *gin.Context) {
	k := s.backend.Querier().Keeper

	var resp ConfigResponse
	err := s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		resp = ConfigResponse{
			Params:           k.GetParams(ctx),
			RoundConfig:      k.GetRoundConfig(ctx),
			Version:          k.Version(),
			Validator:        k.GetValidator(ctx),
			OracleCount:      k.OracleCount(ctx),
			ReportingRoundID: k.ReportingRoundID(ctx),
			LatestRoundID:    k.LatestRoundID(ctx),
		}
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	resp.Height = s.backend.LastBlockHeight()

	c.JSON(http.StatusOK, resp)
}
