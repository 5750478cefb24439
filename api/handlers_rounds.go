package api

import (
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// handleLatestRound returns the most recently answered round
func (s *Server) handleLatestRound(c *gin.Context) {
	reader := readerFrom(c)
	querier := s.backend.Querier()

	var resp RoundResponse
	err := s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		data, err := querier.LatestRoundDataFor(ctx, reader)
		if err != nil {
			return err
		}
		resp = s.roundResponse(ctx, data)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleGetRound returns the answer view of one round
func (s *Server) handleGetRound(c *gin.Context) {
	roundID, err := ParseRoundID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}

	reader := readerFrom(c)
	querier := s.backend.Querier()

	var resp RoundResponse
	err = s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		data, err := querier.RoundData(ctx, reader, roundID)
		if err != nil {
			return err
		}
		resp = s.roundResponse(ctx, data)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) roundResponse(ctx sdk.Context, data types.RoundData) RoundResponse {
	k := s.backend.Querier().Keeper
	return RoundResponse{
		RoundData:   data,
		Decimals:    k.Decimals(ctx),
		Description: k.Description(ctx),
	}
}
