package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/fluxagg/app"
	"github.com/paw-chain/fluxagg/x/fluxagg/types"
)

// ParseRoundID validates a round id path or query value
func ParseRoundID(raw string) (uint32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("round id is required")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid round id %q", raw)
	}
	return uint32(id), nil
}

// ValidateAddress validates a bech32 account address
func ValidateAddress(address string) (sdk.AccAddress, error) {
	if address == "" {
		return nil, errors.New("address is required")
	}
	addr, err := sdk.AccAddressFromBech32(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address format: %w", err)
	}
	return addr, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

// writeError maps aggregator errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrNoData):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No data present", Code: "NO_DATA"})
	case errors.Is(err, types.ErrNoAccess):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "No access", Code: "NO_ACCESS"})
	case errors.Is(err, app.ErrNotInitialized):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Ledger is not initialized", Code: "UNAVAILABLE"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Code:    "INTERNAL_ERROR",
			Details: err.Error(),
		})
	}
}
