package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type TransferHandler struct {
	transfers services.TransferService
}

func NewTransferHandler(transfers services.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// Purchase buys the player in the path for the caller's team. An optional
// body {"transfer_fee": ...} pins the offered fee.
func (h *TransferHandler) Purchase(c *gin.Context) {
	teamID, ok := requireTeam(c)
	if !ok {
		return
	}
	playerID, ok := uuidParam(c, "player", "invalid_player_id")
	if !ok {
		return
	}

	var req struct {
		TransferFee *decimal.Decimal `json:"transfer_fee"`
	}
	// Chunked bodies arrive with ContentLength -1.
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.RespondFailure(c, http.StatusBadRequest, "invalid_request", msgInvalidBody)
			return
		}
	}

	var (
		res *services.PurchaseResult
		err error
	)
	if req.TransferFee != nil {
		res, err = h.transfers.PurchaseAtFee(c.Request.Context(), playerID, teamID, *req.TransferFee)
	} else {
		res, err = h.transfers.Purchase(c.Request.Context(), playerID, teamID)
	}
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "Player purchased successfully.", res)
}
