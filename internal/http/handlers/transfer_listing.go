package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type TransferListingHandler struct {
	listings services.TransferListingService
}

func NewTransferListingHandler(listings services.TransferListingService) *TransferListingHandler {
	return &TransferListingHandler{listings: listings}
}

func (h *TransferListingHandler) ListActive(c *gin.Context) {
	page, perPage := pageParams(c)
	out, err := h.listings.ListActive(c.Request.Context(), page, perPage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}

func (h *TransferListingHandler) Create(c *gin.Context) {
	teamID, ok := requireTeam(c)
	if !ok {
		return
	}
	var req struct {
		PlayerID    uuid.UUID        `json:"player_id"`
		AskingPrice *decimal.Decimal `json:"asking_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PlayerID == uuid.Nil || req.AskingPrice == nil {
		response.RespondFailure(c, http.StatusBadRequest, "validation", "player_id and asking_price are required.")
		return
	}
	row, err := h.listings.ListForTransfer(c.Request.Context(), req.PlayerID, teamID, *req.AskingPrice)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusCreated, "Player listed for transfer.", row)
}

func (h *TransferListingHandler) Cancel(c *gin.Context) {
	teamID, ok := requireTeam(c)
	if !ok {
		return
	}
	listingID, ok := uuidParam(c, "id", "invalid_listing_id")
	if !ok {
		return
	}
	row, err := h.listings.CancelListing(c.Request.Context(), listingID, teamID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, "Transfer listing canceled.", row)
}
