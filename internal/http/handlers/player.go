package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type PlayerHandler struct {
	players services.PlayerService
}

func NewPlayerHandler(players services.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// ListMine pages through the caller's roster.
func (h *PlayerHandler) ListMine(c *gin.Context) {
	teamID, ok := requireTeam(c)
	if !ok {
		return
	}
	page, perPage := pageParams(c)
	out, err := h.players.ListTeamPlayers(c.Request.Context(), teamID, page, perPage)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, out)
}
