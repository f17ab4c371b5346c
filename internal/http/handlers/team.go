package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/services"
)

type TeamHandler struct {
	teams services.TeamService
}

func NewTeamHandler(teams services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) GetMe(c *gin.Context) {
	teamID, ok := requireTeam(c)
	if !ok {
		return
	}
	team, err := h.teams.GetTeam(c.Request.Context(), teamID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, team)
}
