package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/platform/ctxutil"
)

const msgInvalidBody = "The request body is invalid."

// requireTeam returns the caller's team, or writes 401 and returns false.
func requireTeam(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.TeamID == uuid.Nil {
		response.RespondFailure(c, http.StatusUnauthorized, "unauthorized", "Unauthenticated.")
		return uuid.Nil, false
	}
	return rd.TeamID, true
}

func pageParams(c *gin.Context) (page, perPage int) {
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := c.Query("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			perPage = n
		}
	}
	return page, perPage
}

func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondFailure(c, http.StatusBadRequest, code, "The given id is invalid.")
		return uuid.Nil, false
	}
	return id, true
}
