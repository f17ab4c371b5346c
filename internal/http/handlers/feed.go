package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/transfermarket-backend/internal/http/response"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
)

type FeedHandler struct {
	hub *realtime.Hub
}

func NewFeedHandler(hub *realtime.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// Stream upgrades to a websocket that receives every committed transfer event.
func (h *FeedHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.RespondFailure(c, http.StatusServiceUnavailable, "feed_unavailable", "The transfer feed is not available.")
		return
	}
	h.hub.ServeWS(c.Writer, c.Request)
}
