package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/common"
)

func (h *Handler) GenerateItinerary(c *gin.Context) {
	var req chat.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	res, err := h.ChatSvc.GenerateItinerary(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	common.OK(c, res)
}
