package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/common"
	"github.com/suPer8Hu/pawtrip/internal/httpapi/middleware"
)

func (h *Handler) ListTrips(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	trips, err := h.ChatSvc.ListTrips(c.Request.Context(), middleware.UserKey(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	common.OK(c, gin.H{"trips": trips})
}

func (h *Handler) GetTrip(c *gin.Context) {
	doc, err := h.ChatSvc.GetTrip(c.Request.Context(), middleware.UserKey(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.OK(c, doc)
}
