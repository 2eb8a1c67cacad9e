package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/ai"
	"github.com/suPer8Hu/pawtrip/internal/common"
	"github.com/suPer8Hu/pawtrip/internal/httpapi/middleware"
)

type turnReq struct {
	Messages []ai.Message `json:"messages" binding:"required"`
}

func (h *Handler) ChatTurn(c *gin.Context) {
	var req turnReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	res, err := h.ChatSvc.Turn(c.Request.Context(), middleware.UserKey(c), req.Messages)
	if err != nil {
		writeError(c, err)
		return
	}
	common.OK(c, res)
}
