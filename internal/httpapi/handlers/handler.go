package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/common"
	"github.com/suPer8Hu/pawtrip/internal/httpapi/middleware"
)

type Handler struct {
	ChatSvc *chat.Service
}

func NewHandler(chatSvc *chat.Service) *Handler {
	return &Handler{ChatSvc: chatSvc}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

// writeError maps service errors onto the response envelope.
func writeError(c *gin.Context, err error) {
	var ve *chat.ValidationError
	var ue *chat.UpstreamError
	switch {
	case errors.Is(err, chat.ErrTripNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "trip not found")
	case errors.As(err, &ve):
		common.Fail(c, http.StatusBadRequest, 10002, ve.Error())
	case errors.As(err, &ue):
		slog.Error("language model call failed",
			"err", err, "provider", ue.Provider, "request_id", c.GetString(middleware.RequestIDKey))
		common.Fail(c, ue.HTTPStatus(), 50201, "language model unavailable")
	default:
		slog.Error("request failed", "err", err, "request_id", c.GetString(middleware.RequestIDKey))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}
