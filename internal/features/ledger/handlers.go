// Package ledger — handlers.go отдаёт баланс и историю кармы по HTTP.
package ledger

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/server/middleware"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

// Handler — HTTP-обработчики кармы.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на группу /me.
func (h *Handler) Register(me *gin.RouterGroup) {
	me.GET("/karma", h.HandleKarma)
}

type karmaResponse struct {
	UserID    int64    `json:"user_id"`
	Balance   int64    `json:"balance"`
	Formatted string   `json:"formatted"`
	History   []*Entry `json:"history"`
}

// HandleKarma — GET /me/karma?limit=N
func (h *Handler) HandleKarma(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	limit := DefaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.FromError(c, common.ErrInvalidLimit)
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	history, err := h.service.History(ctx, userID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if history == nil {
		history = []*Entry{}
	}

	response.OK(c, karmaResponse{
		UserID:    userID,
		Balance:   balance,
		Formatted: common.FormatKarma(balance),
		History:   history,
	})
}
