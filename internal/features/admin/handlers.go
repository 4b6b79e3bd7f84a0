// Package admin — handlers.go: админские HTTP-маршруты.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

// Handler обрабатывает админские запросы.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик админки.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на админскую группу (токен уже проверен).
func (h *Handler) Register(admin *gin.RouterGroup) {
	admin.POST("/karma", h.HandleAdjust)
	admin.POST("/reconcile", h.HandleReconcile)
}

// HandleAdjust — POST /admin/karma
func (h *Handler) HandleAdjust(c *gin.Context) {
	var req Adjustment
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}

	res, err := h.service.AdjustKarma(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// HandleReconcile — POST /admin/reconcile
func (h *Handler) HandleReconcile(c *gin.Context) {
	drifts, err := h.service.Reconcile(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	if drifts == nil {
		drifts = []ledger.Drift{}
	}
	response.OK(c, gin.H{
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	})
}
