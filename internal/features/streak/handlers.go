// Package streak — handlers.go: просмотр стрика и ручное касание.
package streak

import (
	"time"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/server/middleware"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

// Handler обрабатывает запросы стрик-системы.
type Handler struct {
	service *Service
}

// NewHandler создаёт новый обработчик стриков.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на группу /me.
func (h *Handler) Register(me *gin.RouterGroup) {
	me.GET("/streak", h.HandleGet)
	me.POST("/streak/touch", h.HandleTouch)
}

type streakResponse struct {
	UserID           int64      `json:"user_id"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *string    `json:"last_activity_date"`
	ActiveToday      bool       `json:"active_today"`
	Label            string     `json:"label"`
	Transition       Transition `json:"transition,omitempty"`
}

func (h *Handler) toResponse(st *Streak, t Transition) streakResponse {
	resp := streakResponse{
		UserID:        st.UserID,
		CurrentStreak: st.CurrentStreak,
		LongestStreak: st.LongestStreak,
		ActiveToday:   h.service.IsActiveToday(st),
		Transition:    t,
	}
	if st.CurrentStreak > 0 {
		d := st.LastActivityDate.Format(time.DateOnly)
		resp.LastActivityDate = &d
		resp.Label = common.FormatStreak(st.CurrentStreak)
	}
	return resp
}

// HandleGet — GET /me/streak
func (h *Handler) HandleGet(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	st, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, h.toResponse(st, ""))
}

// HandleTouch — POST /me/streak/touch
func (h *Handler) HandleTouch(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	st, t, err := h.service.Touch(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, h.toResponse(st, t))
}
