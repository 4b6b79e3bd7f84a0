package ranking

import (
	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/server/middleware"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(me *gin.RouterGroup) {
	me.GET("/rank", h.HandleRank)
}

type rankResponse struct {
	Standing
	Label string `json:"label"`
}

// HandleRank — GET /me/rank
func (h *Handler) HandleRank(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	st, err := h.service.Rank(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, rankResponse{Standing: st, Label: Label(st.Percentile)})
}
