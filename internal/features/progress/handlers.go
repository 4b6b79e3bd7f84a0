// Package progress — handlers.go: HTTP-маршруты учебных событий.
package progress

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/server/middleware"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/lessons/:id/complete", h.HandleCompleteLesson)
}

// RegisterInternal вешает маршруты для внутренних вызовов (по сервисному токену).
func (h *Handler) RegisterInternal(internal *gin.RouterGroup) {
	internal.POST("/enrollments", h.HandleEnrollment)
}

// HandleCompleteLesson — POST /lessons/:id/complete. Повтор — 200 с already_completed.
func (h *Handler) HandleCompleteLesson(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	lessonID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	out, err := h.service.CompleteLesson(c.Request.Context(), userID, lessonID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, out)
}

type enrollmentRequest struct {
	UserID   int64 `json:"user_id" binding:"required"`
	CourseID int64 `json:"course_id" binding:"required"`
}

// HandleEnrollment — POST /internal/enrollments
func (h *Handler) HandleEnrollment(c *gin.Context) {
	var req enrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}

	out, err := h.service.OnEnrollmentSucceeded(c.Request.Context(), req.UserID, req.CourseID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, out)
}
