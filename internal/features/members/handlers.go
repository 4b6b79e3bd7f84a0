// Package members — handlers.go: админские маршруты регистрации и просмотра пользователей.
package members

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

// Handler обрабатывает запросы к пользователям.
type Handler struct {
	service *Service
}

// NewHandler создаёт новый обработчик пользователей.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register вешает маршруты на админскую группу.
func (h *Handler) Register(admin *gin.RouterGroup) {
	admin.POST("/users", h.HandleRegister)
	admin.GET("/users", h.HandleList)
}

type registerRequest struct {
	ID          int64  `json:"id" binding:"required"`
	DisplayName string `json:"display_name"`
}

// HandleRegister — POST /admin/users
func (h *Handler) HandleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}

	m, created, err := h.service.Register(c.Request.Context(), req.ID, req.DisplayName)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if created {
		response.Created(c, m)
		return
	}
	response.OK(c, m)
}

// HandleList — GET /admin/users?limit=N
func (h *Handler) HandleList(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.FromError(c, common.ErrInvalidLimit)
			return
		}
		limit = n
	}

	list, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []*Member{}
	}
	response.OK(c, gin.H{"users": list})
}
