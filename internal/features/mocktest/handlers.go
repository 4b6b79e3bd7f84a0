// Package mocktest — handlers.go: HTTP-маршруты пробных тестов.
package mocktest

import (
	"net/http"
	"strconv"

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
	api.POST("/mock-tests/:id/attempts", h.HandleSubmit)
	api.GET("/mock-tests/:id/attempts", h.HandleList)
	api.GET("/mock-tests/:id/attempts/latest", h.HandleLatest)
}

func (h *Handler) RegisterAdmin(admin *gin.RouterGroup) {
	admin.POST("/mock-tests", h.HandleCreate)
}

type submitRequest struct {
	Score      *float64 `json:"score" binding:"required"`
	Percentage *float64 `json:"percentage" binding:"required"`
}

// HandleSubmit — POST /mock-tests/:id/attempts
func (h *Handler) HandleSubmit(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	testID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}

	res, err := h.service.RecordAttempt(c.Request.Context(), userID, testID, *req.Score, *req.Percentage)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, res)
}

// HandleLatest — GET /mock-tests/:id/attempts/latest
func (h *Handler) HandleLatest(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	testID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	a, err := h.service.LatestAttempt(c.Request.Context(), userID, testID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, a)
}

// HandleList — GET /mock-tests/:id/attempts?limit=N
func (h *Handler) HandleList(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	testID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.FromError(c, common.ErrInvalidLimit)
			return
		}
		limit = n
	}

	list, err := h.service.Attempts(c.Request.Context(), userID, testID, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []*Attempt{}
	}
	response.OK(c, gin.H{"attempts": list})
}

type createRequest struct {
	Title            string  `json:"title" binding:"required"`
	MaxScore         float64 `json:"max_score"`
	PassingThreshold float64 `json:"passing_threshold"`
}

// HandleCreate — POST /admin/mock-tests
func (h *Handler) HandleCreate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}
	t, err := h.service.CreateMockTest(c.Request.Context(), req.Title, req.MaxScore, req.PassingThreshold)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, t)
}
