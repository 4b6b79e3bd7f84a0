// Package voting — handlers.go: HTTP-маршруты голосования.
package voting

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

// Register вешает пользовательские маршруты.
func (h *Handler) Register(api *gin.RouterGroup) {
	api.POST("/posts/:id/upvote", h.HandleUpvote)
	api.GET("/posts/:id", h.HandleGet)
}

// RegisterAdmin вешает маршрут наполнения постами.
func (h *Handler) RegisterAdmin(admin *gin.RouterGroup) {
	admin.POST("/posts", h.HandleCreate)
}

// HandleUpvote — POST /posts/:id/upvote. Повторный голос — 200 с already_voted.
func (h *Handler) HandleUpvote(c *gin.Context) {
	voterID, _ := middleware.UserID(c)
	postID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	out, err := h.service.Vote(c.Request.Context(), voterID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, out)
}

type postResponse struct {
	*Post
	Voted bool `json:"voted"`
}

// HandleGet — GET /posts/:id
func (h *Handler) HandleGet(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	postID, err := common.ParseID(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	ctx := c.Request.Context()
	post, err := h.service.Post(ctx, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	voted, err := h.service.HasVoted(ctx, userID, postID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, postResponse{Post: post, Voted: voted})
}

type createPostRequest struct {
	AuthorID int64  `json:"author_id" binding:"required"`
	Title    string `json:"title"`
}

// HandleCreate — POST /admin/posts
func (h *Handler) HandleCreate(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidInput, err)
		return
	}
	post, err := h.service.CreatePost(c.Request.Context(), req.AuthorID, req.Title)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, post)
}
