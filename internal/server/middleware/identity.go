package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

const (
	// HeaderUserID — идентификатор пользователя, проставленный шлюзом аутентификации.
	HeaderUserID = "X-User-ID"
	// HeaderServiceToken — токен для админских и внутренних маршрутов.
	HeaderServiceToken = "X-Service-Token"

	ctxUserID = "user_id"
)

// MemberChecker проверяет, что пользователь зарегистрирован.
type MemberChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
}

// Identity читает X-User-ID и пропускает только известных пользователей.
// Аутентификация выполняется до сервиса, здесь только проверка, что такой
// пользователь есть.
func Identity(members MemberChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			response.FromError(c, common.ErrUnauthorized)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			response.FromError(c, common.ErrUnauthorized)
			return
		}

		logger := log.WithFields(log.Fields{
			"component":  "Identity",
			"request_id": GetRequestID(c),
			"user_id":    userID,
		})

		ok, err := members.IsMember(c.Request.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("member check failed (db)")
			response.FromError(c, err)
			return
		}
		if !ok {
			logger.Info("deny: unknown user")
			response.FromError(c, common.ErrUserNotFound)
			return
		}

		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// UserID возвращает идентификатор пользователя, проверенный Identity.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// TokenVerifier проверяет сервисный токен. clientIP нужен для блокировки перебора.
type TokenVerifier func(clientIP, token string) error

// RequireToken пропускает запрос, только если verify принимает X-Service-Token.
func RequireToken(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderServiceToken)
		if token == "" {
			response.FromError(c, common.ErrUnauthorized)
			return
		}
		if err := verify(c.ClientIP(), token); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"component":  "RequireToken",
				"request_id": GetRequestID(c),
				"path":       c.FullPath(),
				"ip":         c.ClientIP(),
			}).Warn("deny: service token rejected")
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}
