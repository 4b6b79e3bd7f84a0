package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/server/response"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"component":  "panic_recovery",
					"request_id": GetRequestID(c),
					"panic":      fmt.Sprintf("%v", r),
					"stack":      string(debug.Stack()),
				}).Error("ПАНИКА в обработчике, восстановлено")
				response.Error(c, http.StatusInternalServerError, response.CodeInternal, errors.New("внутренняя ошибка"))
			}
		}()
		c.Next()
	}
}
