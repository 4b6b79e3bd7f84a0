// Package response — единый формат ответов HTTP API и отображение
// ошибок домена в HTTP-статусы.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
)

// APIError — тело ошибки.
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorEnvelope — обёртка ошибки в ответе.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Коды ошибок API
const (
	CodeNotFound     = "not_found"
	CodeInvalidInput = "invalid_input"
	CodeStorage      = "storage_failure"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeRateLimited  = "rate_limited"
	CodeDisabled     = "feature_disabled"
	CodeInternal     = "internal"
)

// OK отвечает 200 с payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created отвечает 201 с payload.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Error отвечает ошибкой с явным статусом и кодом.
func Error(c *gin.Context, status int, code string, err error) {
	msg := "неизвестная ошибка"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			Retryable: status == http.StatusServiceUnavailable,
		},
	})
}

// Disabled отвечает 404 для выключенной фичи.
func Disabled(c *gin.Context) {
	Error(c, http.StatusNotFound, CodeDisabled, errors.New("функция отключена"))
}

// FromError подбирает статус по ошибке домена.
// Ошибки хранилища отдаются как 503 с retryable=true без деталей драйвера.
func FromError(c *gin.Context, err error) {
	status, code := Classify(err)
	switch status {
	case http.StatusServiceUnavailable:
		log.WithError(err).WithField("path", c.FullPath()).Error("Ошибка хранилища")
		Error(c, status, code, common.ErrStorageFailure)
	case http.StatusInternalServerError:
		log.WithError(err).WithField("path", c.FullPath()).Error("Внутренняя ошибка")
		Error(c, status, code, errors.New("внутренняя ошибка"))
	default:
		Error(c, status, code, err)
	}
}

// Classify возвращает HTTP-статус и код API для ошибки.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrPostNotFound),
		errors.Is(err, common.ErrMockTestNotFound),
		errors.Is(err, common.ErrAttemptNotFound),
		errors.Is(err, common.ErrStreakNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidReason),
		errors.Is(err, common.ErrInvalidScore),
		errors.Is(err, common.ErrInvalidID),
		errors.Is(err, common.ErrInvalidLimit):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	case errors.Is(err, common.ErrStorageFailure):
		return http.StatusServiceUnavailable, CodeStorage
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
