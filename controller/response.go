package controller

import (
	"errors"
	"net/http"

	"go-cubirds/dto"
	"go-cubirds/repository"
	"go-cubirds/service"
	"go-cubirds/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"msg":         msg,
		"data":        data,
	})
}

func fail(c *gin.Context, status int, msg string, data interface{}) {
	body := gin.H{
		"status_code": status,
		"msg":         msg,
	}
	if data != nil {
		body["data"] = data
	}
	c.AbortWithStatusJSON(status, body)
}

// statusOf maps service errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotYourTurn), errors.Is(err, repository.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dto.ErrBadMove):
		return http.StatusBadRequest
	case errors.Is(err, utils.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func failErr(c *gin.Context, logger *zap.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		fail(c, status, "internal error", nil)
		return
	}
	fail(c, status, err.Error(), nil)
}
