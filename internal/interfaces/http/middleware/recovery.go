// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"story-time-api/internal/interfaces/http/dto"
	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				// 获取堆栈信息
				stack := string(debug.Stack())
				err := fmt.Errorf("%v", rec)

				// 记录错误日志
				logger.Error(c.Request.Context(), "panic recovered", err,
					"stack", stack,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				// 返回 500 错误，不暴露 panic 内容
				dto.AppError(c, apperrors.ErrInternalError.WithError(err))
				c.Abort()
			}
		}()

		c.Next()
	}
}
