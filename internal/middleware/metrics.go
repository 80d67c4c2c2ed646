package middleware

import (
	"time"

	"stagekeeper/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP请求统计中间件
 * @description
 * - 统计HTTP服务器收到的请求数量
 * - 记录请求处理时间
 * - 区分成功和失败的请求
 * - 为健康检查接口提供请求数据
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, duration)

		if statusCode >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}
