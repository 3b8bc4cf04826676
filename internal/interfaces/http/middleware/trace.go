// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"

	"story-time-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader 响应中的 trace ID 头
const TraceIDHeader = "X-Trace-ID"

// Trace OpenTelemetry 追踪中间件，健康检查与指标端点不采样
func Trace(serviceName string, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
		_, ok := skip[r.URL.Path]
		return !ok
	}))
}

// TraceContext 将 trace 信息写入日志上下文与响应头，并把请求 ID 记到 span 上
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.SpanContext().IsValid() {
			c.Next()
			return
		}

		traceID := span.SpanContext().TraceID().String()
		spanID := span.SpanContext().SpanID().String()

		// 设置到 Gin Context
		c.Set("trace_id", traceID)
		c.Set("span_id", spanID)

		// 设置到 Logger Context
		ctx := logger.WithContext(c.Request.Context(), logger.TraceIDKey, traceID)
		ctx = logger.WithContext(ctx, logger.SpanIDKey, spanID)
		c.Request = c.Request.WithContext(ctx)

		// 关联请求 ID，便于从日志反查 span
		if requestID := c.GetString("request_id"); requestID != "" {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		// 设置响应头
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}
