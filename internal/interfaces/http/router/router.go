// Package router 提供 HTTP 路由配置
package router

import (
	"fmt"

	"story-time-api/internal/config"
	"story-time-api/internal/interfaces/http/dto"
	"story-time-api/internal/interfaces/http/handler"
	"story-time-api/internal/interfaces/http/middleware"
	"story-time-api/internal/interfaces/http/web"
	apperrors "story-time-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由所需的处理器集合
type Handlers struct {
	Health *handler.HealthHandler
	Page   *handler.PageHandler
	Story  *handler.StoryHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers) (*Router, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r, nil
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 系统端点不记日志、不采样
	quiet := []string{"/health", "/live", "/ready", r.cfg.Observability.Metrics.Path}

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, quiet...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Audit(quiet...))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	// 系统端点
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 表单页
	r.engine.GET("/", h.Page.Index)
	r.engine.POST("/", h.Page.Submit)

	// 未匹配路由统一返回 404 错误结构
	r.engine.NoRoute(func(c *gin.Context) {
		dto.AppError(c, apperrors.ErrNotFound.WithDetail(c.Request.URL.Path))
	})

	// API v1 路由组
	v1 := r.engine.Group("/v1")
	{
		v1.GET("/status", h.Story.Status)
		v1.POST("/stories", h.Story.CreateStory)
	}
}
