// Package wire 组装应用依赖
package wire

import (
	"context"

	"story-time-api/internal/application/story"
	"story-time-api/internal/config"
	"story-time-api/internal/infrastructure/llm"
	"story-time-api/internal/interfaces/http/handler"
	"story-time-api/internal/interfaces/http/router"
	einoobs "story-time-api/internal/observability/eino"
	"story-time-api/pkg/logger"
)

// InitializeApp 构建路由及其依赖，返回清理函数
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	einoobs.Init()
	generator := ProvideStoryGenerator(cfg)

	if !generator.Configured() {
		provider, _ := generator.Provider()
		logger.Warn(ctx, "llm api key not configured; story generation disabled",
			"provider", provider,
		)
	}

	r, err := router.New(cfg, ProvideHandlers(cfg, generator))
	if err != nil {
		return nil, nil, err
	}
	return r, func() {}, nil
}

// ProvideLLMFactory 创建 LLM 工厂
func ProvideLLMFactory(cfg *config.Config) *llm.EinoFactory {
	return llm.NewEinoFactory(cfg)
}

// ProvideStoryGenerator 创建故事生成器
func ProvideStoryGenerator(cfg *config.Config) *story.Generator {
	return story.NewGenerator(ProvideLLMFactory(cfg), cfg.LLM.DefaultProvider)
}

// ProvideHandlers 创建 HTTP 处理器
func ProvideHandlers(cfg *config.Config, generator *story.Generator) router.Handlers {
	return router.Handlers{
		Health: handler.NewHealthHandler(generator, cfg.App.Version),
		Page:   handler.NewPageHandler(generator, cfg.Form),
		Story:  handler.NewStoryHandler(generator),
	}
}
