// Package story 负责根据主题生成儿童故事
package story

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	einoobs "story-time-api/internal/observability/eino"
	workflowprompt "story-time-api/internal/workflow/prompt"
	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/logger"
	"story-time-api/pkg/metrics"
	"story-time-api/pkg/tracer"
)

const workflowChildrenStory = "children_story"

// Generator 无状态的故事生成器，每次调用只请求一次模型
type Generator struct {
	factory  ChatModelFactory
	provider string
	prompts  *workflowprompt.Registry
}

// NewGenerator 创建生成器；provider 为空时使用默认提供商
func NewGenerator(factory ChatModelFactory, provider string) *Generator {
	return &Generator{
		factory:  factory,
		provider: provider,
		prompts:  workflowprompt.NewRegistry(),
	}
}

// Configured 报告所用提供商的凭据是否存在
func (g *Generator) Configured() bool {
	return g != nil && g.factory != nil && g.factory.Configured(g.provider)
}

// Provider 返回提供商与模型名
func (g *Generator) Provider() (string, string) {
	return g.factory.Describe(g.provider)
}

// Generate 生成故事并原样返回模型输出。
// 任何失败都记录原始错误，对外只返回 "Failed to generate story"。
func (g *Generator) Generate(ctx context.Context, topic string) (string, error) {
	provider, modelName := g.Provider()

	ctx, span := tracer.Start(ctx, "story.generate", trace.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", modelName),
	))
	defer span.End()

	ctx = einoobs.WithWorkflowProvider(ctx, workflowChildrenStory, provider)

	start := time.Now()
	out, err := g.invoke(ctx, topic)
	elapsed := time.Since(start).Seconds()

	metrics.StoryGenerationDuration.WithLabelValues(provider).Observe(elapsed)

	if err != nil {
		metrics.StoryGenerationTotal.WithLabelValues(provider, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		logger.Error(ctx, "error generating story", err,
			"provider", provider,
			"model", modelName,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return "", apperrors.ErrGenerationFailed.WithError(err)
	}

	metrics.StoryGenerationTotal.WithLabelValues(provider, "success").Inc()
	metrics.StoryParagraphCount.Observe(float64(len(Paragraphs(out.Content))))

	logger.Debug(ctx, "story generated",
		"provider", provider,
		"model", modelName,
		"chars", len(out.Content),
	)
	return out.Content, nil
}

func (g *Generator) invoke(ctx context.Context, topic string) (*schema.Message, error) {
	if g.factory == nil {
		return nil, errors.New("llm factory not configured")
	}
	chatModel, err := g.factory.Get(ctx, g.provider)
	if err != nil {
		return nil, err
	}

	tpl, err := g.prompts.ChatTemplate(workflowprompt.PromptChildrenStoryV1)
	if err != nil {
		return nil, err
	}
	msgs, err := tpl.Format(ctx, map[string]any{"topic": topic})
	if err != nil {
		return nil, err
	}

	// 模型调用指标由 Eino 全局回调上报
	provider, _ := g.Provider()
	modelCtx := callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      workflowChildrenStory,
		Type:      provider,
		Component: components.ComponentOfChatModel,
	})
	outMsg, err := chatModel.Generate(modelCtx, msgs)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, errors.New("empty llm response")
	}
	return outMsg, nil
}
