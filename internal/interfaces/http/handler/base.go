package handler

import (
	"context"

	"story-time-api/internal/application/form"
)

// StoryService 处理器依赖的故事生成能力
type StoryService interface {
	form.StoryGenerator
	Provider() (provider string, model string)
}

// ReadinessChecker 就绪检查项
type ReadinessChecker interface {
	Configured() bool
}

// submitStory 以无状态控制器执行一次提交，供 JSON 接口使用
func submitStory(ctx context.Context, svc StoryService, topic string) (form.State, error) {
	ctrl := form.NewController(svc)
	err := ctrl.Submit(ctx, topic)
	return ctrl.State(), err
}
