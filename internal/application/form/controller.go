// Package form 实现故事表单的提交流程与页面状态
package form

import (
	"context"
	"sync"

	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/logger"
	"story-time-api/pkg/metrics"
)

// StoryGenerator 表单所依赖的生成器
type StoryGenerator interface {
	Generate(ctx context.Context, topic string) (string, error)
	Configured() bool
}

// Controller 持有单个访客的页面状态。
// 同一访客同一时刻只允许一个提交在途。
type Controller struct {
	mu    sync.Mutex
	gen   StoryGenerator
	state State
}

// NewController 创建控制器，初始为 idle
func NewController(gen StoryGenerator) *Controller {
	return &Controller{gen: gen}
}

// Configured 凭据缺失时页面禁用提交并显示提示
func (c *Controller) Configured() bool {
	return c.gen != nil && c.gen.Configured()
}

// State 返回当前状态快照
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit 校验主题并调用生成器。
// 校验失败与在途冲突不改变状态；其余失败写入 Error，保留已有 Story。
func (c *Controller) Submit(ctx context.Context, topic string) error {
	if err := ValidateTopic(topic); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	c.mu.Lock()
	if c.state.Phase == PhaseSubmitting {
		c.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("busy").Inc()
		return apperrors.ErrBusy
	}
	c.state.Error = ""
	if !c.Configured() {
		c.state.Phase = PhaseFailed
		c.state.Error = apperrors.MsgNotConfigured
		c.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("unconfigured").Inc()
		logger.Warn(ctx, "story submit rejected: api key not configured")
		return apperrors.ErrNotConfigured
	}
	c.state.Phase = PhaseSubmitting
	c.state.Topic = topic
	c.mu.Unlock()

	metrics.SubmissionsInFlight.Inc()
	text, err := c.gen.Generate(ctx, topic)
	metrics.SubmissionsInFlight.Dec()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Phase = PhaseFailed
		c.state.Error = userMessage(err)
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return err
	}
	c.state.Phase = PhaseSucceeded
	c.state.Story = text
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	return nil
}

// userMessage 取面向用户的文案，不暴露底层细节
func userMessage(err error) string {
	if apperrors.IsAppError(err) {
		return apperrors.AsAppError(err).Message
	}
	return err.Error()
}
