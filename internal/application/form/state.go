package form

import "story-time-api/internal/application/story"

// Phase 一次提交的生命周期：idle → submitting → {succeeded, failed}
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State 页面状态快照。
// 失败不会清空 Story，上一次成功的故事会与新的错误同时存在。
type State struct {
	Phase Phase
	Topic string
	Story string
	Error string
}

// Loading 仅在 submitting 阶段为 true
func (s State) Loading() bool {
	return s.Phase == PhaseSubmitting
}

// Paragraphs 返回待渲染的段落
func (s State) Paragraphs() []string {
	return story.Paragraphs(s.Story)
}
