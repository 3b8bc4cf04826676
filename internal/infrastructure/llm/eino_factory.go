// Package llm 提供大模型客户端的构建与管理
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"story-time-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

const defaultCallTimeout = 60 * time.Second

// ErrProviderNotConfigured 提供商缺少凭据
var ErrProviderNotConfigured = errors.New("llm provider api key not configured")

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = f.resolveName(name)

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	if !providerCfg.Configured() {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, name)
	}

	chatModel, err := f.build(ctx, name, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// Default 返回默认 ChatModel
func (f *EinoFactory) Default(ctx context.Context) (model.BaseChatModel, error) {
	return f.Get(ctx, "")
}

// Configured 报告提供商凭据是否齐全
func (f *EinoFactory) Configured(name string) bool {
	p, ok := f.config.Providers[f.resolveName(name)]
	return ok && p.Configured()
}

// Describe 返回提供商名称与模型名
func (f *EinoFactory) Describe(name string) (string, string) {
	name = f.resolveName(name)
	return name, f.config.Providers[name].Model
}

func (f *EinoFactory) resolveName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(f.config.DefaultProvider))
	}
	return name
}

func (f *EinoFactory) build(ctx context.Context, name string, p config.ProviderConfig) (model.BaseChatModel, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	switch p.ResolvedType(name) {
	case config.ProviderTypeGemini:
		return NewGeminiChatModel(ctx, &GeminiConfig{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			MaxTokens:   p.MaxTokens,
			Temperature: float32(p.Temperature),
			Timeout:     timeout,
		})
	default:
		// 其余提供商统一走 OpenAI 兼容接口（DeepSeek 等需填写 base_url）
		cfg := &openai.ChatModelConfig{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			Temperature: ptrFloat32(float32(p.Temperature)),
			Timeout:     timeout,
		}
		if p.MaxTokens > 0 {
			cfg.MaxTokens = &p.MaxTokens
		}
		return openai.NewChatModel(ctx, cfg)
	}
}

func ptrFloat32(f float32) *float32 {
	return &f
}
