package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// GeminiConfig Gemini 客户端配置
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// geminiContentGenerator 抽出 genai Models 的最小依赖，便于测试替换
type geminiContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiChatModel 以 Eino BaseChatModel 形式包装 genai SDK
type GeminiChatModel struct {
	models      geminiContentGenerator
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel 创建 Gemini ChatModel（Gemini API 后端）
func NewGeminiChatModel(ctx context.Context, cfg *GeminiConfig) (*GeminiChatModel, error) {
	if cfg == nil {
		return nil, errors.New("gemini config is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrProviderNotConfigured
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("gemini model is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiChatModel{
		models:      client.Models,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

// Generate 单次请求一个完整回复，并按 Eino 约定触发模型回调
func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (outMsg *schema.Message, err error) {
	temperature := g.temperature
	maxTokens := g.maxTokens
	modelName := g.model
	common := model.GetCommonOptions(&model.Options{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Model:       &modelName,
	}, opts...)

	conf := &model.Config{
		Model:       *common.Model,
		MaxTokens:   *common.MaxTokens,
		Temperature: *common.Temperature,
	}
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{Messages: input, Config: conf})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	contents, system := toGeminiContents(input)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no user content")
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       common.Temperature,
		CandidateCount:    1,
	}
	if conf.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(conf.MaxTokens)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(callCtx, conf.Model, contents, genCfg)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("gemini: nil response")
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}

	outMsg = schema.AssistantMessage(text, nil)
	var usage *model.TokenUsage
	if resp.UsageMetadata != nil {
		usage = &model.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
		outMsg.ResponseMeta = &schema.ResponseMeta{
			Usage: &schema.TokenUsage{
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
				TotalTokens:      usage.TotalTokens,
			},
		}
	}

	callbacks.OnEnd(ctx, &model.CallbackOutput{Message: outMsg, Config: conf, TokenUsage: usage})
	return outMsg, nil
}

// Stream 不支持流式输出
func (g *GeminiChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("gemini: streaming not supported")
}

// GetType 回调中使用的组件类型名
func (g *GeminiChatModel) GetType() string { return "Gemini" }

// IsCallbacksEnabled 回调由 Generate 自行触发
func (g *GeminiChatModel) IsCallbacksEnabled() bool { return true }

// toGeminiContents 将 Eino 消息转为 genai 内容，system 消息合并为 SystemInstruction
func toGeminiContents(msgs []*schema.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}
