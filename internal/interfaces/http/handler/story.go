package handler

import (
	"github.com/gin-gonic/gin"

	"story-time-api/internal/interfaces/http/dto"
	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/logger"
)

// StoryHandler 故事生成 JSON 接口
type StoryHandler struct {
	svc StoryService
}

// NewStoryHandler 创建故事处理器
func NewStoryHandler(svc StoryService) *StoryHandler {
	return &StoryHandler{svc: svc}
}

// CreateStory 根据主题生成故事
// @Summary 生成故事
// @Tags Stories
// @Accept json
// @Produce json
// @Param body body dto.CreateStoryRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.StoryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/stories [post]
func (h *StoryHandler) CreateStory(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.AppError(c, apperrors.ErrInvalidParam.WithDetail(err.Error()).WithError(err))
		return
	}

	state, err := submitStory(ctx, h.svc, req.Topic)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrValidationFailed) {
			logger.Warn(ctx, "story request failed", "error", err.Error())
		}
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.StoryResponse{
		Topic:      req.Topic,
		Story:      state.Story,
		Paragraphs: state.Paragraphs(),
	})
}

// Status 返回生成功能是否可用
// @Summary 生成功能状态
// @Tags Stories
// @Produce json
// @Success 200 {object} dto.Response[dto.StatusResponse]
// @Router /v1/status [get]
func (h *StoryHandler) Status(c *gin.Context) {
	provider, model := h.svc.Provider()
	resp := dto.StatusResponse{
		Configured: h.svc.Configured(),
		Provider:   provider,
		Model:      model,
	}
	if !resp.Configured {
		resp.Message = apperrors.MsgNotConfigured
	}
	dto.Success(c, resp)
}
