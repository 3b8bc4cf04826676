package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"story-time-api/internal/application/form"
	"story-time-api/internal/config"
	"story-time-api/internal/interfaces/http/web"
	apperrors "story-time-api/pkg/errors"
	"story-time-api/pkg/logger"
)

// PageHandler 故事表单页
type PageHandler struct {
	visitors *visitorStore
}

// NewPageHandler 创建表单页处理器
func NewPageHandler(gen form.StoryGenerator, cfg config.FormConfig) *PageHandler {
	return &PageHandler{
		visitors: newVisitorStore(gen, cfg.VisitorTTL, cfg.CookieSecure),
	}
}

type pageView struct {
	Configured     bool
	Loading        bool
	SubmitDisabled bool
	Topic          string
	FieldError     string
	Error          string
	Paragraphs     []string
}

// Index 渲染表单页
func (h *PageHandler) Index(c *gin.Context) {
	ctrl := h.visitors.controller(c)
	h.render(c, http.StatusOK, ctrl, ctrl.State().Topic, "")
}

// Submit 处理表单提交并重新渲染
func (h *PageHandler) Submit(c *gin.Context) {
	ctrl := h.visitors.controller(c)
	topic := c.PostForm("topic")

	status := http.StatusOK
	fieldErr := ""
	if err := ctrl.Submit(c.Request.Context(), topic); err != nil {
		appErr := apperrors.AsAppError(err)
		status = appErr.HTTPStatus
		if apperrors.Is(err, apperrors.ErrValidationFailed) {
			fieldErr = appErr.Message
		} else {
			logger.Warn(c.Request.Context(), "story submit failed", "error", err.Error())
		}
	}
	h.render(c, status, ctrl, topic, fieldErr)
}

func (h *PageHandler) render(c *gin.Context, status int, ctrl *form.Controller, topic, fieldErr string) {
	st := ctrl.State()
	configured := ctrl.Configured()
	c.HTML(status, web.IndexTemplate, pageView{
		Configured:     configured,
		Loading:        st.Loading(),
		SubmitDisabled: st.Loading() || !configured,
		Topic:          topic,
		FieldError:     fieldErr,
		Error:          st.Error,
		Paragraphs:     st.Paragraphs(),
	})
}
