package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"story-time-api/internal/application/form"
	"story-time-api/pkg/logger"
)

const (
	visitorCookie     = "story_time_vid"
	defaultVisitorTTL = 30 * time.Minute
)

// visitorStore 按访客 cookie 保存页面状态，过期自动清理
type visitorStore struct {
	items  *cache.Cache
	gen    form.StoryGenerator
	ttl    time.Duration
	secure bool
}

func newVisitorStore(gen form.StoryGenerator, ttl time.Duration, secure bool) *visitorStore {
	if ttl <= 0 {
		ttl = defaultVisitorTTL
	}
	return &visitorStore{
		items:  cache.New(ttl, 2*ttl),
		gen:    gen,
		ttl:    ttl,
		secure: secure,
	}
}

// controller 返回当前访客的控制器，必要时签发新的访客 ID
func (s *visitorStore) controller(c *gin.Context) *form.Controller {
	id, err := c.Cookie(visitorCookie)
	if err != nil || !validVisitorID(id) {
		id = uuid.NewString()
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(visitorCookie, id, int(s.ttl.Seconds()), "/", "", s.secure, true)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), logger.VisitorIDKey, id))

	if v, ok := s.items.Get(id); ok {
		ctrl := v.(*form.Controller)
		// 续期
		s.items.SetDefault(id, ctrl)
		return ctrl
	}

	ctrl := form.NewController(s.gen)
	if err := s.items.Add(id, ctrl, cache.DefaultExpiration); err != nil {
		// 并发请求已先行创建
		if v, ok := s.items.Get(id); ok {
			return v.(*form.Controller)
		}
	}
	return ctrl
}

func (s *visitorStore) count() int {
	return s.items.ItemCount()
}

func validVisitorID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
