package dto

// CreateStoryRequest 生成故事请求
type CreateStoryRequest struct {
	Topic string `json:"topic"`
}

// StoryResponse 生成故事响应
type StoryResponse struct {
	Topic      string   `json:"topic"`
	Story      string   `json:"story"`
	Paragraphs []string `json:"paragraphs"`
}

// StatusResponse 生成功能可用性
type StatusResponse struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Message    string `json:"message,omitempty"`
}
