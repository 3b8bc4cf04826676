package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestChildrenStoryTemplate(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptChildrenStoryV1)
	if err != nil {
		t.Fatalf("ChatTemplate returned error: %v", err)
	}

	msgs, err := tpl.Format(context.Background(), map[string]any{"topic": "friendly dragon"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected a single user message, got %d", len(msgs))
	}
	if msgs[0].Role != schema.User {
		t.Errorf("expected user role, got %q", msgs[0].Role)
	}

	content := msgs[0].Content
	for _, want := range []string{
		"children's story about friendly dragon.",
		"aged 5-10",
		"3-4 paragraphs",
		"dialogue",
		"moral lessons",
		"beginning, middle, and end",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("prompt missing %q:\n%s", want, content)
		}
	}
}

func TestTopicIsEmbeddedVerbatim(t *testing.T) {
	tpl, err := NewRegistry().ChatTemplate(PromptChildrenStoryV1)
	if err != nil {
		t.Fatalf("ChatTemplate returned error: %v", err)
	}
	msgs, err := tpl.Format(context.Background(), map[string]any{"topic": "a {curly} cat"})
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(msgs[0].Content, "about a {curly} cat.") {
		t.Errorf("topic not embedded verbatim: %s", msgs[0].Content)
	}
}

func TestRegistryCachesAndRejectsUnknown(t *testing.T) {
	r := NewRegistry()
	a, _ := r.ChatTemplate(PromptChildrenStoryV1)
	b, _ := r.ChatTemplate(PromptChildrenStoryV1)
	if a != b {
		t.Error("template should be cached")
	}
	if _, err := r.ChatTemplate("nope"); err == nil {
		t.Error("expected error for unknown prompt id")
	}
}
