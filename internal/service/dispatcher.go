package service

import (
	"context"

	"github.com/arrahchii/portfolio-sub000/internal/config"
	"github.com/arrahchii/portfolio-sub000/internal/model"
	"github.com/arrahchii/portfolio-sub000/pkg/llm"
)

// Dispatcher forwards open-ended questions to the language model.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string, history []model.ChatMessage) (string, error)
}

type llmDispatcher struct {
	client        llm.Client
	systemPrompt  string
	historyWindow int
	gen           *llm.GenerationParams
}

// NewDispatcher creates a Dispatcher that sends at most historyWindow prior
// messages along with the persona prompt. A zero window sends no history.
func NewDispatcher(client llm.Client, systemPrompt string, historyWindow int, gen config.LLMGenerationConfig) Dispatcher {
	return &llmDispatcher{
		client:        client,
		systemPrompt:  systemPrompt,
		historyWindow: historyWindow,
		gen:           buildGenerationParams(gen),
	}
}

// Dispatch 组装 system + 历史窗口 + 当前问题，所有失败都包装为 ExternalServiceError。
func (d *llmDispatcher) Dispatch(ctx context.Context, prompt string, history []model.ChatMessage) (string, error) {
	reply, err := d.client.Complete(ctx, d.composeMessages(prompt, history), d.gen)
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	return reply, nil
}

func (d *llmDispatcher) composeMessages(prompt string, history []model.ChatMessage) []llm.Message {
	start := 0
	if len(history) > d.historyWindow {
		start = len(history) - d.historyWindow
	}
	window := history[start:]

	msgs := make([]llm.Message, 0, len(window)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: d.systemPrompt})
	for _, m := range window {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Message})
	}
	msgs = append(msgs, llm.Message{Role: string(model.RoleUser), Content: prompt})
	return msgs
}

func buildGenerationParams(cfg config.LLMGenerationConfig) *llm.GenerationParams {
	var gp llm.GenerationParams
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		gp.Temperature = &t
	}
	if cfg.TopP != 0 {
		p := cfg.TopP
		gp.TopP = &p
	}
	if cfg.MaxTokens != 0 {
		m := cfg.MaxTokens
		gp.MaxTokens = &m
	}
	return &gp
}
