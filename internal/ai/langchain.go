package ai

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider adapts any langchaingo model. It backs the "openai"
// provider, which also serves OpenAI-compatible endpoints via baseURL.
type LangChainProvider struct {
	model llms.Model
}

func NewLangChainProvider(model llms.Model) *LangChainProvider {
	return &LangChainProvider{model: model}
}

func NewOpenAIProvider(apiKey, model, baseURL string) (*LangChainProvider, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangChainProvider(llm), nil
}

func (p *LangChainProvider) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error) {
	if p.model == nil {
		return nil, errors.New("langchain: model is nil")
	}

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(langChainRole(m.Role), m.Content))
	}

	var opts []llms.CallOption
	if len(tools) > 0 {
		defs := make([]llms.Tool, 0, len(tools))
		for _, t := range tools {
			defs = append(defs, llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		opts = append(opts, llms.WithTools(defs))
	}

	resp, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("langchain: empty response")
	}

	choice := resp.Choices[0]
	out := &Completion{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall != nil {
			out.ToolCall = &ToolCall{Name: tc.FunctionCall.Name, Arguments: tc.FunctionCall.Arguments}
			break
		}
	}
	if out.ToolCall == nil && choice.FuncCall != nil {
		out.ToolCall = &ToolCall{Name: choice.FuncCall.Name, Arguments: choice.FuncCall.Arguments}
	}
	return out, nil
}

func langChainRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
