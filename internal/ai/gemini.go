package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	APIKey string
	Model  string
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	return &GeminiProvider{APIKey: apiKey, Model: model}
}

func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Completion, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if len(messages) == 0 {
		return nil, errors.New("gemini: no messages")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.APIKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	model := client.GenerativeModel(p.Model)
	model.SetTemperature(0.7)

	var system []string
	var history []*genai.Content
	for _, m := range messages[:len(messages)-1] {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		history = append(history, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	if len(system) > 0 {
		model.SystemInstruction = genai.NewUserContent(genai.Text(strings.Join(system, "\n\n")))
	}

	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  geminiSchema(t.Parameters),
			})
		}
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	cs := model.StartChat()
	cs.History = history

	last := messages[len(messages)-1]
	res, err := cs.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &StatusError{Provider: "gemini", StatusCode: gerr.Code, Message: gerr.Message}
		}
		return nil, err
	}

	out := &Completion{}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return out, nil
	}
	var text strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			if out.ToolCall != nil {
				continue
			}
			args, err := json.Marshal(v.Args)
			if err != nil {
				args = []byte("{}")
			}
			out.ToolCall = &ToolCall{Name: v.Name, Arguments: string(args)}
		}
	}
	out.Content = text.String()
	return out, nil
}

func geminiRole(role string) string {
	if role == RoleAssistant || role == "model" {
		return "model"
	}
	return "user"
}

// geminiSchema converts the JSON-schema subset used by the tools
// (object, string, array, number, integer, boolean) into genai.Schema.
func geminiSchema(raw map[string]any) *genai.Schema {
	if raw == nil {
		return nil
	}
	s := &genai.Schema{}
	switch raw["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	if d, ok := raw["description"].(string); ok {
		s.Description = d
	}
	if props, ok := raw["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if m, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(m)
			}
		}
	}
	if items, ok := raw["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	switch req := raw["required"].(type) {
	case []string:
		s.Required = req
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}
