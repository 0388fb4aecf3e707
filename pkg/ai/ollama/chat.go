package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sakshi-kadian/aurelius/pkg/ai"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// Ollama's default context window. Larger prompts raise num_ctx.
const defaultContextTokens = 4096

// GenerateCompletion sends a single-turn prompt and returns assistant text.
// A schema from ai.WithJSONSchema is passed as the request format.
func (c *GraphOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.ApplyOptions(ai.GenerateOptions{
		Model:       c.extractionModel,
		Temperature: 0.3,
	}, opts...)

	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Options:  map[string]any{"temperature": options.Temperature},
	}

	format, err := requestFormat(options)
	if err != nil {
		return "", err
	}
	req.Format = format

	if numCtx := contextTokens(prompt) + contextTokens(options.SystemPrompts...); numCtx > defaultContextTokens {
		req.Options["num_ctx"] = numCtx
	}

	rCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return "", err
	}
	defer c.reqLock.Release(1)

	var content strings.Builder
	var final api.ChatResponse
	if err := c.Client.Chat(rCtx, req, func(cr api.ChatResponse) error {
		content.WriteString(cr.Message.Content)
		if cr.Done {
			final = cr
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return content.String(), nil
}

func requestFormat(options ai.GenerateOptions) (json.RawMessage, error) {
	switch {
	case options.Format != nil:
		b, err := json.Marshal(options.Format.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to encode response schema: %w", err)
		}
		return b, nil
	case options.JSONMode:
		return json.RawMessage(`"json"`), nil
	}
	return nil, nil
}

// contextTokens estimates the context window a request needs: the prompt
// tokens plus headroom for the answer.
func contextTokens(texts ...string) int {
	tokens := 512
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		for _, t := range texts {
			tokens += len(t) / 4
		}
		return tokens
	}
	for _, t := range texts {
		tokens += len(enc.Encode(t, nil, nil))
	}
	return tokens
}
