package ai

import (
	"context"
)

// ResponseFormat asks a backend to constrain its output to a JSON schema.
// Backends without structured-output support fall back to plain JSON mode.
type ResponseFormat struct {
	Name        string
	Description string
	Schema      any
}

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string          // Model identifier to use for generation
	SystemPrompts []string        // System prompts prepended to the request
	Temperature   float64         // Sampling temperature (0.0-2.0)
	Format        *ResponseFormat // Optional structured-output schema
	JSONMode      bool            // Ask for any JSON value without a schema
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	Requests       int     `json:"requests"`
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"tokens_per_second"`
}

// Add folds m into the running totals and recomputes the throughput.
func (t *ModelMetrics) Add(m ModelMetrics) {
	t.Requests++
	t.InputTokens += m.InputTokens
	t.OutputTokens += m.OutputTokens
	t.TotalTokens += m.TotalTokens
	t.DurationMs += m.DurationMs
	if t.DurationMs > 0 {
		t.TokenPerSecond = float32(t.OutputTokens) / (float32(t.DurationMs) / 1000)
	}
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithJSONSchema constrains the response to the schema generated from value.
func WithJSONSchema(name, description string, value any) GenerateOption {
	return func(o *GenerateOptions) {
		o.Format = &ResponseFormat{
			Name:        name,
			Description: description,
			Schema:      GenerateSchema(value),
		}
	}
}

// WithJSONMode asks the backend for a JSON document without a schema.
func WithJSONMode() GenerateOption {
	return func(o *GenerateOptions) {
		o.JSONMode = true
	}
}

// ApplyOptions folds opts over defaults.
func ApplyOptions(defaults GenerateOptions, opts ...GenerateOption) GenerateOptions {
	for _, o := range opts {
		o(&defaults)
	}
	return defaults
}

// GraphAIClient is the inference backend used for triplet extraction and
// chunk embeddings.
type GraphAIClient interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	ResetMetrics()
	GetMetrics() ModelMetrics
}

// BatchEmbedder is implemented by backends that can embed many inputs in a
// single request.
type BatchEmbedder interface {
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}
