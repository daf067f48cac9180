package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	// DefaultOpenAIModel is the default OpenAI embedding model.
	DefaultOpenAIModel = "text-embedding-ada-002"

	// DefaultOpenAIDimensions is the output size of text-embedding-ada-002.
	DefaultOpenAIDimensions = 1536
)

// openAIModels maps model names to the client's model constants.
// Only models the client can address are accepted.
var openAIModels = map[string]openai.EmbeddingModel{
	"text-embedding-ada-002": openai.AdaEmbeddingV2,
}

// OpenAIProvider generates embeddings using the OpenAI embeddings API
// or any server that speaks the same protocol.
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	modelID    openai.EmbeddingModel
	dimensions int
	limiter    *rate.Limiter
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*openAISettings)

type openAISettings struct {
	baseURL    string
	model      string
	dimensions int
	perSecond  float64
}

// WithOpenAIBaseURL points the client at a compatible server (e.g. "http://host/v1").
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(s *openAISettings) {
		s.baseURL = url
	}
}

// WithOpenAIModel sets the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(s *openAISettings) {
		s.model = model
	}
}

// WithOpenAIDimensions sets the expected vector dimensions.
func WithOpenAIDimensions(dims int) OpenAIOption {
	return func(s *openAISettings) {
		s.dimensions = dims
	}
}

// WithOpenAIRateLimit caps embedding requests per second. Zero disables limiting.
func WithOpenAIRateLimit(perSecond float64) OpenAIOption {
	return func(s *openAISettings) {
		s.perSecond = perSecond
	}
}

// NewOpenAIProvider creates an OpenAI embedding provider authenticated with apiKey.
// It returns ErrModelNotFound for a model the client cannot request.
// The dimensions are checked against each response, not sent.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	s := openAISettings{
		model:      DefaultOpenAIModel,
		dimensions: DefaultOpenAIDimensions,
	}
	for _, opt := range opts {
		opt(&s)
	}

	modelID, ok := openAIModels[s.model]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a supported openai embedding model", ErrModelNotFound, s.model)
	}

	cfg := openai.DefaultConfig(apiKey)
	if s.baseURL != "" {
		cfg.BaseURL = s.baseURL
	}

	p := &OpenAIProvider{
		client:     openai.NewClientWithConfig(cfg),
		model:      s.model,
		modelID:    modelID,
		dimensions: s.dimensions,
	}
	if s.perSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(s.perSecond), 1)
	}
	return p, nil
}

// Embed generates an embedding for the given text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if IsBlank(text) {
		return Zero(p.dimensions), nil
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Embedding{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.modelID,
	})
	if err != nil {
		return Embedding{}, classifyOpenAIError(ctx, err)
	}
	if len(resp.Data) == 0 {
		return Embedding{}, fmt.Errorf("openai returned no embeddings")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != p.dimensions {
		return Embedding{}, fmt.Errorf("unexpected embedding dimensions: got %d, want %d", len(vec), p.dimensions)
	}
	return Embedding{Vector: vec}, nil
}

// ModelName returns the name of the embedding model.
func (p *OpenAIProvider) ModelName() string {
	return p.model
}

// Dimensions returns the expected vector dimensions.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// classifyOpenAIError maps a client error onto the provider sentinels.
// Errors without an HTTP response mean the server was not reached.
func classifyOpenAIError(ctx context.Context, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
		return fmt.Errorf("openai embeddings: %w", err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai embeddings: %w", err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("openai embeddings: %w", ctx.Err())
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
