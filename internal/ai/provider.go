package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"go.uber.org/zap"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// InsightProvider turns an analysis bundle into narrative insights using
// one configured backend. Each Generate call makes exactly one backend call.
type InsightProvider struct {
	backend     Backend
	model       string
	maxTokens   int
	temperature float64
	log         *zap.Logger
}

// ProviderOption customises an InsightProvider.
type ProviderOption func(*InsightProvider)

// WithLogger sets the logger used for degradation warnings.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *InsightProvider) {
		if l != nil {
			p.log = l
		}
	}
}

// GenerationResult is the outcome of one Generate call.
type GenerationResult struct {
	Insights  []analysis.Insight
	Provider  string
	Model     string
	Usage     Usage
	RequestID string
	// Degraded is set when the reply was not valid JSON and sections were
	// recovered heuristically.
	Degraded bool
}

// NewInsightProvider validates cfg and selects its backend. Missing
// credentials or an unknown provider fail here with a ConfigurationError.
func NewInsightProvider(cfg BackendConfig, opts ...ProviderOption) (*InsightProvider, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	p := &InsightProvider{
		backend:     backend,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         zap.NewNop(),
	}
	if p.model == "" {
		p.model = DefaultModel(backend.Provider())
	}
	if p.maxTokens <= 0 {
		p.maxTokens = DefaultMaxTokens
	}
	if p.temperature <= 0 {
		p.temperature = DefaultTemperature
	}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.With(zap.String("provider", backend.Provider()), zap.String("model", p.model))
	p.log.Info("insight provider initialised")
	return p, nil
}

// Provider returns the selected provider identifier.
func (p *InsightProvider) Provider() string { return p.backend.Provider() }

// Model returns the model used for completions.
func (p *InsightProvider) Model() string { return p.model }

// Generate summarises the bundle, asks the backend for structured insights
// and parses the reply. Backend failures are returned as *BackendError.
func (p *InsightProvider) Generate(ctx context.Context, bundle *analysis.Bundle) (*GenerationResult, error) {
	if bundle == nil {
		return nil, errors.New("bundle is nil")
	}
	req := GenerateRequest{
		Model:       p.model,
		System:      analystPersona,
		Messages:    []Message{{Role: "user", Content: BuildPrompt(analysis.Summarize(bundle))}},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		JSON:        true,
	}
	resp, err := p.backend.Generate(ctx, req)
	if err != nil {
		p.log.Error("insight generation failed", zap.Error(err))
		return nil, &BackendError{Provider: p.backend.Provider(), Err: err}
	}

	res := &GenerationResult{
		Provider:  p.backend.Provider(),
		Model:     p.model,
		Usage:     resp.Usage,
		RequestID: resp.RequestID,
	}
	insights, err := parseStrict(resp.Text)
	switch {
	case err == nil:
		res.Insights = insights
	case p.backend.recoversMalformedOutput():
		p.log.Warn("structured parse failed, using fallback parsing",
			zap.Error(err),
			zap.String("request_id", resp.RequestID),
		)
		res.Insights = parseFallback(resp.Text)
		res.Degraded = true
	default:
		p.log.Error("structured parse failed", zap.Error(err), zap.String("request_id", resp.RequestID))
		return nil, &BackendError{
			Provider: p.backend.Provider(),
			Err:      fmt.Errorf("request_id=%s: %w", resp.RequestID, err),
		}
	}
	p.log.Info("insights generated",
		zap.Int("sections", len(res.Insights)),
		zap.Bool("degraded", res.Degraded),
		zap.Int("prompt_tokens", res.Usage.PromptTokens),
		zap.Int("completion_tokens", res.Usage.CompletionTokens),
	)
	return res, nil
}
