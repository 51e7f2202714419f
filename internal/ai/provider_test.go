package ai

import (
	"context"
	"testing"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const fullJSON = `{
  "executive_summary": "Sales grew.\n\nMargins held.",
  "data_quality": "Complete.",
  "patterns": "Seasonal.",
  "recommendations": "Restock.",
  "technical_notes": "Small sample."
}`

const fallbackText = `EXECUTIVE SUMMARY
Revenue is concentrated in two regions.
Growth slowed in Q3.

DATA QUALITY ASSESSMENT
Two columns have missing values.`

func testBundle() *analysis.Bundle {
	return &analysis.Bundle{
		DatasetInfo: analysis.DatasetInfo{Rows: 100, Columns: 3, MemoryUsage: "2 KB"},
		ColumnStats: []analysis.ColumnStat{{Name: "amount", DType: "float64", UniqueCount: 90, Stats: analysis.NumericStats(5, 1, 0, 10, 0.1)}},
		DataQuality: analysis.DataQuality{TotalRows: 100, TotalColumns: 3, CompletenessPercentage: 99.5},
	}
}

func newTestProvider(t *testing.T, provider, baseURL string, opts ...ProviderOption) *InsightProvider {
	t.Helper()
	p, err := NewInsightProvider(BackendConfig{
		Provider:    provider,
		APIKey:      "test-key",
		BaseURL:     baseURL,
		HTTPTimeout: 2 * time.Second,
	}, opts...)
	require.NoError(t, err)
	return p
}

func TestGenerateStrictParse(t *testing.T) {
	for _, provider := range []string{ProviderAnthropic, ProviderOpenAI} {
		t.Run(provider, func(t *testing.T) {
			var body map[string]any
			var srv *ipv4Server
			if provider == ProviderAnthropic {
				srv = anthropicServer(t, fullJSON, &body, nil)
			} else {
				srv = openAIServer(t, fullJSON, &body, nil)
			}
			p := newTestProvider(t, provider, srv.URL)

			res, err := p.Generate(context.Background(), testBundle())
			require.NoError(t, err)

			want := []analysis.Insight{
				{Section: analysis.SectionExecutiveSummary, Content: "Sales grew.\n\nMargins held.", Confidence: analysis.ConfidenceHigh},
				{Section: analysis.SectionDataQuality, Content: "Complete.", Confidence: analysis.ConfidenceHigh},
				{Section: analysis.SectionPatterns, Content: "Seasonal.", Confidence: analysis.ConfidenceMedium},
				{Section: analysis.SectionRecommendations, Content: "Restock.", Confidence: analysis.ConfidenceHigh},
				{Section: analysis.SectionTechnicalNotes, Content: "Small sample.", Confidence: analysis.ConfidenceMedium},
			}
			assert.Equal(t, want, res.Insights)
			assert.False(t, res.Degraded)
			assert.Equal(t, provider, res.Provider)
			assert.Equal(t, DefaultModel(provider), res.Model)

			assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])
			assert.EqualValues(t, DefaultTemperature, body["temperature"])
			assert.Equal(t, 1, srv.Hits())
		})
	}
}

func TestGenerateSendsDigestInPrompt(t *testing.T) {
	var body map[string]any
	srv := anthropicServer(t, fullJSON, &body, nil)
	p := newTestProvider(t, ProviderAnthropic, srv.URL)

	_, err := p.Generate(context.Background(), testBundle())
	require.NoError(t, err)

	msgs := body["messages"].([]any)
	prompt := msgs[0].(map[string]any)["content"].(string)
	assert.Contains(t, prompt, "You are a senior data analyst.")
	assert.Contains(t, prompt, "### amount (float64)")
	assert.Contains(t, prompt, `"technical_notes": "..."`)
}

func TestGenerateMissingKeysStillEmitsFiveSections(t *testing.T) {
	srv := openAIServer(t, `{"executive_summary": "Only this."}`, nil, nil)
	p := newTestProvider(t, ProviderOpenAI, srv.URL)

	res, err := p.Generate(context.Background(), testBundle())
	require.NoError(t, err)
	require.Len(t, res.Insights, 5)
	assert.Equal(t, "Only this.", res.Insights[0].Content)
	for _, in := range res.Insights[1:] {
		assert.Empty(t, in.Content)
	}
}

func TestGenerateFallbackOnAnthropic(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	srv := anthropicServer(t, fallbackText, nil, nil)
	p := newTestProvider(t, ProviderAnthropic, srv.URL, WithLogger(zap.New(core)))

	res, err := p.Generate(context.Background(), testBundle())
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	assert.Equal(t, []analysis.Insight{
		{Section: analysis.SectionExecutiveSummary, Content: "Revenue is concentrated in two regions. Growth slowed in Q3.", Confidence: analysis.ConfidenceMedium},
		{Section: analysis.SectionDataQuality, Content: "Two columns have missing values.", Confidence: analysis.ConfidenceMedium},
	}, res.Insights)

	warnings := logs.FilterMessage("structured parse failed, using fallback parsing").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "req_anthropic_1", warnings[0].ContextMap()["request_id"])
}

func TestGenerateOpenAIMalformedIsBackendError(t *testing.T) {
	srv := openAIServer(t, fallbackText, nil, nil)
	p := newTestProvider(t, ProviderOpenAI, srv.URL)

	res, err := p.Generate(context.Background(), testBundle())
	require.Error(t, err)
	assert.Nil(t, res)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ProviderOpenAI, be.Provider)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestGenerateWrapsTransportErrors(t *testing.T) {
	srv := errorServer(t, 401, nil, map[string]any{"error": map[string]any{"message": "bad key"}})
	p := newTestProvider(t, ProviderAnthropic, srv.URL)

	_, err := p.Generate(context.Background(), testBundle())

	var be *BackendError
	require.ErrorAs(t, err, &be)
	var auth *AuthError
	assert.ErrorAs(t, err, &auth)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "bad key", apiErr.Message)
}

func TestNewInsightProviderFailsFast(t *testing.T) {
	_, err := NewInsightProvider(BackendConfig{Provider: "anthropic", Model: "claude-sonnet-4-20250514"})
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	_, err = NewInsightProvider(BackendConfig{Provider: "cohere", APIKey: "k"})
	require.ErrorAs(t, err, &ce)
}

func TestGenerateHonoursExplicitModel(t *testing.T) {
	var body map[string]any
	srv := openAIServer(t, fullJSON, &body, nil)
	p, err := NewInsightProvider(BackendConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL, MaxTokens: 1500, Temperature: 0.2})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), testBundle())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 1500, body["max_tokens"])
	assert.EqualValues(t, 0.2, body["temperature"])
}
