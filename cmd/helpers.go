package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/ai"
	"github.com/KaramelBytes/autoinsight/internal/analysis"
	cfgpkg "github.com/KaramelBytes/autoinsight/internal/config"
	"github.com/KaramelBytes/autoinsight/internal/parser"
	"github.com/KaramelBytes/autoinsight/internal/project"
	"github.com/KaramelBytes/autoinsight/internal/report"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// runFlags are shared by the pipeline commands.
type runFlags struct {
	provider string
	model    string
	out      string
	format   string
}

func (f *runFlags) bindGeneration(fs *pflag.FlagSet) {
	fs.StringVar(&f.provider, "provider", "", "AI provider: anthropic or openai (overrides ai_provider)")
	fs.StringVar(&f.model, "model", "", "model name (defaults to the provider's configured model)")
}

func (f *runFlags) bindOutput(fs *pflag.FlagSet) {
	fs.StringVarP(&f.out, "out", "o", "", "report directory (overrides report_dir)")
	fs.StringVar(&f.format, "format", "all", "output format: pdf, html or all")
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// backendConfig resolves provider, model and credentials for one run.
func backendConfig(c *cfgpkg.Global, provider, model string) ai.BackendConfig {
	name := ai.NormalizeProvider(provider)
	if name == "" {
		name = ai.NormalizeProvider(c.AIProvider)
	}
	bc := ai.BackendConfig{
		Provider:    name,
		Model:       model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
	}
	switch name {
	case ai.ProviderAnthropic:
		bc.APIKey = c.AnthropicAPIKey
		bc.BaseURL = c.AnthropicBaseURL
		if bc.Model == "" {
			bc.Model = c.AnthropicModel
		}
	case ai.ProviderOpenAI:
		bc.APIKey = c.OpenAIAPIKey
		bc.BaseURL = c.OpenAIBaseURL
		if bc.Model == "" {
			bc.Model = c.OpenAIModel
		}
	}
	return bc
}

func reportDir(c *cfgpkg.Global, out string) string {
	if out != "" {
		return out
	}
	if c.ReportDir != "" {
		return c.ReportDir
	}
	return "reports"
}

func loadAnalysis(path string) (*analysis.Result, error) {
	res, err := parser.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load analysis %s: %w", filepath.Base(path), err)
	}
	logger.Debug("analysis loaded",
		zap.String("analysis_id", res.ID),
		zap.Int("rows", res.DatasetInfo.Rows),
		zap.Int("columns", len(res.ColumnStats)),
		zap.Int("visualizations", len(res.Visualizations)),
	)
	return res, nil
}

// generateInsights runs the insight provider and records the outcome in the
// run manifest under <report dir>/<analysis id>/.
func generateInsights(ctx context.Context, w io.Writer, c *cfgpkg.Global, f *runFlags, res *analysis.Result, source string) (*project.Manifest, error) {
	bc := backendConfig(c, f.provider, f.model)
	provider, err := ai.NewInsightProvider(bc, ai.WithLogger(logger))
	if err != nil {
		return nil, explainError(err, bc)
	}
	m, err := loadOrNewManifest(filepath.Join(reportDir(c, f.out), res.ID), res.ID, source)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "Generating insights with %s (%s)...\n", provider.Provider(), provider.Model())
	gen, err := provider.Generate(ctx, &res.Bundle)
	if err != nil {
		return nil, explainError(err, bc)
	}
	m.RecordGeneration(gen)
	if err := m.Save(); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}

	if gen.Degraded {
		fmt.Fprintln(w, color.YellowString("⚠ Model reply was not valid JSON; sections were recovered heuristically."))
	}
	if gen.RequestID != "" {
		fmt.Fprintf(w, "Request ID: %s\n", gen.RequestID)
	}
	fmt.Fprintf(w, "Tokens: %d prompt + %d completion", gen.Usage.PromptTokens, gen.Usage.CompletionTokens)
	if m.EstimatedCostUSD > 0 {
		fmt.Fprintf(w, " (≈ $%.4f)", m.EstimatedCostUSD)
	}
	fmt.Fprintln(w)
	return m, nil
}

// loadOrNewManifest starts a manifest only when none exists yet; an
// unreadable one is an error rather than something to overwrite.
func loadOrNewManifest(dir, analysisID, source string) (*project.Manifest, error) {
	m, err := project.LoadManifest(dir)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return project.NewManifest(dir, analysisID, source), nil
}

// renderReports renders the manifest's insights and records the artifacts.
func renderReports(ctx context.Context, w io.Writer, m *project.Manifest, res *analysis.Result, formats []report.Format) error {
	r, err := report.NewRenderer(filepath.Dir(m.RootDir()), res.ID, report.WithLogger(logger))
	if err != nil {
		return err
	}
	rendered, err := r.RenderAll(ctx, report.Input{
		Bundle:         &res.Bundle,
		Insights:       m.Insights,
		Visualizations: res.Visualizations,
	}, formats...)
	if len(rendered) > 0 {
		m.RecordArtifacts(rendered)
		if serr := m.Save(); serr != nil && err == nil {
			err = fmt.Errorf("save manifest: %w", serr)
		}
	}
	for _, a := range rendered {
		fmt.Fprintf(w, "%s %s report: %s\n", color.GreenString("✓"), strings.ToUpper(string(a.Format)), a.Path)
	}
	if err != nil {
		var re *report.RenderError
		if errors.As(err, &re) {
			return fmt.Errorf("rendering the %s report failed: %w", re.Format, err)
		}
		return err
	}
	return nil
}

// explainError adds user-facing hints for common failure classes.
func explainError(err error, bc ai.BackendConfig) error {
	var (
		cfgErr  *ai.ConfigurationError
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	switch {
	case errors.As(err, &cfgErr):
		if strings.HasSuffix(cfgErr.Field, "_api_key") {
			return fmt.Errorf("missing credentials: set %s or run 'autoinsight config set %s <key>': %w",
				strings.ToUpper(cfgErr.Field), cfgErr.Field, err)
		}
		return fmt.Errorf("invalid configuration (providers: %s): %w", strings.Join(ai.Providers(), ", "), err)
	case errors.As(err, &unreach):
		return fmt.Errorf("endpoint unreachable. Check your network and %s_base_url: %w", bc.Provider, err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: check %s_api_key: %w", bc.Provider, err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		return fmt.Errorf("model not found (%s). See 'autoinsight models' for known models: %w", bc.Model, err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try reducing max_tokens: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	case errors.Is(err, ai.ErrInvalidJSON):
		return fmt.Errorf("model reply was not valid JSON: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("interrupted: %w", err)
	default:
		return fmt.Errorf("insight generation failed: %w", err)
	}
}
