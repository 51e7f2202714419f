package project_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/ai"
	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/KaramelBytes/autoinsight/internal/project"
	"github.com/KaramelBytes/autoinsight/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGeneration() *ai.GenerationResult {
	return &ai.GenerationResult{
		Insights: []analysis.Insight{
			{Section: analysis.SectionExecutiveSummary, Content: "Stable.", Confidence: analysis.ConfidenceHigh},
		},
		Provider:  ai.ProviderAnthropic,
		Model:     "claude-sonnet-4-20250514",
		Usage:     ai.Usage{PromptTokens: 1000, CompletionTokens: 1000, TotalTokens: 2000},
		RequestID: "req_1",
		Degraded:  true,
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	m := project.NewManifest(dir, "abc123", "/data/analysis.json")
	m.RecordGeneration(sampleGeneration())
	require.NoError(t, m.Save())

	got, err := project.LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, "abc123", got.AnalysisID)
	assert.Equal(t, dir, got.RootDir())
	assert.True(t, got.FallbackParse)
	assert.Equal(t, "req_1", got.RequestID)
	require.Len(t, got.Insights, 1)
	assert.Equal(t, "Stable.", got.Insights[0].Content)
	// 1K input at 0.003 + 1K output at 0.015
	assert.InDelta(t, 0.018, got.EstimatedCostUSD, 1e-9)
}

func TestRecordArtifactsReplacesPerFormat(t *testing.T) {
	m := project.NewManifest(t.TempDir(), "x", "")
	m.RecordArtifacts([]report.Rendered{{Format: report.FormatHTML, Path: "a.html"}})
	m.RecordArtifacts([]report.Rendered{
		{Format: report.FormatPDF, Path: "b.pdf"},
		{Format: report.FormatHTML, Path: "b.html"},
	})
	assert.Equal(t, []report.Rendered{
		{Format: report.FormatPDF, Path: "b.pdf"},
		{Format: report.FormatHTML, Path: "b.html"},
	}, m.Artifacts)
}

func TestNewInsightsDropStaleArtifacts(t *testing.T) {
	m := project.NewManifest(t.TempDir(), "x", "")
	m.RecordArtifacts([]report.Rendered{{Format: report.FormatPDF, Path: "old.pdf"}})

	m.RecordGeneration(sampleGeneration())
	assert.Empty(t, m.Artifacts)

	m.RecordArtifacts([]report.Rendered{{Format: report.FormatHTML, Path: "new.html"}})
	m.SetInsights([]analysis.Insight{{Section: analysis.SectionTechnicalNotes, Content: "edited"}})
	assert.Empty(t, m.Artifacts)
	require.Len(t, m.Insights, 1)
	assert.Equal(t, "edited", m.Insights[0].Content)
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := project.LoadManifest(t.TempDir())
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadManifestCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644))

	_, err := project.LoadManifest(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestListManifests(t *testing.T) {
	root := t.TempDir()
	older := project.NewManifest(filepath.Join(root, "older"), "older", "")
	require.NoError(t, older.Save())
	time.Sleep(10 * time.Millisecond)
	newer := project.NewManifest(filepath.Join(root, "newer"), "newer", "")
	require.NoError(t, newer.Save())
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

	list, err := project.ListManifests(root)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].AnalysisID)
	assert.Equal(t, "older", list[1].AnalysisID)

	list, err = project.ListManifests(filepath.Join(root, "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, list)
}
