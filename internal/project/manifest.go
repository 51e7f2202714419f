package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/ai"
	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/KaramelBytes/autoinsight/internal/report"
	"github.com/KaramelBytes/autoinsight/internal/utils"
	"github.com/google/uuid"
)

const manifestFileName = "manifest.json"

// Manifest records one pipeline run for an analysis: which backend produced
// the insights, the insights themselves, and the rendered artifacts.
type Manifest struct {
	RunID            string             `json:"run_id"`
	AnalysisID       string             `json:"analysis_id"`
	Source           string             `json:"source,omitempty"`
	Provider         string             `json:"provider,omitempty"`
	Model            string             `json:"model,omitempty"`
	RequestID        string             `json:"request_id,omitempty"`
	Usage            ai.Usage           `json:"usage"`
	EstimatedCostUSD float64            `json:"estimated_cost_usd,omitempty"`
	FallbackParse    bool               `json:"fallback_parse"`
	Insights         []analysis.Insight `json:"insights"`
	Artifacts        []report.Rendered  `json:"artifacts"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

// NewManifest constructs an in-memory manifest. Call Save() to persist.
func NewManifest(rootDir, analysisID, source string) *Manifest {
	now := time.Now()
	return &Manifest{
		RunID:      uuid.NewString(),
		AnalysisID: analysisID,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
		rootDir:    rootDir,
	}
}

// LoadManifest loads manifest.json from the provided directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the on-disk run directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, manifestFileName), data)
}

// RecordGeneration stores the outcome of an insight generation call,
// replacing any earlier insights and the artifacts rendered from them.
func (m *Manifest) RecordGeneration(res *ai.GenerationResult) {
	if res == nil {
		return
	}
	m.Provider = res.Provider
	m.Model = res.Model
	m.RequestID = res.RequestID
	m.Usage = res.Usage
	m.FallbackParse = res.Degraded
	m.EstimatedCostUSD, _ = ai.EstimateCostUSD(res.Model, res.Usage.PromptTokens, res.Usage.CompletionTokens)
	m.SetInsights(res.Insights)
}

// SetInsights replaces the stored insights. Artifacts are dropped since they
// were rendered from the previous set.
func (m *Manifest) SetInsights(insights []analysis.Insight) {
	m.Insights = append([]analysis.Insight(nil), insights...)
	m.Artifacts = nil
	m.UpdatedAt = time.Now()
}

// RecordArtifacts merges rendered artifacts, one entry per format.
func (m *Manifest) RecordArtifacts(rendered []report.Rendered) {
	for _, r := range rendered {
		replaced := false
		for i := range m.Artifacts {
			if m.Artifacts[i].Format == r.Format {
				m.Artifacts[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			m.Artifacts = append(m.Artifacts, r)
		}
	}
	sort.SliceStable(m.Artifacts, func(i, j int) bool {
		return formatRank(m.Artifacts[i].Format) < formatRank(m.Artifacts[j].Format)
	})
	m.UpdatedAt = time.Now()
}

func formatRank(f report.Format) int {
	for i, known := range report.Formats {
		if f == known {
			return i
		}
	}
	return len(report.Formats)
}

// ListManifests loads every run manifest found one level below reportDir,
// most recently updated first. Directories without a manifest are skipped.
func ListManifests(reportDir string) ([]*Manifest, error) {
	entries, err := os.ReadDir(reportDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report dir: %w", err)
	}
	var out []*Manifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := LoadManifest(filepath.Join(reportDir, e.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
