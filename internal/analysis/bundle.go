package analysis

import (
	"errors"
	"fmt"
)

// Bundle is the read-only result of an upstream statistical analysis.
// Field names follow the analysis service's JSON output.
type Bundle struct {
	DatasetInfo  DatasetInfo     `json:"dataset_info" yaml:"dataset_info"`
	ColumnStats  []ColumnStat    `json:"column_stats" yaml:"column_stats"`
	Correlations *Correlations   `json:"correlations,omitempty" yaml:"correlations,omitempty"`
	Outliers     []OutlierReport `json:"outliers" yaml:"outliers"`
	Clustering   *Clustering     `json:"clustering,omitempty" yaml:"clustering,omitempty"`
	DataQuality  DataQuality     `json:"data_quality" yaml:"data_quality"`
}

// DatasetInfo describes the shape of the analysed table.
type DatasetInfo struct {
	Rows    int `json:"rows" yaml:"rows"`
	Columns int `json:"columns" yaml:"columns"`
	// MemoryUsage is a preformatted footprint such as "1.24 MB".
	MemoryUsage string `json:"memory_usage" yaml:"memory_usage"`
}

// ColumnStat profiles one column. Stats is nil when the upstream
// analysis produced no per-type statistics.
type ColumnStat struct {
	Name           string       `json:"name" yaml:"name"`
	DType          string       `json:"dtype" yaml:"dtype"`
	NullPercentage float64      `json:"null_percentage" yaml:"null_percentage"`
	UniqueCount    int          `json:"unique_count" yaml:"unique_count"`
	Stats          *ColumnStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// ColumnStats holds either numeric moments (Mean set) or a categorical Mode.
type ColumnStats struct {
	Mean     *float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std      float64  `json:"std,omitempty" yaml:"std,omitempty"`
	Min      float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max      float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Skewness float64  `json:"skewness,omitempty" yaml:"skewness,omitempty"`
	Mode     any      `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// NumericStats builds numeric column statistics.
func NumericStats(mean, std, lo, hi, skewness float64) *ColumnStats {
	return &ColumnStats{Mean: &mean, Std: std, Min: lo, Max: hi, Skewness: skewness}
}

// CategoricalStats builds categorical column statistics.
func CategoricalStats(mode string) *ColumnStats {
	return &ColumnStats{Mode: mode}
}

// IsNumeric reports whether numeric moments are available.
func (s *ColumnStats) IsNumeric() bool { return s != nil && s.Mean != nil }

// IsCategorical reports whether only a mode is available.
func (s *ColumnStats) IsCategorical() bool { return s != nil && s.Mean == nil && s.Mode != nil }

// Correlations wraps the list of strongly correlated column pairs.
type Correlations struct {
	HighCorrelations []CorrelationPair `json:"high_correlations" yaml:"high_correlations"`
}

type CorrelationPair struct {
	Column1     string  `json:"column1" yaml:"column1"`
	Column2     string  `json:"column2" yaml:"column2"`
	Correlation float64 `json:"correlation" yaml:"correlation"`
	Strength    string  `json:"strength" yaml:"strength"`
}

type OutlierReport struct {
	Column            string  `json:"column" yaml:"column"`
	OutlierCount      int     `json:"outlier_count" yaml:"outlier_count"`
	OutlierPercentage float64 `json:"outlier_percentage" yaml:"outlier_percentage"`
}

// Clustering summarises an upstream clustering run. ClusterSizes is keyed
// by cluster label.
type Clustering struct {
	NClusters       int            `json:"n_clusters" yaml:"n_clusters"`
	SilhouetteScore float64        `json:"silhouette_score" yaml:"silhouette_score"`
	ClusterSizes    map[string]int `json:"cluster_sizes" yaml:"cluster_sizes"`
}

// DataQuality carries the six headline quality metrics shown in every report.
type DataQuality struct {
	TotalRows              int     `json:"total_rows" yaml:"total_rows"`
	TotalColumns           int     `json:"total_columns" yaml:"total_columns"`
	MissingCells           int     `json:"missing_cells" yaml:"missing_cells"`
	CompletenessPercentage float64 `json:"completeness_percentage" yaml:"completeness_percentage"`
	DuplicateRows          int     `json:"duplicate_rows" yaml:"duplicate_rows"`
	MemoryUsageMB          float64 `json:"memory_usage_mb" yaml:"memory_usage_mb"`
}

// HasCorrelations reports whether at least one high correlation is present.
func (b *Bundle) HasCorrelations() bool {
	return b.Correlations != nil && len(b.Correlations.HighCorrelations) > 0
}

// ErrInvalidBundle is wrapped by every Validate failure.
var ErrInvalidBundle = errors.New("invalid analysis bundle")

// Validate checks the invariants the upstream analysis guarantees:
// percentages lie in [0,100] and counts are non-negative.
func (b *Bundle) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", ErrInvalidBundle)
	}
	if b.DatasetInfo.Rows < 0 || b.DatasetInfo.Columns < 0 {
		return fmt.Errorf("%w: negative dataset shape", ErrInvalidBundle)
	}
	q := b.DataQuality
	if !isPercentage(q.CompletenessPercentage) {
		return fmt.Errorf("%w: completeness_percentage %.2f out of range", ErrInvalidBundle, q.CompletenessPercentage)
	}
	if q.TotalRows < 0 || q.TotalColumns < 0 || q.MissingCells < 0 || q.DuplicateRows < 0 || q.MemoryUsageMB < 0 {
		return fmt.Errorf("%w: negative data quality metric", ErrInvalidBundle)
	}
	for _, c := range b.ColumnStats {
		if !isPercentage(c.NullPercentage) {
			return fmt.Errorf("%w: column %q null_percentage %.2f out of range", ErrInvalidBundle, c.Name, c.NullPercentage)
		}
		if c.UniqueCount < 0 {
			return fmt.Errorf("%w: column %q negative unique_count", ErrInvalidBundle, c.Name)
		}
	}
	for _, o := range b.Outliers {
		if !isPercentage(o.OutlierPercentage) {
			return fmt.Errorf("%w: outliers for %q percentage %.2f out of range", ErrInvalidBundle, o.Column, o.OutlierPercentage)
		}
		if o.OutlierCount < 0 {
			return fmt.Errorf("%w: outliers for %q negative count", ErrInvalidBundle, o.Column)
		}
	}
	return nil
}

func isPercentage(v float64) bool { return v >= 0 && v <= 100 }

// VisualizationType distinguishes embeddable images from linked dashboards.
type VisualizationType string

const (
	VisualizationImage       VisualizationType = "png"
	VisualizationInteractive VisualizationType = "html"
)

// Visualization references a chart rendered by the visualization layer.
type Visualization struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Path        string            `json:"path" yaml:"path"`
	Type        VisualizationType `json:"type" yaml:"type"`
}

// Result is an analysis file: the bundle plus its identifier and charts.
type Result struct {
	ID             string `json:"analysis_id" yaml:"analysis_id"`
	Bundle         `yaml:",inline"`
	Visualizations []Visualization `json:"visualizations" yaml:"visualizations"`
}
