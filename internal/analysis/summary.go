package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Digest caps. They cut on input order; callers pre-sort when ranking matters.
const (
	MaxDigestColumns      = 10
	MaxDigestCorrelations = 5
	MaxDigestOutliers     = 5
)

var printer = message.NewPrinter(language.English)

// Summarize renders a bounded, fixed-order text digest of the bundle for
// use as LLM context. Absent optional sections are omitted entirely.
func Summarize(b *Bundle) string {
	var sb strings.Builder

	sb.WriteString("# Dataset Analysis Summary\n\n")
	sb.WriteString("## Dataset Overview\n")
	fmt.Fprintf(&sb, "- Rows: %s\n", printer.Sprintf("%d", b.DatasetInfo.Rows))
	fmt.Fprintf(&sb, "- Columns: %d\n", b.DatasetInfo.Columns)
	fmt.Fprintf(&sb, "- Total Size: %s\n", b.DatasetInfo.MemoryUsage)
	fmt.Fprintf(&sb, "- Data Completeness: %.1f%%\n", b.DataQuality.CompletenessPercentage)
	fmt.Fprintf(&sb, "- Duplicate Rows: %d\n", b.DataQuality.DuplicateRows)

	sb.WriteString("\n\n## Key Column Statistics\n")
	for _, c := range head(b.ColumnStats, MaxDigestColumns) {
		fmt.Fprintf(&sb, "\n### %s (%s)\n", c.Name, c.DType)
		fmt.Fprintf(&sb, "- Missing: %.1f%%\n", c.NullPercentage)
		fmt.Fprintf(&sb, "- Unique values: %d\n", c.UniqueCount)
		switch {
		case c.Stats.IsNumeric():
			s := c.Stats
			fmt.Fprintf(&sb, "- Mean: %.2f, Std: %.2f\n", *s.Mean, s.Std)
			fmt.Fprintf(&sb, "- Range: [%.2f, %.2f]\n", s.Min, s.Max)
			fmt.Fprintf(&sb, "- Skewness: %.2f\n", s.Skewness)
		case c.Stats.IsCategorical():
			fmt.Fprintf(&sb, "- Mode: %v\n", c.Stats.Mode)
		}
	}

	if b.HasCorrelations() {
		sb.WriteString("\n## High Correlations Found\n")
		for _, p := range head(b.Correlations.HighCorrelations, MaxDigestCorrelations) {
			fmt.Fprintf(&sb, "- %s ↔ %s: %.3f (%s)\n", p.Column1, p.Column2, p.Correlation, p.Strength)
		}
	}

	if len(b.Outliers) > 0 {
		sb.WriteString("\n## Outlier Detection\n")
		for _, o := range head(b.Outliers, MaxDigestOutliers) {
			fmt.Fprintf(&sb, "- %s: %d outliers (%.1f%%)\n", o.Column, o.OutlierCount, o.OutlierPercentage)
		}
	}

	if b.Clustering != nil {
		cl := b.Clustering
		sb.WriteString("\n## Clustering Analysis\n")
		fmt.Fprintf(&sb, "- Number of clusters: %d\n", cl.NClusters)
		fmt.Fprintf(&sb, "- Silhouette score: %.3f\n", cl.SilhouetteScore)
		fmt.Fprintf(&sb, "- Cluster sizes: %s\n", formatClusterSizes(cl.ClusterSizes))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// formatClusterSizes prints sizes as {label: size, ...}. Integer labels sort
// numerically, everything else lexically after them.
func formatClusterSizes(sizes map[string]int) string {
	labels := make([]string, 0, len(sizes))
	for k := range sizes {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		a, aErr := strconv.Atoi(labels[i])
		b, bErr := strconv.Atoi(labels[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return labels[i] < labels[j]
	})
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s: %d", l, sizes[l])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
