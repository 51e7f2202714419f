package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureBundle(columns, correlations int) *Bundle {
	b := &Bundle{
		DatasetInfo: DatasetInfo{Rows: 12500, Columns: columns, MemoryUsage: "1.24 MB"},
		DataQuality: DataQuality{
			TotalRows:              12500,
			TotalColumns:           columns,
			MissingCells:           1532,
			CompletenessPercentage: 98.774,
			DuplicateRows:          17,
			MemoryUsageMB:          1.2391,
		},
	}
	for i := 0; i < columns; i++ {
		cs := ColumnStat{Name: fmt.Sprintf("col_%02d", i), DType: "float64", NullPercentage: 1.25, UniqueCount: 1000 + i}
		if i%2 == 0 {
			cs.Stats = NumericStats(10.5, 2.25, 1, 99.999, 0.333)
		} else {
			cs.DType = "object"
			cs.Stats = CategoricalStats("north")
		}
		b.ColumnStats = append(b.ColumnStats, cs)
	}
	if correlations > 0 {
		b.Correlations = &Correlations{}
		for i := 0; i < correlations; i++ {
			b.Correlations.HighCorrelations = append(b.Correlations.HighCorrelations, CorrelationPair{
				Column1:     fmt.Sprintf("a%d", i),
				Column2:     fmt.Sprintf("b%d", i),
				Correlation: 0.9 - float64(i)*0.01,
				Strength:    "strong",
			})
		}
	}
	return b
}

func TestSummarizeOverview(t *testing.T) {
	got := Summarize(fixtureBundle(2, 0))

	require.True(t, strings.HasPrefix(got, "# Dataset Analysis Summary\n\n## Dataset Overview\n"))
	assert.Contains(t, got, "- Rows: 12,500\n")
	assert.Contains(t, got, "- Columns: 2\n")
	assert.Contains(t, got, "- Total Size: 1.24 MB\n")
	assert.Contains(t, got, "- Data Completeness: 98.8%\n")
	assert.Contains(t, got, "- Duplicate Rows: 17\n")
	assert.Contains(t, got, "### col_00 (float64)\n- Missing: 1.2%\n- Unique values: 1000\n- Mean: 10.50, Std: 2.25\n- Range: [1.00, 100.00]\n- Skewness: 0.33")
	assert.Contains(t, got, "### col_01 (object)\n- Missing: 1.2%\n- Unique values: 1001\n- Mode: north")
}

func TestSummarizeCapsColumnsAtTen(t *testing.T) {
	got := Summarize(fixtureBundle(14, 0))

	assert.Equal(t, MaxDigestColumns, strings.Count(got, "\n### "))
	for i := 0; i < 10; i++ {
		assert.Contains(t, got, fmt.Sprintf("### col_%02d ", i))
	}
	for i := 10; i < 14; i++ {
		assert.NotContains(t, got, fmt.Sprintf("col_%02d", i))
	}
	// input order is preserved
	assert.Less(t, strings.Index(got, "col_03"), strings.Index(got, "col_04"))
}

func TestSummarizeKeepsFirstFiveCorrelationsInOrder(t *testing.T) {
	b := fixtureBundle(1, 8)
	// weakest first: the digest must not re-sort
	b.Correlations.HighCorrelations[0].Correlation = 0.71
	got := Summarize(b)

	require.Contains(t, got, "## High Correlations Found\n")
	lines := []string{}
	for _, l := range strings.Split(got, "\n") {
		if strings.Contains(l, "↔") {
			lines = append(lines, l)
		}
	}
	require.Len(t, lines, MaxDigestCorrelations)
	assert.Equal(t, "- a0 ↔ b0: 0.710 (strong)", lines[0])
	assert.Equal(t, "- a1 ↔ b1: 0.890 (strong)", lines[1])
	assert.Equal(t, "- a4 ↔ b4: 0.860 (strong)", lines[4])
	assert.NotContains(t, got, "a5 ↔")
}

func TestSummarizeOutliersAndClustering(t *testing.T) {
	b := fixtureBundle(1, 0)
	for i := 0; i < 7; i++ {
		b.Outliers = append(b.Outliers, OutlierReport{Column: fmt.Sprintf("o%d", i), OutlierCount: 10 * i, OutlierPercentage: 0.44})
	}
	b.Clustering = &Clustering{NClusters: 3, SilhouetteScore: 0.41234, ClusterSizes: map[string]int{"10": 1, "2": 40, "0": 120}}
	got := Summarize(b)

	assert.Contains(t, got, "## Outlier Detection\n- o0: 0 outliers (0.4%)\n")
	assert.Contains(t, got, "- o4: 40 outliers (0.4%)")
	assert.NotContains(t, got, "- o5:")
	assert.Contains(t, got, "## Clustering Analysis\n- Number of clusters: 3\n- Silhouette score: 0.412\n- Cluster sizes: {0: 120, 2: 40, 10: 1}")
}

func TestSummarizeOmitsAbsentSections(t *testing.T) {
	b := fixtureBundle(3, 0)
	b.Correlations = &Correlations{}
	got := Summarize(b)

	assert.NotContains(t, got, "High Correlations")
	assert.NotContains(t, got, "Outlier Detection")
	assert.NotContains(t, got, "Clustering Analysis")
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestSummarizeColumnWithoutStats(t *testing.T) {
	b := fixtureBundle(0, 0)
	b.ColumnStats = []ColumnStat{{Name: "id", DType: "int64", UniqueCount: 5}}
	got := Summarize(b)

	assert.Contains(t, got, "### id (int64)\n- Missing: 0.0%\n- Unique values: 5")
	assert.NotContains(t, got, "Mean:")
	assert.NotContains(t, got, "Mode:")
}
