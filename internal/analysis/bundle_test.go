package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsOutOfRangePercentages(t *testing.T) {
	cases := map[string]func(b *Bundle){
		"completeness": func(b *Bundle) { b.DataQuality.CompletenessPercentage = 100.01 },
		"null pct":     func(b *Bundle) { b.ColumnStats[0].NullPercentage = -1 },
		"outlier pct":  func(b *Bundle) { b.Outliers = []OutlierReport{{Column: "x", OutlierPercentage: 101}} },
		"negative":     func(b *Bundle) { b.DataQuality.DuplicateRows = -3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			b := fixtureBundle(2, 1)
			require.NoError(t, b.Validate())
			mutate(b)
			assert.ErrorIs(t, b.Validate(), ErrInvalidBundle)
		})
	}
}

func TestResultDecodesFlatAnalysisFile(t *testing.T) {
	raw := `{
	  "analysis_id": "a-1",
	  "dataset_info": {"rows": 10, "columns": 2, "memory_usage": "1 KB"},
	  "column_stats": [
	    {"name": "price", "dtype": "float64", "null_percentage": 0, "unique_count": 9,
	     "stats": {"mean": 4.5, "std": 1, "min": 0, "max": 9, "skewness": 0}},
	    {"name": "city", "dtype": "object", "null_percentage": 10, "unique_count": 3, "stats": {"mode": "Oslo"}}
	  ],
	  "outliers": [],
	  "data_quality": {"total_rows": 10, "total_columns": 2, "missing_cells": 1,
	    "completeness_percentage": 95, "duplicate_rows": 0, "memory_usage_mb": 0.001},
	  "visualizations": [{"name": "Hist", "description": "d", "path": "/tmp/h.png", "type": "png"}]
	}`
	var r Result
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "a-1", r.ID)
	assert.Equal(t, 10, r.DatasetInfo.Rows)
	require.Len(t, r.ColumnStats, 2)
	assert.True(t, r.ColumnStats[0].Stats.IsNumeric())
	assert.Equal(t, 0.0, r.ColumnStats[0].Stats.Skewness)
	assert.True(t, r.ColumnStats[1].Stats.IsCategorical())
	assert.Nil(t, r.Correlations)
	assert.Nil(t, r.Clustering)
	require.Len(t, r.Visualizations, 1)
	assert.Equal(t, VisualizationImage, r.Visualizations[0].Type)
}

func TestOrderedUsesReportOrderAndFirstOccurrence(t *testing.T) {
	in := []Insight{
		{Section: SectionTechnicalNotes, Content: "notes"},
		{Section: SectionExecutiveSummary, Content: "summary"},
		{Section: "Appendix", Content: "ignored"},
		{Section: SectionExecutiveSummary, Content: "duplicate"},
		{Section: SectionPatterns, Content: "patterns"},
	}
	got := Ordered(in)

	require.Len(t, got, 3)
	assert.Equal(t, SectionExecutiveSummary, got[0].Section)
	assert.Equal(t, "summary", got[0].Content)
	assert.Equal(t, SectionPatterns, got[1].Section)
	assert.Equal(t, SectionTechnicalNotes, got[2].Section)

	_, ok := Find(in, SectionRecommendations)
	assert.False(t, ok)
}
