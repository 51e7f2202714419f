package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxReportColumns caps the column statistics section.
const MaxReportColumns = 10

const timestampLayout = "2006-01-02 15:04:05"

// document is the format-neutral content of a report. Both renderers read
// only from it, so every value shown in either format is formatted once.
type document struct {
	AnalysisID   string
	Generated    string
	DatasetShape string
	Completeness string
	Sections     []sectionBlock
	Quality      []metricRow
	Columns      []columnBlock
	Images       []visualBlock
	Dashboards   []visualBlock

	generatedAt time.Time
}

type sectionBlock struct {
	Section    analysis.Section
	Title      string
	Confidence string
	// Paragraphs holds the lines of each paragraph.
	Paragraphs [][]string
}

type metricRow struct {
	Metric string
	Value  string
}

type columnBlock struct {
	Heading string
	Summary string
	Detail  string
}

type visualBlock struct {
	Name        string
	Description string
	Source      string
	Href        string
}

var printer = message.NewPrinter(language.English)

func formatCount(n int) string { return printer.Sprintf("%d", n) }

func buildDocument(id string, generated time.Time, in Input) document {
	b := in.Bundle
	q := b.DataQuality
	doc := document{
		AnalysisID:   id,
		Generated:    generated.Format(timestampLayout),
		DatasetShape: fmt.Sprintf("%s rows × %d columns", formatCount(b.DatasetInfo.Rows), b.DatasetInfo.Columns),
		Completeness: fmt.Sprintf("%.1f%%", q.CompletenessPercentage),
		Quality:      qualityRows(q),
		generatedAt:  generated,
	}
	for _, ins := range analysis.Ordered(in.Insights) {
		doc.Sections = append(doc.Sections, sectionBlock{
			Section:    ins.Section,
			Title:      string(ins.Section),
			Confidence: string(ins.Confidence),
			Paragraphs: paragraphs(ins.Content),
		})
	}
	for i, c := range b.ColumnStats {
		if i == MaxReportColumns {
			break
		}
		col := columnBlock{
			Heading: fmt.Sprintf("%s (%s)", c.Name, c.DType),
			Summary: fmt.Sprintf("Missing: %.1f%% | Unique: %s", c.NullPercentage, formatCount(c.UniqueCount)),
		}
		if s := c.Stats; s.IsNumeric() {
			col.Detail = fmt.Sprintf("Mean: %.2f, Std: %.2f, Range: [%.2f, %.2f]", *s.Mean, s.Std, s.Min, s.Max)
		}
		doc.Columns = append(doc.Columns, col)
	}
	for _, v := range in.Visualizations {
		vb := visualBlock{
			Name:        v.Name,
			Description: v.Description,
			Source:      v.Path,
			Href:        "visualizations/" + filepath.Base(v.Path),
		}
		switch v.Type {
		case analysis.VisualizationImage:
			doc.Images = append(doc.Images, vb)
		case analysis.VisualizationInteractive:
			doc.Dashboards = append(doc.Dashboards, vb)
		}
	}
	return doc
}

// qualityRows formats the six data quality metrics shared by both formats.
func qualityRows(q analysis.DataQuality) []metricRow {
	return []metricRow{
		{"Total Rows", formatCount(q.TotalRows)},
		{"Total Columns", fmt.Sprintf("%d", q.TotalColumns)},
		{"Missing Cells", formatCount(q.MissingCells)},
		{"Completeness", fmt.Sprintf("%.2f%%", q.CompletenessPercentage)},
		{"Duplicate Rows", formatCount(q.DuplicateRows)},
		{"Memory Usage", fmt.Sprintf("%.2f MB", q.MemoryUsageMB)},
	}
}

// paragraphs splits content on blank lines, then each paragraph into lines.
// Blank paragraphs are dropped.
func paragraphs(content string) [][]string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out [][]string
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines := strings.Split(p, "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		out = append(out, lines)
	}
	return out
}
