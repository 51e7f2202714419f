package analysis

// Section names one narrative section of a report. The value is the
// display heading used in every rendered format.
type Section string

const (
	SectionExecutiveSummary Section = "Executive Summary"
	SectionDataQuality      Section = "Data Quality Assessment"
	SectionPatterns         Section = "Key Patterns & Trends"
	SectionRecommendations  Section = "Actionable Recommendations"
	SectionTechnicalNotes   Section = "Technical Notes"
)

// Sections lists every section in report order.
var Sections = []Section{
	SectionExecutiveSummary,
	SectionDataQuality,
	SectionPatterns,
	SectionRecommendations,
	SectionTechnicalNotes,
}

// Confidence is the qualitative certainty attached to an insight.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Insight is one section of generated narrative.
type Insight struct {
	Section    Section    `json:"section" yaml:"section"`
	Content    string     `json:"content" yaml:"content"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// Ordered returns the insights arranged in report order, keeping the first
// insight seen for each known section. Unknown sections are dropped.
func Ordered(insights []Insight) []Insight {
	bySection := make(map[Section]Insight, len(insights))
	for _, in := range insights {
		if _, seen := bySection[in.Section]; !seen {
			bySection[in.Section] = in
		}
	}
	out := make([]Insight, 0, len(bySection))
	for _, s := range Sections {
		if in, ok := bySection[s]; ok {
			out = append(out, in)
		}
	}
	return out
}

// Find returns the insight for a section, if present.
func Find(insights []Insight, s Section) (Insight, bool) {
	for _, in := range insights {
		if in.Section == s {
			return in, true
		}
	}
	return Insight{}, false
}
