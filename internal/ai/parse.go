package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
)

// insightKey binds a JSON key of the structured reply to its section and
// the confidence the strict path assigns.
type insightKey struct {
	key        string
	section    analysis.Section
	confidence analysis.Confidence
}

var insightKeys = []insightKey{
	{"executive_summary", analysis.SectionExecutiveSummary, analysis.ConfidenceHigh},
	{"data_quality", analysis.SectionDataQuality, analysis.ConfidenceHigh},
	{"patterns", analysis.SectionPatterns, analysis.ConfidenceMedium},
	{"recommendations", analysis.SectionRecommendations, analysis.ConfidenceHigh},
	{"technical_notes", analysis.SectionTechnicalNotes, analysis.ConfidenceMedium},
}

// parseStrict decodes a JSON object reply into exactly one insight per
// section. Missing keys yield empty content.
func parseStrict(text string) ([]analysis.Insight, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrInvalidJSON)
	}
	out := make([]analysis.Insight, 0, len(insightKeys))
	for _, k := range insightKeys {
		out = append(out, analysis.Insight{
			Section:    k.section,
			Content:    flatten(payload[k.key]),
			Confidence: k.confidence,
		})
	}
	return out, nil
}

// flatten renders a JSON value as section text. Lists become one item per line.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			if s := flatten(item); s != "" {
				items = append(items, s)
			}
		}
		return strings.Join(items, "\n")
	case map[string]any:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// stripCodeFence unwraps a reply wrapped in a Markdown code fence.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// parseFallback recovers sections from free text. A line naming a section
// (by heading, or heading with underscores) starts that section; following
// non-empty lines are space-joined into it. Every recovered section has
// medium confidence and empty sections are dropped.
func parseFallback(text string) []analysis.Insight {
	acc := make(map[analysis.Section]*strings.Builder, len(analysis.Sections))
	var current analysis.Section
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s, ok := matchHeader(line); ok {
			current = s
			continue
		}
		if current == "" {
			continue
		}
		b, ok := acc[current]
		if !ok {
			b = &strings.Builder{}
			acc[current] = b
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}

	out := make([]analysis.Insight, 0, len(acc))
	for _, s := range analysis.Sections {
		b, ok := acc[s]
		if !ok {
			continue
		}
		content := strings.TrimSpace(b.String())
		if content == "" {
			continue
		}
		out = append(out, analysis.Insight{Section: s, Content: content, Confidence: analysis.ConfidenceMedium})
	}
	return out
}

func matchHeader(line string) (analysis.Section, bool) {
	upper := strings.ToUpper(line)
	for _, s := range analysis.Sections {
		name := strings.ToUpper(string(s))
		if strings.Contains(upper, name) || strings.Contains(upper, strings.ReplaceAll(name, " ", "_")) {
			return s, true
		}
	}
	return "", false
}
