package ai

import "fmt"

// analystPersona is sent as the system prompt.
const analystPersona = "You are a professional data analyst expert at interpreting statistical data."

const insightPromptTemplate = `You are a senior data analyst. Analyze the following dataset statistics and provide professional insights.

%s

Provide a comprehensive analysis in the following sections:

1. EXECUTIVE SUMMARY: Brief overview of the dataset and key findings (2-3 paragraphs)
2. DATA QUALITY ASSESSMENT: Evaluate completeness, anomalies, and data integrity
3. KEY PATTERNS & TRENDS: Highlight important statistical patterns, correlations, and distributions
4. ACTIONABLE RECOMMENDATIONS: Provide specific, actionable insights for business decisions
5. TECHNICAL NOTES: Any technical considerations or limitations

Write in a professional, business-ready tone. Be specific and reference actual numbers from the data.
Format your response as JSON with this structure:
{
    "executive_summary": "...",
    "data_quality": "...",
    "patterns": "...",
    "recommendations": "...",
    "technical_notes": "..."
}`

// BuildPrompt wraps a bundle digest in the fixed insight instructions.
func BuildPrompt(digest string) string {
	return fmt.Sprintf(insightPromptTemplate, digest)
}
