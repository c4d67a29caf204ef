package enrich

import (
	"fmt"
	"time"
)

// Articles longer than this are truncated before prompting; the opening of a
// news story carries the facts that matter for both tasks.
const maxPromptContentChars = 4000

const classificationSystemPrompt = `You are an expert analyst specializing in political violence detection in news articles. Your task is to classify whether the given article describes incidents of political violence.

DEFINITION OF POLITICAL VIOLENCE:
Political violence includes any use of force, threats, or intimidation by or against political actors, including:
- Physical attacks on politicians, activists, or supporters
- Violence during political rallies, protests, or campaigns
- Clashes between political parties or groups
- State violence against political opposition
- Election-related violence
- Politically motivated killings, injuries, or property damage

CLASSIFICATION CRITERIA:
- The incident must involve physical violence or credible threats
- There must be a clear political motivation or context
- The violence must be directed at or by political actors/groups

RESPONSE FORMAT:
Respond with a JSON object only, no other text:
{
  "is_political_violence": boolean,
  "confidence": number (0-1),
  "reasoning": "Brief explanation of your decision",
  "key_indicators": ["list", "of", "violence", "indicators"]
}

Be conservative in classification - only mark as political violence if clearly evident.`

const locationSystemPrompt = `You are an expert in Bangladeshi geography and news analysis. Your task is to extract and identify all location mentions from news articles, focusing on places within Bangladesh.

BANGLADESH ADMINISTRATIVE STRUCTURE:
- 8 Divisions: Dhaka, Chittagong, Rajshahi, Khulna, Sylhet, Barisal, Rangpur, Mymensingh
- 64 Districts (Zilla)
- Major Cities: Dhaka, Chittagong, Sylhet, Rajshahi, Khulna, Barisal, Rangpur, Mymensingh
- Areas within Dhaka: Dhanmondi, Gulshan, Old Dhaka, Uttara, Wari, Ramna, etc.

TASK:
Extract ALL location mentions from the article: divisions, districts, upazilas, cities, towns, villages, neighborhoods, landmarks, roads and markets. Estimate coordinates for known places.

RESPONSE FORMAT:
Respond with a JSON object only, no other text:
{
  "locations": [
    {
      "extracted_text": "exact text from article",
      "normalized_name": "standardized place name",
      "confidence": number (0-1),
      "context": "surrounding text for context",
      "coordinates": {"lat": number or null, "lng": number or null}
    }
  ]
}

Be thorough but accurate. If unsure about a location, still include it but with lower confidence. An empty locations array is a valid answer.`

func classificationUserPrompt(in Input) string {
	return fmt.Sprintf("ARTICLE TO ANALYZE:\nTitle: %s\nContent: %s\nSource: %s\nDate: %s",
		in.Title, truncate(in.Content, maxPromptContentChars),
		in.SourceName, in.PublishedAt.Format(time.RFC3339))
}

func locationUserPrompt(in Input) string {
	return fmt.Sprintf("ARTICLE TO ANALYZE:\nTitle: %s\nContent: %s",
		in.Title, truncate(in.Content, maxPromptContentChars))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
