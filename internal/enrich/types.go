// Package enrich runs AI analysis over stored articles: political violence
// classification and location extraction. Providers share one interface so
// the rest of the package never cares which vendor answered.
package enrich

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Input is the article material handed to a provider.
type Input struct {
	ArticleID   int64
	Title       string
	Content     string
	SourceName  string
	PublishedAt time.Time
}

// Classification is a provider's verdict on one article.
type Classification struct {
	IsPoliticalViolence bool
	Confidence          float64
	Reasoning           string
	KeyIndicators       []string
	ModelVersion        string
	ProcessingTime      time.Duration
}

// Location is one place mentioned in an article. Latitude and Longitude are
// nil when the model could not geocode the mention.
type Location struct {
	Name           string
	NormalizedName string
	Latitude       *float64
	Longitude      *float64
	Confidence     float64
	Context        string
}

// Extraction is the complete location output for one article.
type Extraction struct {
	Locations      []Location
	ModelVersion   string
	ProcessingTime time.Duration
}

// ClassificationError wraps a per-article classification failure so batch
// runs can report which articles were skipped.
type ClassificationError struct {
	ArticleID int64
	Provider  string
	Err       error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying article %d via %s: %v", e.ArticleID, e.Provider, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// ExtractionError is the location counterpart of ClassificationError.
type ExtractionError struct {
	ArticleID int64
	Provider  string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting locations for article %d via %s: %v", e.ArticleID, e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Bucket maps a numeric confidence score onto the stored tier.
func Bucket(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

// cleanJSONResponse strips markdown fences and surrounding prose that models
// sometimes wrap around their JSON output.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

// parseClassification validates the model's JSON strictly: the required
// fields must be present with the right types and confidence must be a
// probability. Anything else fails the article rather than storing junk.
func parseClassification(raw string) (*Classification, error) {
	var parsed struct {
		IsPoliticalViolence *bool    `json:"is_political_violence"`
		Confidence          *float64 `json:"confidence"`
		Reasoning           *string  `json:"reasoning"`
		KeyIndicators       []string `json:"key_indicators"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid AI response format: %w", err)
	}
	if parsed.IsPoliticalViolence == nil {
		return nil, fmt.Errorf("classification missing is_political_violence")
	}
	if parsed.Confidence == nil {
		return nil, fmt.Errorf("classification missing confidence")
	}
	if *parsed.Confidence < 0 || *parsed.Confidence > 1 {
		return nil, fmt.Errorf("classification confidence %v out of range", *parsed.Confidence)
	}
	if parsed.Reasoning == nil {
		return nil, fmt.Errorf("classification missing reasoning")
	}

	return &Classification{
		IsPoliticalViolence: *parsed.IsPoliticalViolence,
		Confidence:          *parsed.Confidence,
		Reasoning:           *parsed.Reasoning,
		KeyIndicators:       parsed.KeyIndicators,
	}, nil
}

// parseExtraction validates the location JSON. Each location needs a name
// and an in-range confidence; coordinates are optional but must arrive as a
// complete pair. An empty locations array is a valid answer.
func parseExtraction(raw string) (*Extraction, error) {
	var parsed struct {
		Locations *[]struct {
			ExtractedText  *string  `json:"extracted_text"`
			NormalizedName string   `json:"normalized_name"`
			Confidence     *float64 `json:"confidence"`
			Context        string   `json:"context"`
			Coordinates    *struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"coordinates"`
		} `json:"locations"`
	}
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("invalid AI response format: %w", err)
	}
	if parsed.Locations == nil {
		return nil, fmt.Errorf("location response missing locations array")
	}

	out := &Extraction{}
	for i, loc := range *parsed.Locations {
		if loc.ExtractedText == nil || strings.TrimSpace(*loc.ExtractedText) == "" {
			return nil, fmt.Errorf("location %d missing extracted_text", i)
		}
		if loc.Confidence == nil {
			return nil, fmt.Errorf("location %q missing confidence", *loc.ExtractedText)
		}
		if *loc.Confidence < 0 || *loc.Confidence > 1 {
			return nil, fmt.Errorf("location %q confidence %v out of range", *loc.ExtractedText, *loc.Confidence)
		}

		l := Location{
			Name:           strings.TrimSpace(*loc.ExtractedText),
			NormalizedName: loc.NormalizedName,
			Confidence:     *loc.Confidence,
			Context:        loc.Context,
		}
		if loc.Coordinates != nil {
			if (loc.Coordinates.Lat == nil) != (loc.Coordinates.Lng == nil) {
				return nil, fmt.Errorf("location %q has incomplete coordinates", *loc.ExtractedText)
			}
			l.Latitude = loc.Coordinates.Lat
			l.Longitude = loc.Coordinates.Lng
		}
		out.Locations = append(out.Locations, l)
	}
	return out, nil
}
