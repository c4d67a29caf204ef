package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	raw := `{
		"is_political_violence": true,
		"confidence": 0.85,
		"reasoning": "Clash between party activists with injuries",
		"key_indicators": ["clash", "injured"]
	}`

	c, err := parseClassification(raw)
	require.NoError(t, err)
	assert.True(t, c.IsPoliticalViolence)
	assert.Equal(t, 0.85, c.Confidence)
	assert.Equal(t, []string{"clash", "injured"}, c.KeyIndicators)
}

func TestParseClassificationStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"is_political_violence\": false, \"confidence\": 0.2, \"reasoning\": \"Sports story\"}\n```"

	c, err := parseClassification(raw)
	require.NoError(t, err)
	assert.False(t, c.IsPoliticalViolence)
}

func TestParseClassificationRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "the article is about violence"},
		{"missing verdict", `{"confidence": 0.5, "reasoning": "x"}`},
		{"missing confidence", `{"is_political_violence": true, "reasoning": "x"}`},
		{"missing reasoning", `{"is_political_violence": true, "confidence": 0.5}`},
		{"confidence above one", `{"is_political_violence": true, "confidence": 1.5, "reasoning": "x"}`},
		{"wrong verdict type", `{"is_political_violence": "yes", "confidence": 0.5, "reasoning": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseClassification(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseExtraction(t *testing.T) {
	raw := `{
		"locations": [
			{
				"extracted_text": "Dhaka",
				"normalized_name": "Dhaka, Bangladesh",
				"confidence": 0.95,
				"context": "clashes erupted in Dhaka",
				"coordinates": {"lat": 23.8103, "lng": 90.4125}
			},
			{
				"extracted_text": "Press Club",
				"confidence": 0.6,
				"coordinates": {"lat": null, "lng": null}
			}
		]
	}`

	e, err := parseExtraction(raw)
	require.NoError(t, err)
	require.Len(t, e.Locations, 2)

	first := e.Locations[0]
	assert.Equal(t, "Dhaka", first.Name)
	require.NotNil(t, first.Latitude)
	assert.Equal(t, 23.8103, *first.Latitude)

	second := e.Locations[1]
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Longitude)
}

func TestParseExtractionEmptyIsValid(t *testing.T) {
	e, err := parseExtraction(`{"locations": []}`)
	require.NoError(t, err)
	assert.Empty(t, e.Locations)
}

func TestParseExtractionRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing array", `{"summary": "no locations"}`},
		{"missing name", `{"locations": [{"confidence": 0.5}]}`},
		{"missing confidence", `{"locations": [{"extracted_text": "Dhaka"}]}`},
		{"half coordinates", `{"locations": [{"extracted_text": "Dhaka", "confidence": 0.5, "coordinates": {"lat": 23.8}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseExtraction(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestBucket(t *testing.T) {
	assert.Equal(t, "high", Bucket(0.7))
	assert.Equal(t, "high", Bucket(0.95))
	assert.Equal(t, "medium", Bucket(0.4))
	assert.Equal(t, "medium", Bucket(0.69))
	assert.Equal(t, "low", Bucket(0.39))
	assert.Equal(t, "low", Bucket(0))
}

func TestWKTPoint(t *testing.T) {
	lat, lng := 23.8103, 90.4125
	got := wktPoint(&lat, &lng)
	require.NotNil(t, got)
	assert.Equal(t, "POINT(90.4125 23.8103)", *got)

	assert.Nil(t, wktPoint(nil, &lng))
	assert.Nil(t, wktPoint(&lat, nil))
}
