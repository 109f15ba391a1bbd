package summarize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/sitegist/sitegist/internal/model"
)

// keyPointsPrompt asks for strictly structured JSON so the response can be
// validated against a schema instead of scraped out of free-form bullet
// lists.
const keyPointsPrompt = `You are an expert business analyst. Extract key business insights from the following website content.

Analyze the content for:
- Product features, benefits, and value propositions
- Target market and customer segments
- Revenue models and monetization strategies
- Market size, growth potential, and competitive landscape
- Technical capabilities and architecture
- Business model and go-to-market strategy
- Key metrics, KPIs, and performance indicators
- Imagery, media, and visual branding the content describes

Return your analysis as a valid JSON object with the following structure:
{
  "product_market_fit": ["key point 1", "key point 2"],
  "visual_content": ["key point 1", "key point 2"],
  "monetization": ["key point 1", "key point 2"],
  "data_analytics": ["key point 1", "key point 2"],
  "competitive_landscape": ["key point 1", "key point 2"],
  "business_model": ["key point 1", "key point 2"],
  "technical_insights": ["key point 1", "key point 2"]
}

Omit categories with no findings. Ensure the response is valid JSON with no additional text before or after.`

// errNoJSONObject means the response contained no JSON object at all.
var errNoJSONObject = errors.New("no JSON object found")

// parseKeyPoints validates a key points response against the category
// schema and flattens it into model.KeyPoint values in canonical category
// order. Categories outside the schema are ignored; the prompt asks the
// model to omit them.
func parseKeyPoints(response string) ([]model.KeyPoint, error) {
	object, err := extractJSONObject(response)
	if err != nil {
		return nil, err
	}

	payload, err := decodeObject(response, object)
	if err != nil {
		return nil, err
	}

	var points []model.KeyPoint
	for _, category := range model.AllCategories() {
		raw, ok := payload[string(category)]
		if !ok {
			continue
		}

		texts, err := decodePointList(raw)
		if err != nil {
			return nil, &SchemaError{Category: string(category), Err: err}
		}

		for _, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			points = append(points, model.KeyPoint{Category: category, Text: text})
		}
	}

	return points, nil
}

// extractJSONObject cuts the outermost JSON object out of a response that
// may carry prose before or after it.
func extractJSONObject(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end <= start {
		return "", &ParseError{Response: response, Err: errNoJSONObject}
	}
	return response[start : end+1], nil
}

// decodeObject unmarshals the object, running it through jsonrepair once
// when the first decode fails. Models reliably produce almost-JSON with
// trailing commas or unquoted keys; repair recovers those.
func decodeObject(response, object string) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	err := json.Unmarshal([]byte(object), &payload)
	if err == nil {
		return payload, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(object)
	if repairErr != nil {
		return nil, &ParseError{Response: response, Err: err}
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return nil, &ParseError{Response: response, Repaired: repaired, Err: err}
	}
	return payload, nil
}

// decodePointList decodes one category's value. Lists of strings are the
// schema; a bare string is tolerated as a single-entry list.
func decodePointList(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	return nil, fmt.Errorf("expected a list of strings, got %s", truncateBody(raw))
}
