package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"example.com/snapfit/internal/domain"
)

// classifierInstruction teaches the model the action catalogue and the exact
// JSON contract. The response MIME type is pinned to JSON so the reply can be
// unmarshalled directly into domain.Action.
const classifierInstruction = `You classify fitness-app user messages into exactly one action.

Respond with a single JSON object:
{
  "kind": one of "workout","food","habit","personal_record","timer","recipe","navigate","info","unknown",
  "confidence": number between 0 and 1,
  "confirmation_message": short question asking the user to confirm the action,
  ...exactly one payload field matching the kind:
  "habit": {"habit_type": "water"|"meditation"|"sleep"|"steps", "amount": number},
  "personal_record": {"exercise_name": string, "max_weight": number, "max_reps": integer, "unit": "lbs"|"kg"},
  "workout": {"workout_type": string, "duration": number, "duration_unit": "minutes"|"hours", "notes": string},
  "food": {"food_name": string, "meal_type": "breakfast"|"lunch"|"dinner"|"snack", "calories": integer, "protein": number},
  "timer": {"seconds": integer, "label": string},
  "navigate": {"target": url path string},
  "info": {"topic": "motivation"|"progress"|"suggestion", "category": string, "message": string}
}

Use kind "unknown" with confidence 0 when the message is not a fitness request.
For "recipe" requests set kind "recipe" and a "navigate" payload targeting /recipes.
Do not wrap the JSON in markdown fences.`

// GeminiClassifier classifies text with the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier builds a classifier for the given API key and model.
func NewGeminiClassifier(ctx context.Context, apiKey, model string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClassifier{client: client, model: model}, nil
}

// Classify sends the utterance to Gemini and parses the JSON reply.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (domain.Action, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(classifierInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return domain.Action{}, fmt.Errorf("gemini generate: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return domain.Action{}, fmt.Errorf("gemini returned empty response")
	}

	var action domain.Action
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return domain.Action{}, fmt.Errorf("decode gemini response: %w", err)
	}
	return action, nil
}
