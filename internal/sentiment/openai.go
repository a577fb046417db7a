package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const scoreInstructions = `You analyze workplace chat messages for sentiment.
Score the message on a scale from -1.0 (very negative) to 1.0 (very positive),
where 0.0 is neutral. Consider workplace context: "deadline" or "blocked" lean
negative, "shipped" or "fixed" lean positive, routine status updates are
neutral. Respond with the structured JSON only.`

type scoreResponse struct {
	SentimentScore float64 `json:"sentiment_score" jsonschema:"required" jsonschema_description:"Sentiment from -1.0 to 1.0"`
	Confidence     float64 `json:"confidence" jsonschema:"required" jsonschema_description:"Confidence from 0.0 to 1.0"`
	Category       string  `json:"category" jsonschema:"required" jsonschema_description:"One of very_negative, negative, neutral, positive, very_positive"`
	Reasoning      string  `json:"reasoning" jsonschema:"required" jsonschema_description:"One sentence explaining the score"`
}

var scoreSchema = generateSchema[scoreResponse]()

// OpenAIScorer scores message text with an OpenAI model using structured
// JSON output. It is the primary scorer when OPENAI_API_KEY is set.
type OpenAIScorer struct {
	client *openai.Client
	model  string
}

func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client: &client,
		model:  model,
	}
}

func (s *OpenAIScorer) Name() string {
	return "openai"
}

func (s *OpenAIScorer) ScoreText(ctx context.Context, text string) (float64, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "MessageSentiment",
			Schema:      scoreSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Message sentiment JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(300),
		Instructions:    openai.String(scoreInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := callWithRetry(ctx, s.client, params)
	if err != nil {
		return 0, err
	}

	var out scoreResponse
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return 0, fmt.Errorf("unmarshal sentiment response: %w", err)
	}
	return Clamp(out.SentimentScore), nil
}

func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second}
	serverErrorWaitTimes := []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					select {
					case <-time.After(rateLimitWaitTimes[attempt]):
						continue
					case <-ctx.Done():
						return nil, ctx.Err()
					}
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					select {
					case <-time.After(serverErrorWaitTimes[attempt]):
						continue
					case <-ctx.Done():
						return nil, ctx.Err()
					}
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	m["additionalProperties"] = false
	return m
}
