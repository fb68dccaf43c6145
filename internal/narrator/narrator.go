package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/marcosalmeida/siteauditor/internal/telemetry"
)

const requestTimeout = 30 * time.Second

const groqBaseURL = "https://api.groq.com/openai/v1"
const openAIBaseURL = "https://api.openai.com/v1"
const defaultGroqModel = "llama-3.1-8b-instant"
const defaultOpenAIModel = "gpt-4o-mini"

// Narrator requests the seven-sentence executive summary from a
// Groq- or OpenAI-compatible chat endpoint.
type Narrator struct {
	client   *openai.Client
	model    string
	recorder *telemetry.Recorder
}

// New builds a Narrator from an API key. The base URL and default
// model are chosen by the key's prefix: "gsk_" routes to Groq,
// anything else to OpenAI. An explicit model override, when
// non-empty, always wins.
func New(apiKey, modelOverride string, recorder *telemetry.Recorder) *Narrator {
	baseURL := openAIBaseURL
	model := defaultOpenAIModel
	if strings.HasPrefix(apiKey, "gsk_") {
		baseURL = groqBaseURL
		model = defaultGroqModel
	}
	if modelOverride != "" {
		model = modelOverride
	}
	return NewWithBaseURL(apiKey, model, baseURL, recorder)
}

// NewWithBaseURL builds a Narrator against an explicit base URL,
// bypassing the key-prefix detection in New. Tests use this to point
// the client at a local server; production code should use New.
func NewWithBaseURL(apiKey, model, baseURL string, recorder *telemetry.Recorder) *Narrator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if model == "" {
		model = defaultOpenAIModel
	}
	return &Narrator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		recorder: recorder,
	}
}

// Narrate produces one Portuguese sentence per key in SectionKeys. Any
// failure to obtain a well-shaped JSON completion surfaces as
// *UnavailableError; an individual blank sentence after sanitization
// falls back to a rule-based one instead of failing the whole call.
func (n *Narrator) Narrate(ctx context.Context, sections map[string]SectionInput) (map[string]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	payload, err := buildPayload(sections)
	if err != nil {
		return nil, n.unavailable("failed to build payload: " + err.Error())
	}

	resp, err := n.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       n.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		return nil, n.unavailable("chat completion request failed: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return nil, n.unavailable("chat completion returned no choices")
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return nil, n.unavailable("failed to parse completion JSON: " + err.Error())
	}

	for _, key := range SectionKeys {
		if _, ok := raw[key]; !ok {
			return nil, n.unavailable(fmt.Sprintf("completion missing key %q", key))
		}
	}

	out := make(map[string]string, len(SectionKeys))
	for _, key := range SectionKeys {
		sentence := sanitize(raw[key])
		if sentence == "" {
			sentence = fallbackSentence(key, sections[key].Status)
		}
		out[key] = sentence
	}
	return out, nil
}

// Fallback builds a pure rule-based narration from each section's
// status, without calling the LLM.
func Fallback(sections map[string]SectionInput) map[string]string {
	out := make(map[string]string, len(SectionKeys))
	for _, key := range SectionKeys {
		out[key] = fallbackSentence(key, sections[key].Status)
	}
	return out
}

func (n *Narrator) unavailable(reason string) *UnavailableError {
	n.recorder.RecordError("narrator", "Narrate", telemetry.CauseLLMUnavailable, reason)
	return &UnavailableError{Reason: reason}
}

const systemPrompt = "You are an assistant that summarizes a website audit report. " +
	"Respond with a strict JSON object with exactly these keys: overall, seo, a11y, content, performance, indexacao, erros_criticos. " +
	"Each value must be a single Portuguese sentence ending with a period, with no URLs, no HTML tags, no numbers, and no bullet points."

func buildPayload(sections map[string]SectionInput) (string, error) {
	ordered := make(map[string]SectionInput, len(SectionKeys))
	for _, key := range SectionKeys {
		ordered[key] = sections[key]
	}
	b, err := json.Marshal(ordered)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
