package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/docreview/internal/model"
	"github.com/sells-group/docreview/internal/resilience"
	"github.com/sells-group/docreview/pkg/anthropic"
)

// maxDocumentChars bounds how much document text is sent per request.
const maxDocumentChars = 50000

// defaultAnswerConfidence is assumed when the model returns a value but
// omits or zeroes its self-reported confidence.
const defaultAnswerConfidence = 0.9

const extractionSystemText = "You are a document analyst extracting structured data from legal and business documents. Output strictly a single JSON object, no markdown fences."

const extractionPrompt = `Extract the following field from the document.

Field: %s
Type: %s
Description: %s
%s
Document:
%s

Instructions:
1. Find the best value for the field in the document.
2. If the field is not present, use null for the value.
3. For DATE, CURRENCY, ENTITY and BOOLEAN fields, extract the exact value; be concise.
4. For TEXT and FREEFORM fields, answer in one or two complete sentences.
5. Report your confidence between 0.0 and 1.0.

Return a JSON object:
{"value": "<extracted value or null>", "raw_text": "<verbatim supporting excerpt>", "confidence": 0.9}`

// PrimaryStrategy extracts fields through one semantic-inference request
// per (document, field) pair. Calls are rate limited, time limited, retried
// on transient failures, and guarded by a shared circuit breaker.
type PrimaryStrategy struct {
	client   anthropic.Client
	model    string
	limiter  *rate.Limiter
	breaker  *resilience.CircuitBreaker
	retryCfg resilience.RetryConfig
	timeout  time.Duration
}

// PrimaryConfig configures the primary strategy.
type PrimaryConfig struct {
	Model           string
	RequestsPerSec  float64
	Burst           int
	Timeout         time.Duration
	RetryConfig     resilience.RetryConfig
	BreakerFailures int
	BreakerReset    time.Duration
}

// NewPrimaryStrategy creates the semantic-inference strategy.
func NewPrimaryStrategy(client anthropic.Client, cfg PrimaryConfig) *PrimaryStrategy {
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &PrimaryStrategy{
		client:   client,
		model:    cfg.Model,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		breaker:  resilience.NewCircuitBreaker(cfg.BreakerFailures, cfg.BreakerReset),
		retryCfg: cfg.RetryConfig,
		timeout:  cfg.Timeout,
	}
}

func (s *PrimaryStrategy) Name() model.Method {
	return model.MethodPrimary
}

// Extract issues one inference request for the field. A transient backend
// failure, an open breaker, or an unparseable response all map to
// ErrUnavailable so the orchestrator can fall back; they are never fatal.
func (s *PrimaryStrategy) Extract(ctx context.Context, doc *model.Document, field *model.FieldDefinition) (*RawExtraction, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt := buildPrompt(doc, field)
	req := anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    extractionSystemText,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	}

	resp, err := resilience.ExecuteVal(ctx, s.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, s.retryCfg, "extract "+field.Name, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return s.client.CreateMessage(callCtx, req)
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.L().Warn("primary extraction unavailable",
			zap.String("document", doc.ID),
			zap.String("field", field.Name),
			zap.Error(err),
		)
		return nil, ErrUnavailable
	}

	resp.Usage.LogUsage(s.model, "extract")

	raw, err := parseExtractionResponse(resp.Text())
	if err != nil {
		zap.L().Warn("primary extraction returned malformed response",
			zap.String("document", doc.ID),
			zap.String("field", field.Name),
			zap.Error(err),
		)
		return nil, ErrUnavailable
	}
	return raw, nil
}

func buildPrompt(doc *model.Document, field *model.FieldDefinition) string {
	text := doc.Text
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	examples := ""
	if len(field.Examples) > 0 {
		examples = "Examples: " + strings.Join(field.Examples, "; ") + "\n"
	}
	description := field.Description
	if description == "" {
		description = field.DisplayName
	}
	return fmt.Sprintf(extractionPrompt, field.Name, field.FieldType, description, examples, text)
}

// parseExtractionResponse parses the model's JSON answer. A missing value
// or a noise placeholder yields a not-found RawExtraction rather than an
// error; undecodable JSON is an error.
func parseExtractionResponse(text string) (*RawExtraction, error) {
	var payload struct {
		Value      any             `json:"value"`
		RawText    string          `json:"raw_text"`
		Confidence json.RawMessage `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		return nil, err
	}

	value := stringifyValue(payload.Value)
	if value == "" || isNoise(value) {
		return &RawExtraction{}, nil
	}

	confidence := parseConfidence(payload.Confidence)
	if confidence < 0.1 {
		confidence = defaultAnswerConfidence
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	return &RawExtraction{
		Value:      strings.TrimSpace(value),
		RawText:    strings.TrimSpace(payload.RawText),
		Confidence: confidence,
	}, nil
}

// cleanJSON strips markdown fences and surrounding prose so the first JSON
// object in the response can be decoded.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := stringifyValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func parseConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}
