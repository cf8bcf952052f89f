// Package extraction drives the batched model calls that turn SOF pages into
// structured events and composes them with parsing, scheduling and date
// normalization into the document pipeline.
package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// TransportError wraps a failure to complete the inference call itself, as
// opposed to a malformed response. Both are retried at the batch level.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("extraction transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client performs one inference call per batch and returns the model's raw
// textual output. All structural validation happens downstream in the parser.
type Client interface {
	Extract(ctx context.Context, batch sof.Batch, doc sof.Document) (string, error)
}

// Messager is the slice of the anthropic client the extractor needs, kept
// narrow so tests can stand in for the API.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicExtractor implements Client on the Anthropic messages API, sending
// each batch's page text and page images together with the document-wide
// reference so the model keeps vessel and port context between batches.
type AnthropicExtractor struct {
	messages  Messager
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicExtractor(messages Messager, model string) *AnthropicExtractor {
	m := anthropic.ModelClaudeSonnet4_20250514
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicExtractor{messages: messages, model: m, maxTokens: 8192}
}

func NewAnthropicExtractorFromEnv(model string) (*AnthropicExtractor, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicExtractor(&c.Messages, model), nil
}

func (a *AnthropicExtractor) Extract(ctx context.Context, batch sof.Batch, doc sof.Document) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(batchPreamble(batch, doc)),
	}
	for _, p := range batch.Pages {
		if strings.TrimSpace(p.Text) != "" {
			blocks = append(blocks, anthropic.NewTextBlock(fmt.Sprintf("--- page %d ---\n%s", p.Number, p.Text)))
		}
		if len(p.ImagePNG) > 0 {
			blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(p.ImagePNG)))
		}
	}

	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.TextBlockParam{{Text: extractionSystemPrompt}},
		Messages:    []anthropic.MessageParam{{Role: anthropic.MessageParamRoleUser, Content: blocks}},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", &TransportError{Err: err}
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}

// failureClass buckets transport errors for diagnostics.
type failureClass string

const (
	failureTimeout   failureClass = "timeout"
	failureRateLimit failureClass = "rate_limit"
	failureServer    failureClass = "server"
	failureClient    failureClass = "client"
)

func classifyTransportError(err error) failureClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return failureRateLimit
		case apierr.StatusCode >= 500:
			return failureServer
		case apierr.StatusCode >= 400:
			return failureClient
		}
	}
	// Fallback for errors that never carried a typed status.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}
