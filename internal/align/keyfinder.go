package align

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

const keyFinderSystemPrompt = `You match rows of a maritime Statement of Facts event table to a fixed ` +
	`vocabulary of canonical port-call milestones. Respond with strict JSON only: an object whose keys are ` +
	`canonical milestone identifiers and whose values are the matching 1-indexed row number, or null when ` +
	`the milestone does not appear. Never invent milestone identifiers.`

// Messager is the slice of the anthropic client the key finder needs.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicKeyFinder implements KeyFinder with one model call per table.
type AnthropicKeyFinder struct {
	messages Messager
	model    anthropic.Model
}

func NewAnthropicKeyFinder(messages Messager, model string) *AnthropicKeyFinder {
	m := anthropic.ModelClaudeSonnet4_20250514
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicKeyFinder{messages: messages, model: m}
}

func NewAnthropicKeyFinderFromEnv(model string) (*AnthropicKeyFinder, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicKeyFinder(&c.Messages, model), nil
}

func (f *AnthropicKeyFinder) FindKeys(ctx context.Context, table []TableRow) (map[sof.CanonicalKey]*int, error) {
	prompt, err := buildKeyFinderPrompt(table)
	if err != nil {
		return nil, err
	}
	resp, err := f.messages.New(ctx, anthropic.MessageNewParams{
		Model:       f.model,
		MaxTokens:   2048,
		System:      []anthropic.TextBlockParam{{Text: keyFinderSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("key finder call: %w", err)
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return ParseKeyFinderResponse(sb.String())
}

func buildKeyFinderPrompt(table []TableRow) (string, error) {
	rows, err := json.Marshal(table)
	if err != nil {
		return "", fmt.Errorf("marshal table: %w", err)
	}
	keys := make([]string, 0, len(sof.Vocabulary()))
	for _, k := range sof.Vocabulary() {
		keys = append(keys, string(k))
	}
	return fmt.Sprintf("Canonical milestones: %s\n\nEvent table rows:\n%s\n\n"+
		"Return one JSON object mapping every canonical milestone to a row number or null.",
		strings.Join(keys, ", "), rows), nil
}

// ParseKeyFinderResponse decodes the model's mapping, tolerating a code
// fence but nothing else: a response that is not a flat object of row
// numbers is an AlignmentError. Identifiers outside the vocabulary are
// dropped rather than minted into keys.
func ParseKeyFinderResponse(raw string) (map[sof.CanonicalKey]*int, error) {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		if parts := strings.SplitN(clean, "\n", 2); len(parts) == 2 {
			clean = parts[1]
		}
		clean = strings.TrimSpace(strings.TrimSuffix(clean, "```"))
	}

	var decoded map[string]*int
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return nil, &AlignmentError{Err: fmt.Errorf("decode key map: %w", err)}
	}
	out := make(map[sof.CanonicalKey]*int, len(decoded))
	for k, v := range decoded {
		key := sof.CanonicalKey(k)
		if !sof.IsCanonical(key) {
			continue
		}
		if v != nil && *v < 1 {
			return nil, &AlignmentError{Err: fmt.Errorf("row number %d for %s out of range", *v, k)}
		}
		out[key] = v
	}
	return out, nil
}
