package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/laytimelab/sof-extractor/internal/sof"
)

// mockMessager implements Messager and records the params of each call.
type mockMessager struct {
	response *anthropic.Message
	err      error
	params   []anthropic.MessageNewParams
}

func (m *mockMessager) New(_ context.Context, params anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.params = append(m.params, params)
	return m.response, m.err
}

func newMockMessage(text string) *anthropic.Message {
	return &anthropic.Message{
		Content: []anthropic.ContentBlockUnion{
			{Type: "text", Text: text},
		},
	}
}

func testDocument() sof.Document {
	return sof.Document{
		Role:      sof.RoleMaster,
		Name:      "mv-example-sof.pdf",
		Reference: "Vessel: MV Example, Port: Rotterdam",
		Pages: []sof.Page{
			{Number: 1, Text: "NOR tendered 0900"},
			{Number: 2, Text: "All fast 1430", ImagePNG: []byte{0x89, 0x50, 0x4e, 0x47}},
		},
	}
}

func TestExtractBuildsBatchMessage(t *testing.T) {
	mock := &mockMessager{response: newMockMessage(`{"data":[]}`)}
	ex := NewAnthropicExtractor(mock, "")

	doc := testDocument()
	raw, err := ex.Extract(context.Background(), sof.Batch{Index: 0, Pages: doc.Pages}, doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if raw != `{"data":[]}` {
		t.Fatalf("unexpected raw response: %q", raw)
	}
	if len(mock.params) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.params))
	}

	p := mock.params[0]
	if p.Model != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("model=%s", p.Model)
	}
	if len(p.System) != 1 || !strings.Contains(p.System[0].Text, "Statement of Facts") {
		t.Errorf("system prompt missing or wrong: %+v", p.System)
	}
	if len(p.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(p.Messages))
	}
	// Preamble, two text pages, one image.
	blocks := p.Messages[0].Content
	if len(blocks) != 4 {
		t.Fatalf("expected 4 content blocks, got %d", len(blocks))
	}
	preamble := blocks[0].OfText.Text
	if !strings.Contains(preamble, `"mv-example-sof.pdf"`) || !strings.Contains(preamble, "pages 1-2") {
		t.Errorf("preamble missing document context: %q", preamble)
	}
	if !strings.Contains(preamble, "MV Example") {
		t.Errorf("preamble missing reference context: %q", preamble)
	}
	if !strings.Contains(blocks[1].OfText.Text, "--- page 1 ---") {
		t.Errorf("page header missing: %q", blocks[1].OfText.Text)
	}
	if blocks[3].OfImage == nil {
		t.Errorf("image block missing: %+v", blocks[3])
	}
}

func TestExtractCustomModel(t *testing.T) {
	mock := &mockMessager{response: newMockMessage(`{"data":[]}`)}
	ex := NewAnthropicExtractor(mock, "claude-opus-4-20250514")
	doc := testDocument()
	if _, err := ex.Extract(context.Background(), sof.Batch{Pages: doc.Pages[:1]}, doc); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := mock.params[0].Model; got != anthropic.Model("claude-opus-4-20250514") {
		t.Errorf("model=%s", got)
	}
}

func TestExtractWrapsTransportError(t *testing.T) {
	mock := &mockMessager{err: errors.New("status code: 429, rate limited")}
	ex := NewAnthropicExtractor(mock, "")
	doc := testDocument()
	_, err := ex.Extract(context.Background(), sof.Batch{Pages: doc.Pages[:1]}, doc)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestNewAnthropicExtractorFromEnvModel(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	ex, err := NewAnthropicExtractorFromEnv("claude-3-5-haiku-latest")
	if err != nil {
		t.Fatalf("NewAnthropicExtractorFromEnv: %v", err)
	}
	if ex.model != anthropic.Model("claude-3-5-haiku-latest") {
		t.Fatalf("configured model not kept: %s", ex.model)
	}
}

func TestNewAnthropicExtractorFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicExtractorFromEnv(""); err == nil {
		t.Fatalf("expected error without API key")
	}
}

func TestClassifyTransportError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want failureClass
	}{
		{"deadline", context.DeadlineExceeded, failureTimeout},
		{"typed 429", &anthropic.Error{StatusCode: 429}, failureRateLimit},
		{"typed 400", &anthropic.Error{StatusCode: 400}, failureClient},
		{"typed 529", &anthropic.Error{StatusCode: 529}, failureServer},
		{"wrapped typed 429", fmt.Errorf("call: %w", &anthropic.Error{StatusCode: 429}), failureRateLimit},
		{"untyped 429", errors.New("status code: 429, too many requests"), failureRateLimit},
		{"untyped 400", errors.New("status code: 400, invalid request"), failureClient},
		{"untyped reset", errors.New("connection reset by peer"), failureServer},
	}
	for _, tc := range cases {
		if got := classifyTransportError(tc.err); got != tc.want {
			t.Errorf("%s: classifyTransportError = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPageRange(t *testing.T) {
	doc := testDocument()
	if got := pageRange(sof.Batch{Pages: doc.Pages[:1]}); got != "1" {
		t.Errorf("single page range: %q", got)
	}
	if got := pageRange(sof.Batch{Pages: doc.Pages}); got != "1-2" {
		t.Errorf("multi page range: %q", got)
	}
	if got := pageRange(sof.Batch{}); got != "-" {
		t.Errorf("empty range: %q", got)
	}
}
