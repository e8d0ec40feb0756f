package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"stock-advisor/internal/models"
	"stock-advisor/internal/rag"
)

func newTestOrchestrator(docs []models.KnowledgeDocument) *Orchestrator {
	registry := newTestRegistry()
	router := NewRouter(zerolog.Nop())
	retriever := rag.New(docs, zerolog.Nop())
	return NewOrchestrator(router, registry, retriever, NewMockClient(), zerolog.Nop())
}

func knowledgeDocs() []models.KnowledgeDocument {
	return []models.KnowledgeDocument{
		{
			Title:    "MACD指标详解",
			Content:  "MACD指标由DIF快线和DEA慢线组成，金叉代表买入信号。",
			Keywords: []string{"MACD", "金叉"},
		},
	}
}

func TestQueryToolRoute(t *testing.T) {
	o := newTestOrchestrator(knowledgeDocs())

	answer := o.Query(context.Background(), "比亚迪现在多少钱")
	if answer.Route != RouteTool {
		t.Errorf("route = %q, want %q", answer.Route, RouteTool)
	}
	if answer.Tool != ToolGetPrice {
		t.Errorf("tool = %q, want %q", answer.Tool, ToolGetPrice)
	}
	// The mock echoes the grounding report, so the tool output must surface.
	if !strings.Contains(answer.Text, "最新行情") {
		t.Errorf("answer should carry the price report: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "投资有风险") {
		t.Errorf("answer should carry the risk disclaimer: %q", answer.Text)
	}
}

func TestQueryKnowledgeRoute(t *testing.T) {
	o := newTestOrchestrator(knowledgeDocs())

	answer := o.Query(context.Background(), "什么是MACD指标")
	if answer.Route != RouteKnowledge {
		t.Errorf("route = %q, want %q", answer.Route, RouteKnowledge)
	}
	if answer.Tool != "" {
		t.Errorf("tool = %q, want empty", answer.Tool)
	}
	if !strings.Contains(answer.Text, "MACD") {
		t.Errorf("answer should mention MACD: %q", answer.Text)
	}
}

func TestQueryKnowledgeMissShortCircuits(t *testing.T) {
	o := newTestOrchestrator(nil)

	answer := o.Query(context.Background(), "什么是夏普比率")
	if answer.Route != RouteKnowledge {
		t.Errorf("route = %q, want %q", answer.Route, RouteKnowledge)
	}
	if answer.Text != noKnowledgeMessage {
		t.Errorf("answer = %q, want the fixed no-knowledge reply", answer.Text)
	}
}

func TestQueryUnknownStockStillAnswers(t *testing.T) {
	o := newTestOrchestrator(nil)

	answer := o.Query(context.Background(), "特斯拉现在多少钱")
	if answer.Route != RouteTool {
		t.Errorf("route = %q, want %q", answer.Route, RouteTool)
	}
	if !strings.Contains(answer.Text, "未找到股票") {
		t.Errorf("answer should surface the not-found message: %q", answer.Text)
	}
}

func TestQueryDeterministic(t *testing.T) {
	o := newTestOrchestrator(knowledgeDocs())

	first := o.Query(context.Background(), "分析一下比亚迪")
	for i := 0; i < 3; i++ {
		again := o.Query(context.Background(), "分析一下比亚迪")
		if again.Text != first.Text {
			t.Fatalf("answer changed between identical queries")
		}
	}
}

func TestQueryStreamMatchesQuery(t *testing.T) {
	o := newTestOrchestrator(knowledgeDocs())

	want := o.Query(context.Background(), "比亚迪现在多少钱")

	answer, chunks, err := o.QueryStream(context.Background(), "比亚迪现在多少钱")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Route != want.Route || answer.Tool != want.Tool {
		t.Errorf("stream decision %+v, want %+v", answer, want)
	}

	var sb strings.Builder
	for chunk := range chunks {
		sb.WriteString(chunk)
	}
	if sb.String() != want.Text {
		t.Errorf("concatenated stream differs from one-shot answer")
	}
}

func TestQueryStreamKnowledgeMissSingleChunk(t *testing.T) {
	o := newTestOrchestrator(nil)

	answer, chunks, err := o.QueryStream(context.Background(), "什么是夏普比率")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != noKnowledgeMessage {
		t.Errorf("answer = %q, want the fixed no-knowledge reply", answer.Text)
	}

	var received []string
	for chunk := range chunks {
		received = append(received, chunk)
	}
	if len(received) != 1 || received[0] != noKnowledgeMessage {
		t.Errorf("chunks = %v, want a single fixed reply", received)
	}
}

// failingClient always errors, for exercising the model-failure reply.
type failingClient struct{}

func (failingClient) Name() string { return "failing" }

func (failingClient) Generate(context.Context, string) (string, error) {
	return "", errors.New("backend unavailable")
}

func (failingClient) GenerateStream(context.Context, string) (<-chan string, error) {
	return nil, errors.New("backend unavailable")
}

func TestQueryModelFailure(t *testing.T) {
	registry := newTestRegistry()
	router := NewRouter(zerolog.Nop())
	retriever := rag.New(nil, zerolog.Nop())
	o := NewOrchestrator(router, registry, retriever, failingClient{}, zerolog.Nop())

	answer := o.Query(context.Background(), "比亚迪现在多少钱")
	if answer.Text != modelFailureMessage {
		t.Errorf("answer = %q, want the fixed model-failure reply", answer.Text)
	}

	_, chunks, err := o.QueryStream(context.Background(), "比亚迪现在多少钱")
	if err != nil {
		t.Fatalf("stream should degrade to a fixed reply, got error %v", err)
	}
	var received []string
	for chunk := range chunks {
		received = append(received, chunk)
	}
	if len(received) != 1 || received[0] != modelFailureMessage {
		t.Errorf("chunks = %v, want a single fixed reply", received)
	}
}
