package rag

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"stock-advisor/internal/models"
)

func testDocs() []models.KnowledgeDocument {
	return []models.KnowledgeDocument{
		{
			Title:    "MACD指标详解",
			Content:  "MACD指标是常用的趋势指标，由DIF快线和DEA慢线组成。金叉代表买入信号，死叉代表卖出信号。",
			Source:   "技术分析基础",
			Keywords: []string{"MACD", "金叉", "死叉", "趋势"},
		},
		{
			Title:    "RSI指标详解",
			Content:  "RSI指标衡量价格动量，取值在0到100之间。高于70为超买，低于30为超卖。",
			Source:   "技术分析基础",
			Keywords: []string{"RSI", "超买", "超卖"},
		},
		{
			Title:    "市盈率",
			Content:  "市盈率是股价与每股收益的比值，常用于估值比较。",
			Source:   "基本面分析",
			Keywords: []string{"市盈率", "估值"},
		},
	}
}

func newTestRetriever() *Retriever {
	return New(testDocs(), zerolog.Nop())
}

func TestSearchRanksKeywordMatchFirst(t *testing.T) {
	r := newTestRetriever()

	results := r.Search("MACD金叉是什么意思", 3, 0)
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Title != "MACD指标详解" {
		t.Errorf("top result = %q, want MACD指标详解", results[0].Title)
	}
}

func TestSearchExactSubstringOutranksSharedWords(t *testing.T) {
	docs := []models.KnowledgeDocument{
		{Title: "甲", Content: "alpha beta gamma delta"},
		{Title: "乙", Content: "the query phrase appears verbatim here"},
	}
	r := New(docs, zerolog.Nop())

	results := r.Search("query phrase", 2, 0)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Title != "乙" {
		t.Errorf("top result = %q, want the verbatim-match document", results[0].Title)
	}
}

func TestSearchMinScoreIsStrict(t *testing.T) {
	r := newTestRetriever()

	// A query with no overlap scores 0 against every document, and 0 is not
	// strictly above a 0 threshold.
	results := r.Search("完全无关的查询", 3, 0)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSearchDeterministic(t *testing.T) {
	r := newTestRetriever()

	first := r.Search("指标", 3, 0)
	for i := 0; i < 10; i++ {
		again := r.Search("指标", 3, 0)
		if len(again) != len(first) {
			t.Fatalf("run %d: result count changed: %d vs %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j].Title != first[j].Title || again[j].Score != first[j].Score {
				t.Fatalf("run %d: result %d changed: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestSearchTopKLimit(t *testing.T) {
	r := newTestRetriever()

	results := r.Search("指标", 1, 0)
	if len(results) > 1 {
		t.Errorf("expected at most 1 result, got %d", len(results))
	}
}

func TestIsConceptQuery(t *testing.T) {
	r := newTestRetriever()

	cases := []struct {
		query string
		want  bool
	}{
		{"什么是MACD指标", true},
		{"如何看均线", true},
		{"怎么判断超买", true},
		{"市盈率的定义", true},
		{"比亚迪现在多少钱", false},
		{"对比一下比亚迪和宁德时代", false},
	}
	for _, tc := range cases {
		if got := r.IsConceptQuery(tc.query); got != tc.want {
			t.Errorf("IsConceptQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestContextIncludesTitles(t *testing.T) {
	r := newTestRetriever()

	ctx := r.Context("MACD金叉", 800)
	if ctx == "" {
		t.Fatal("expected non-empty context")
	}
	if !strings.Contains(ctx, "【MACD指标详解】") {
		t.Errorf("context missing bracketed title: %q", ctx)
	}
}

func TestContextTruncation(t *testing.T) {
	long := strings.Repeat("MACD指标内容。", 200)
	docs := []models.KnowledgeDocument{
		{Title: "长文档", Content: long, Keywords: []string{"MACD"}},
	}
	r := New(docs, zerolog.Nop())

	ctx := r.Context("MACD", 500)
	if got := len([]rune(ctx)); got > 503 {
		t.Errorf("context length %d runes exceeds budget plus ellipsis", got)
	}
	if !strings.HasSuffix(ctx, "...") {
		t.Errorf("truncated context should end with ellipsis: %q", ctx[len(ctx)-20:])
	}
}

func TestContextSkipsTinyRemainder(t *testing.T) {
	first := strings.Repeat("甲", 450)
	second := strings.Repeat("MACD乙", 100)
	docs := []models.KnowledgeDocument{
		{Content: first + " MACD", Keywords: []string{"MACD"}},
		{Content: second, Keywords: []string{"MACD"}},
	}
	r := New(docs, zerolog.Nop())

	// The first fragment leaves fewer than 100 runes of budget, so the second
	// is dropped entirely rather than truncated to a stub.
	ctx := r.Context("MACD", 500)
	if strings.Contains(ctx, "乙") {
		t.Errorf("tiny remainder should be dropped, got %d runes", len([]rune(ctx)))
	}
}

func TestRelevantKnowledgeConceptPath(t *testing.T) {
	r := newTestRetriever()

	knowledge := r.RelevantKnowledge("什么是MACD指标")
	if knowledge == "" {
		t.Fatal("expected knowledge for a concept query")
	}
	if !strings.Contains(knowledge, "MACD") {
		t.Errorf("knowledge should mention MACD: %q", knowledge)
	}
}

func TestRelevantKnowledgeHighConfidencePath(t *testing.T) {
	r := newTestRetriever()

	// Not a concept query, but the keyword match clears the 5.0 threshold.
	knowledge := r.RelevantKnowledge("MACD金叉")
	if knowledge == "" {
		t.Fatal("expected knowledge for a strong keyword match")
	}

	// No overlap at all stays empty.
	if got := r.RelevantKnowledge("今天天气"); got != "" {
		t.Errorf("expected empty knowledge, got %q", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	r := New(nil, zerolog.Nop())

	if r.Size() != 0 {
		t.Errorf("Size = %d, want 0", r.Size())
	}
	if results := r.Search("MACD", 3, 0); results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
	if knowledge := r.RelevantKnowledge("什么是MACD"); knowledge != "" {
		t.Errorf("expected empty knowledge, got %q", knowledge)
	}
}
