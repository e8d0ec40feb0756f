// Package rag provides keyword-based knowledge retrieval over an in-memory
// document index. Scoring is a deterministic additive function; no embeddings
// and no learned weights.
package rag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"stock-advisor/internal/logging"
	"stock-advisor/internal/models"
)

// Markers that flag a query as a concept/definition question.
var conceptMarkers = []string{
	"什么是", "如何", "怎么", "为什么", "哪些",
	"概念", "定义", "含义", "解释", "介绍",
	"原理", "方法", "步骤", "技巧", "知识",
	"什么叫", "啥是", "啥叫",
}

// Scoring weights for one document against a query.
const (
	scoreExactSubstring = 10.0
	scoreKeywordInQuery = 5.0
	scoreKeywordIsWord  = 3.0
	scorePerSharedWord  = 0.5
)

// Result is one ranked retrieval hit.
type Result struct {
	Content string
	Title   string
	Source  string
	Score   float64
}

// Retriever ranks knowledge documents by keyword relevance. The index is
// loaded once and read-only afterwards.
type Retriever struct {
	docs   []models.KnowledgeDocument
	logger zerolog.Logger
}

// New creates a retriever over the given document index.
func New(docs []models.KnowledgeDocument, logger zerolog.Logger) *Retriever {
	return &Retriever{docs: docs, logger: logger}
}

// Size returns the number of indexed documents.
func (r *Retriever) Size() int {
	return len(r.docs)
}

// Search scores every document against the query and returns up to topK
// results with score strictly above minScore, ordered by score descending.
// Ties keep the original index order, so identical inputs always produce
// identical output.
func (r *Retriever) Search(query string, topK int, minScore float64) []Result {
	if len(r.docs) == 0 || topK <= 0 {
		return nil
	}

	queryLower := strings.ToLower(query)
	queryWords := tokenize(queryLower)

	results := make([]Result, 0, len(r.docs))
	for _, doc := range r.docs {
		score := scoreDocument(doc, queryLower, queryWords)
		if score > minScore {
			results = append(results, Result{
				Content: doc.Content,
				Title:   doc.Title,
				Source:  doc.Source,
				Score:   score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	if len(results) > 0 {
		logging.LogRetrieval(r.logger, query, len(results), results[0].Score)
	}

	return results
}

func scoreDocument(doc models.KnowledgeDocument, queryLower string, queryWords map[string]struct{}) float64 {
	content := strings.ToLower(doc.Content)
	title := strings.ToLower(doc.Title)

	var score float64

	// Verbatim query match in content or title.
	if strings.Contains(content, queryLower) || strings.Contains(title, queryLower) {
		score += scoreExactSubstring
	}

	// Document keyword matches.
	for _, kw := range doc.Keywords {
		kwLower := strings.ToLower(kw)
		if kwLower == "" {
			continue
		}
		if strings.Contains(queryLower, kwLower) {
			score += scoreKeywordInQuery
		}
		if _, ok := queryWords[kwLower]; ok {
			score += scoreKeywordIsWord
		}
	}

	// Shared words between the query and the document text.
	docWords := tokenize(content)
	for w := range tokenize(title) {
		docWords[w] = struct{}{}
	}
	for w := range queryWords {
		if _, ok := docWords[w]; ok {
			score += scorePerSharedWord
		}
	}

	return score
}

func tokenize(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}

// IsConceptQuery reports whether the query carries a definitional or
// explanatory marker. This is a pure membership test, not a route decision.
func (r *Retriever) IsConceptQuery(query string) bool {
	queryLower := strings.ToLower(query)
	for _, marker := range conceptMarkers {
		if strings.Contains(queryLower, marker) {
			return true
		}
	}
	return false
}

// Context concatenates the top-3 search results into a grounding context of
// at most maxLength characters. Each fragment is prefixed with its bracketed
// title when present; the last fragment is truncated with an ellipsis only
// when the remaining budget still leaves a useful amount of text.
func (r *Retriever) Context(query string, maxLength int) string {
	results := r.Search(query, 3, 0)
	if len(results) == 0 {
		return ""
	}

	var parts []string
	currentLength := 0

	for _, res := range results {
		part := res.Content
		if res.Title != "" {
			part = fmt.Sprintf("【%s】\n%s", res.Title, res.Content)
		}

		runes := []rune(part)
		if currentLength+len(runes) > maxLength {
			remaining := maxLength - currentLength
			if remaining > 100 {
				parts = append(parts, string(runes[:remaining])+"...")
			}
			break
		}

		parts = append(parts, part)
		currentLength += len(runes)
	}

	return strings.Join(parts, "\n\n---\n\n")
}

// RelevantKnowledge returns grounding text for the query, or "" when the
// index has nothing relevant. Concept queries get the assembled context;
// everything else still gets a single high-confidence lookup so that a
// strong keyword match surfaces even without a concept marker.
func (r *Retriever) RelevantKnowledge(query string) string {
	if !r.IsConceptQuery(query) {
		results := r.Search(query, 1, 5.0)
		if len(results) > 0 {
			return results[0].Content
		}
		return ""
	}

	return r.Context(query, 800)
}
