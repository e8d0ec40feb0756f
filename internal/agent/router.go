// Package agent provides the query router, tool registry, language-model
// clients and the orchestrator that glues them into one answer per query.
package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"stock-advisor/internal/logging"
)

// Route is the resolution path chosen for a query.
type Route string

const (
	RouteTool      Route = "tool"
	RouteKnowledge Route = "knowledge"
	RouteDirect    Route = "direct"
)

// Tool names registered in the registry.
const (
	ToolGetPrice      = "get_stock_price"
	ToolGetIndicators = "get_technical_indicators"
	ToolGetHistory    = "get_stock_history"
	ToolCompareStocks = "compare_stocks"
	ToolAnalyzeStock  = "analyze_stock"
)

// Args carries the extracted arguments for one tool invocation.
type Args struct {
	Stock  string
	Stocks []string
	Days   int
}

// Decision is the routing outcome for one query. Transient, never persisted.
type Decision struct {
	Route Route
	Tool  string
	Args  Args
}

// Vocabulary that indicates an actionable data/tool query.
var toolTerms = []string{
	"价格", "多少钱", "股价", "行情",
	"技术指标", "MACD", "RSI", "均线", "MA",
	"历史", "走势", "表现",
	"对比", "比较",
	"分析",
}

// Vocabulary that indicates a concept/knowledge query.
var knowledgeTerms = []string{
	"什么是", "如何", "怎么", "为什么", "哪些",
	"概念", "定义", "含义", "解释", "介绍",
}

// routeRule is one ordered classification rule: the first rule whose anyOf
// matches (and whose noneOf does not) decides the route.
type routeRule struct {
	route  Route
	anyOf  []string
	noneOf []string
}

// Rules are evaluated in priority order; a query matching none of them
// falls through to the default tool route, biasing ambiguous queries toward
// an actionable tool invocation over a bare model answer.
var routeRules = []routeRule{
	{route: RouteTool, anyOf: toolTerms, noneOf: knowledgeTerms},
	{route: RouteKnowledge, anyOf: knowledgeTerms},
}

const defaultRoute = RouteTool

// toolRule maps query vocabulary to a specific tool, in fixed precedence.
type toolRule struct {
	tool  string
	anyOf []string
}

var toolRules = []toolRule{
	{tool: ToolGetPrice, anyOf: []string{"价格", "多少钱", "股价"}},
	{tool: ToolGetIndicators, anyOf: []string{"技术指标", "MACD", "RSI"}},
	{tool: ToolGetHistory, anyOf: []string{"历史", "最近", "走势"}},
	{tool: ToolCompareStocks, anyOf: []string{"对比", "比较"}},
	{tool: ToolAnalyzeStock, anyOf: []string{"分析"}},
}

// analyze_stock is the most comprehensive tool and serves as the fallback.
const defaultTool = ToolAnalyzeStock

// knownStocks is the fixed identification list scanned for stock names.
var knownStocks = []string{
	"比亚迪", "宁德时代", "贵州茅台", "中国平安", "招商银行",
	"工商银行", "建设银行", "中国石油", "中国石化", "五粮液",
}

// compareUniverse is the short reference list scanned for comparison sets.
var compareUniverse = []string{
	"比亚迪", "宁德时代", "贵州茅台", "中国平安", "招商银行",
}

// defaultCompareSet is used when fewer than two stocks are named.
var defaultCompareSet = []string{"比亚迪", "宁德时代", "贵州茅台"}

// stopWords are tokens never taken as a stock identifier.
var stopWords = map[string]struct{}{
	"股票":  {},
	"价格":  {},
	"怎么样": {},
	"如何":  {},
}

const defaultStock = "比亚迪"

// Router classifies raw queries into route decisions. Pure in-memory rule
// evaluation; safe for concurrent use.
type Router struct {
	logger zerolog.Logger
}

// NewRouter creates a query router.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{logger: logger}
}

// Route classifies the query, selects a tool when the route is a tool route,
// and extracts the tool's arguments.
func (r *Router) Route(query string) Decision {
	decision := Decision{Route: r.classify(query)}

	if decision.Route == RouteTool {
		decision.Tool = r.selectTool(query)
		switch decision.Tool {
		case ToolCompareStocks:
			decision.Args.Stocks = r.extractStocks(query)
		case ToolGetHistory:
			decision.Args.Stock = r.extractStock(query)
			decision.Args.Days = r.extractDays(query)
		default:
			decision.Args.Stock = r.extractStock(query)
		}
	}

	logging.LogRoute(r.logger, query, string(decision.Route), decision.Tool)

	return decision
}

func (r *Router) classify(query string) Route {
	for _, rule := range routeRules {
		if containsAny(query, rule.anyOf) && !containsAny(query, rule.noneOf) {
			return rule.route
		}
	}
	return defaultRoute
}

func (r *Router) selectTool(query string) string {
	for _, rule := range toolRules {
		if containsAny(query, rule.anyOf) {
			return rule.tool
		}
	}
	return defaultTool
}

// extractStock finds the queried stock: a known name wins, then the first
// plausible token, then the fixed default.
func (r *Router) extractStock(query string) string {
	for _, stock := range knownStocks {
		if strings.Contains(query, stock) {
			return stock
		}
	}

	cleaned := strings.NewReplacer("？", " ", "?", " ").Replace(query)
	for _, word := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		return word
	}

	return defaultStock
}

// extractStocks collects every reference-list stock named in the query.
// Fewer than two matches degrade to the default comparison set, so
// comparison argument extraction never fails.
func (r *Router) extractStocks(query string) []string {
	var stocks []string
	for _, stock := range compareUniverse {
		if strings.Contains(query, stock) {
			stocks = append(stocks, stock)
		}
	}

	if len(stocks) < 2 {
		return append([]string(nil), defaultCompareSet...)
	}
	return stocks
}

// extractDays picks the history window: 5 or 20 when the query names them
// (digit or numeral), 10 otherwise. The tool clamps the final value.
func (r *Router) extractDays(query string) int {
	switch {
	case strings.Contains(query, "5") || strings.Contains(query, "五"):
		return 5
	case strings.Contains(query, "20") || strings.Contains(query, "二十"):
		return 20
	default:
		return 10
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
