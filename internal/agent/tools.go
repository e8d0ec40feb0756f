package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	apperrors "stock-advisor/internal/errors"
	"stock-advisor/internal/logging"
	"stock-advisor/internal/store"
)

// History windows are clamped to this inclusive range by the tool itself,
// regardless of what the router extracted.
const (
	minHistoryDays = 1
	maxHistoryDays = 30
)

// Comparison set size limits enforced by the compare tool.
const (
	minCompareStocks = 2
	maxCompareStocks = 5
)

// ToolFunc executes a tool against validated arguments and returns a
// formatted text report.
type ToolFunc func(ctx context.Context, args Args) (string, error)

// ToolSpec pairs a tool name with its description, argument schema and
// implementation. Registered once at startup, read-only afterwards.
type ToolSpec struct {
	Name        string
	Description string
	Definition  openai.FunctionDefinition
	Run         ToolFunc
}

// Registry holds the named tools available to the router and orchestrator.
type Registry struct {
	prices store.PriceStore
	tools  map[string]*ToolSpec
	order  []string
	logger zerolog.Logger
}

// NewRegistry creates the tool registry with all five stock tools.
func NewRegistry(prices store.PriceStore, logger zerolog.Logger) *Registry {
	r := &Registry{
		prices: prices,
		tools:  make(map[string]*ToolSpec),
		logger: logger,
	}

	r.register(&ToolSpec{
		Name:        ToolGetPrice,
		Description: "获取指定股票的最新价格、成交量等行情信息。适合回答'XX股票现在多少钱'、'XX股票价格'等问题。",
		Definition: openai.FunctionDefinition{
			Name:        ToolGetPrice,
			Description: "获取指定股票的最新价格信息",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"stock": {
						"type": "string",
						"description": "股票名称或代码，如'比亚迪'或'002594'"
					}
				},
				"required": ["stock"]
			}`),
		},
		Run: r.runGetPrice,
	})

	r.register(&ToolSpec{
		Name:        ToolGetIndicators,
		Description: "获取指定股票的技术指标，包括MA均线、MACD、RSI、布林带、趋势判断等。适合回答'XX技术面分析'、'XX技术指标如何'等问题。",
		Definition: openai.FunctionDefinition{
			Name:        ToolGetIndicators,
			Description: "获取指定股票的技术指标",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"stock": {
						"type": "string",
						"description": "股票名称或代码，如'比亚迪'或'002594'"
					}
				},
				"required": ["stock"]
			}`),
		},
		Run: r.runGetIndicators,
	})

	r.register(&ToolSpec{
		Name:        ToolGetHistory,
		Description: "获取指定股票最近N天的历史交易数据。适合回答'XX最近表现如何'、'XX近期走势'等问题。",
		Definition: openai.FunctionDefinition{
			Name:        ToolGetHistory,
			Description: "获取指定股票的历史数据",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"stock": {
						"type": "string",
						"description": "股票名称或代码，如'比亚迪'或'002594'"
					},
					"days": {
						"type": "integer",
						"description": "获取最近N天的数据，默认10天，范围1-30",
						"default": 10
					}
				},
				"required": ["stock"]
			}`),
		},
		Run: r.runGetHistory,
	})

	r.register(&ToolSpec{
		Name:        ToolCompareStocks,
		Description: "比较多只股票的表现，包括最新价格、今日涨跌、近期涨跌等。适合回答'比较XX和YY'、'XX和YY哪个好'等问题。",
		Definition: openai.FunctionDefinition{
			Name:        ToolCompareStocks,
			Description: "比较多只股票的表现",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"stocks": {
						"type": "array",
						"items": {"type": "string"},
						"description": "要比较的股票列表，如['比亚迪', '宁德时代']，2-5只"
					}
				},
				"required": ["stocks"]
			}`),
		},
		Run: r.runCompareStocks,
	})

	r.register(&ToolSpec{
		Name:        ToolAnalyzeStock,
		Description: "对股票进行全面的综合分析，包括基本行情、近期表现、技术指标、趋势判断等。适合回答'分析XX股票'、'XX怎么样'等问题。",
		Definition: openai.FunctionDefinition{
			Name:        ToolAnalyzeStock,
			Description: "对股票进行综合分析",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"stock": {
						"type": "string",
						"description": "股票名称或代码，如'比亚迪'或'002594'"
					}
				},
				"required": ["stock"]
			}`),
		},
		Run: r.runAnalyzeStock,
	})

	return r
}

func (r *Registry) register(spec *ToolSpec) {
	r.tools[spec.Name] = spec
	r.order = append(r.order, spec.Name)
}

// Get returns the tool spec for a name.
func (r *Registry) Get(name string) (*ToolSpec, bool) {
	spec, ok := r.tools[name]
	return spec, ok
}

// Names lists the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Definitions returns the function-calling definitions for every tool.
func (r *Registry) Definitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(r.order))
	for _, name := range r.order {
		def := r.tools[name].Definition
		defs = append(defs, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &def,
		})
	}
	return defs
}

// Invoke runs a tool and always returns displayable text: a missing tool,
// a missing stock or an internal failure all resolve to a user-facing
// message instead of propagating an error.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) string {
	spec, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("工具 %s 不存在", name)
	}

	start := time.Now()
	result, err := spec.Run(ctx, args)
	logging.LogToolCall(r.logger, name, args.Stock, time.Since(start), err)

	if err != nil {
		if apperrors.Is(err, apperrors.ErrStockNotFound) {
			stock := args.Stock
			if stock == "" && len(args.Stocks) > 0 {
				stock = args.Stocks[0]
			}
			return fmt.Sprintf("未找到股票 '%s' 的数据。请检查股票名称或代码是否正确。", stock)
		}
		return fmt.Sprintf("工具调用失败：%v", err)
	}

	return result
}

func (r *Registry) runGetPrice(ctx context.Context, args Args) (string, error) {
	series, err := r.prices.GetSeries(ctx, args.Stock)
	if err != nil {
		return "", err
	}
	return priceReport(series), nil
}

func (r *Registry) runGetIndicators(ctx context.Context, args Args) (string, error) {
	series, err := r.prices.GetSeries(ctx, args.Stock)
	if err != nil {
		return "", err
	}
	return indicatorsReport(series), nil
}

func (r *Registry) runGetHistory(ctx context.Context, args Args) (string, error) {
	series, err := r.prices.GetSeries(ctx, args.Stock)
	if err != nil {
		return "", err
	}

	days := args.Days
	if days < minHistoryDays {
		days = minHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	return historyReport(series, days), nil
}

func (r *Registry) runCompareStocks(ctx context.Context, args Args) (string, error) {
	if len(args.Stocks) < minCompareStocks {
		return "请至少提供2只股票进行对比。", nil
	}
	if len(args.Stocks) > maxCompareStocks {
		return "最多支持同时比较5只股票。", nil
	}

	return compareReport(ctx, r.prices, args.Stocks), nil
}

func (r *Registry) runAnalyzeStock(ctx context.Context, args Args) (string, error) {
	series, err := r.prices.GetSeries(ctx, args.Stock)
	if err != nil {
		return "", err
	}
	return analyzeReport(series), nil
}
