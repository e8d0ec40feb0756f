package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "stock-advisor/internal/errors"
	"stock-advisor/internal/models"
)

// fakeStore serves fixed series from memory.
type fakeStore struct {
	series map[string]*models.Series
}

func (f *fakeStore) GetSeries(_ context.Context, stock string) (*models.Series, error) {
	if s, ok := f.series[stock]; ok {
		return s, nil
	}
	return nil, apperrors.ErrStockNotFound
}

func (f *fakeStore) GetLatest(ctx context.Context, stock string) (*models.Bar, error) {
	s, err := f.GetSeries(ctx, stock)
	if err != nil {
		return nil, err
	}
	return s.Latest(), nil
}

func (f *fakeStore) ListStocks(_ context.Context) ([]models.StockInfo, error) {
	var stocks []models.StockInfo
	for _, s := range f.series {
		stocks = append(stocks, models.StockInfo{Name: s.Name, Code: s.Code})
	}
	return stocks, nil
}

func testSeries(name, code string, days int) *models.Series {
	bars := make([]models.Bar, days)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := 100 + float64(i)
		change := 1.0
		bars[i] = models.Bar{
			Date:      start.AddDate(0, 0, i),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    50000 + int64(i)*1000,
			ChangePct: &change,
		}
	}
	return &models.Series{Name: name, Code: code, Bars: bars}
}

func newTestRegistry() *Registry {
	store := &fakeStore{series: map[string]*models.Series{
		"比亚迪":  testSeries("比亚迪", "002594", 80),
		"宁德时代": testSeries("宁德时代", "300750", 80),
	}}
	return NewRegistry(store, zerolog.Nop())
}

func TestRegistryNamesAndDefinitions(t *testing.T) {
	r := newTestRegistry()

	want := []string{
		ToolGetPrice, ToolGetIndicators, ToolGetHistory,
		ToolCompareStocks, ToolAnalyzeStock,
	}
	names := r.Names()
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	defs := r.Definitions()
	if len(defs) != 5 {
		t.Errorf("Definitions() returned %d tools, want 5", len(defs))
	}
}

func TestInvokeGetPrice(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolGetPrice, Args{Stock: "比亚迪"})
	if !strings.Contains(result, "【比亚迪】最新行情") {
		t.Errorf("missing report header: %q", result)
	}
	if !strings.Contains(result, "收盘价：179.00元") {
		t.Errorf("missing latest close: %q", result)
	}
}

func TestInvokeUnknownStock(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolGetPrice, Args{Stock: "特斯拉"})
	want := "未找到股票 '特斯拉' 的数据。请检查股票名称或代码是否正确。"
	if result != want {
		t.Errorf("result = %q, want %q", result, want)
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), "no_such_tool", Args{})
	if !strings.Contains(result, "工具 no_such_tool 不存在") {
		t.Errorf("result = %q", result)
	}
}

func TestInvokeHistoryWindowClamping(t *testing.T) {
	r := newTestRegistry()

	cases := []struct {
		days int
		want string
	}{
		{5, "最近5个交易日"},
		{0, "最近1个交易日"},
		{100, "最近30个交易日"},
	}
	for _, tc := range cases {
		result := r.Invoke(context.Background(), ToolGetHistory, Args{Stock: "比亚迪", Days: tc.days})
		if !strings.Contains(result, tc.want) {
			t.Errorf("days=%d: result missing %q", tc.days, tc.want)
		}
	}
}

func TestInvokeHistoryStatistics(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolGetHistory, Args{Stock: "比亚迪", Days: 10})
	for _, section := range []string{"【统计信息】", "最高价", "最低价", "平均价", "区间涨跌"} {
		if !strings.Contains(result, section) {
			t.Errorf("missing %q in history report", section)
		}
	}
}

func TestInvokeCompareStocks(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolCompareStocks, Args{Stocks: []string{"比亚迪", "宁德时代"}})
	if !strings.Contains(result, "【股票对比】共2只") {
		t.Errorf("missing header: %q", result)
	}
	if !strings.Contains(result, "【对比分析】") {
		t.Errorf("missing analysis block: %q", result)
	}
}

func TestInvokeCompareStocksSetLimits(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolCompareStocks, Args{Stocks: []string{"比亚迪"}})
	if result != "请至少提供2只股票进行对比。" {
		t.Errorf("single stock: result = %q", result)
	}

	six := []string{"a", "b", "c", "d", "e", "f"}
	result = r.Invoke(context.Background(), ToolCompareStocks, Args{Stocks: six})
	if result != "最多支持同时比较5只股票。" {
		t.Errorf("six stocks: result = %q", result)
	}
}

func TestInvokeCompareStocksMissingData(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolCompareStocks, Args{Stocks: []string{"比亚迪", "特斯拉"}})
	if !strings.Contains(result, "数据缺失") {
		t.Errorf("missing-data row absent: %q", result)
	}
	// Only one stock resolved, so the analysis block is skipped.
	if strings.Contains(result, "【对比分析】") {
		t.Errorf("analysis block should be omitted with one resolved stock: %q", result)
	}
}

func TestInvokeIndicators(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolGetIndicators, Args{Stock: "比亚迪"})
	for _, section := range []string{"【移动平均线】", "【MACD指标】", "【RSI指标】", "【布林带】", "【趋势判断】", "【支撑/压力位】", "【量比】"} {
		if !strings.Contains(result, section) {
			t.Errorf("missing %q in indicators report", section)
		}
	}
}

func TestInvokeIndicatorsOmitsUnavailable(t *testing.T) {
	store := &fakeStore{series: map[string]*models.Series{
		"新股": testSeries("新股", "001234", 10),
	}}
	r := NewRegistry(store, zerolog.Nop())

	result := r.Invoke(context.Background(), ToolGetIndicators, Args{Stock: "新股"})
	if strings.Contains(result, "【MACD指标】") {
		t.Errorf("MACD should be omitted for 10 bars: %q", result)
	}
	if strings.Contains(result, "【布林带】") {
		t.Errorf("Bollinger should be omitted for 10 bars: %q", result)
	}
	if !strings.Contains(result, "【移动平均线】") {
		t.Errorf("MA5/MA10 should still appear for 10 bars: %q", result)
	}
}

func TestInvokeAnalyze(t *testing.T) {
	r := newTestRegistry()

	result := r.Invoke(context.Background(), ToolAnalyzeStock, Args{Stock: "宁德时代"})
	for _, section := range []string{"综合分析报告", "【基本行情】", "【近期表现】", "【技术指标】", "【MACD】", "【RSI】", "【支撑/压力】"} {
		if !strings.Contains(result, section) {
			t.Errorf("missing %q in analyze report", section)
		}
	}
}
