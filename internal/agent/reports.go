package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stock-advisor/internal/analysis/indicators"
	"stock-advisor/internal/models"
	"stock-advisor/internal/store"
)

// Every report omits a section whenever its indicator is unavailable;
// nothing is zero-filled.

func priceReport(series *models.Series) string {
	latest := series.Latest()

	var sb strings.Builder
	fmt.Fprintf(&sb, "【%s】最新行情：\n", series.Name)
	fmt.Fprintf(&sb, "日期：%s\n", latest.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "收盘价：%.2f元\n", latest.Close)
	fmt.Fprintf(&sb, "开盘价：%.2f元\n", latest.Open)
	fmt.Fprintf(&sb, "最高价：%.2f元\n", latest.High)
	fmt.Fprintf(&sb, "最低价：%.2f元\n", latest.Low)
	fmt.Fprintf(&sb, "成交量：%s手\n", groupDigits(latest.Volume))
	if latest.ChangePct != nil {
		fmt.Fprintf(&sb, "涨跌幅：%+.2f%%\n", *latest.ChangePct)
	}
	return sb.String()
}

func indicatorsReport(series *models.Series) string {
	bars := series.Bars

	var sb strings.Builder
	fmt.Fprintf(&sb, "【%s】技术指标分析：\n\n", series.Name)

	if ma := indicators.MovingAverages(bars); len(ma) > 0 {
		sb.WriteString("【移动平均线】\n")
		for _, period := range indicators.DefaultMAPeriods {
			key := fmt.Sprintf("MA%d", period)
			if value, ok := ma[key]; ok {
				fmt.Fprintf(&sb, "  %s: %.2f元\n", key, value)
			}
		}
		sb.WriteString("\n")
	}

	if macd, err := indicators.MACD(bars, 12, 26, 9); err == nil {
		sb.WriteString("【MACD指标】\n")
		fmt.Fprintf(&sb, "  DIF: %.2f\n", macd.DIF)
		fmt.Fprintf(&sb, "  DEA: %.2f\n", macd.DEA)
		fmt.Fprintf(&sb, "  MACD: %.2f\n", macd.Histogram)
		fmt.Fprintf(&sb, "  信号: %s\n\n", macd.Signal)
	}

	if rsi, err := indicators.RSI(bars, 14); err == nil {
		sb.WriteString("【RSI指标】\n")
		fmt.Fprintf(&sb, "  RSI(14): %.2f\n", rsi)
		fmt.Fprintf(&sb, "  状态: %s\n\n", indicators.RSIZone(rsi))
	}

	if boll, err := indicators.BollingerBands(bars, 20, 2.0); err == nil {
		sb.WriteString("【布林带】\n")
		fmt.Fprintf(&sb, "  上轨: %.2f元\n", boll.Upper)
		fmt.Fprintf(&sb, "  中轨: %.2f元\n", boll.Middle)
		fmt.Fprintf(&sb, "  下轨: %.2f元\n", boll.Lower)
		fmt.Fprintf(&sb, "  当前价格: %.2f元 (%s)\n\n", boll.Current, boll.Position)
	}

	fmt.Fprintf(&sb, "【趋势判断】%s\n\n", indicators.ClassifyTrend(bars))

	if levels, err := indicators.SupportResistance(bars, 20); err == nil {
		sb.WriteString("【支撑/压力位】\n")
		fmt.Fprintf(&sb, "  支撑位: %.2f元\n", levels.Support)
		fmt.Fprintf(&sb, "  压力位: %.2f元\n\n", levels.Resistance)
	}

	if ratio, err := indicators.VolumeRatio(bars); err == nil {
		fmt.Fprintf(&sb, "【量比】%.2f\n", ratio)
		if ratio > 2 {
			sb.WriteString("  成交量显著放大\n")
		} else if ratio < 0.5 {
			sb.WriteString("  成交量萎缩\n")
		}
	}

	return sb.String()
}

func historyReport(series *models.Series, days int) string {
	recent := series.Tail(days)

	var sb strings.Builder
	fmt.Fprintf(&sb, "【%s】最近%d个交易日数据：\n\n", series.Name, len(recent))
	fmt.Fprintf(&sb, "%-12s %-8s %-8s %-12s\n", "日期", "收盘", "涨跌幅", "成交量")
	sb.WriteString(strings.Repeat("-", 50) + "\n")

	for _, bar := range recent {
		changePct := 0.0
		if bar.ChangePct != nil {
			changePct = *bar.ChangePct
		}
		fmt.Fprintf(&sb, "%-12s %7.2f %6.2f%% %10s手\n",
			bar.Date.Format("2006-01-02"), bar.Close, changePct, groupDigits(bar.Volume))
	}

	highs := make([]float64, len(recent))
	lows := make([]float64, len(recent))
	var closeSum float64
	for i, bar := range recent {
		highs[i] = bar.High
		lows[i] = bar.Low
		closeSum += bar.Close
	}

	sb.WriteString("\n【统计信息】\n")
	fmt.Fprintf(&sb, "  最高价: %.2f元\n", maxOf(highs))
	fmt.Fprintf(&sb, "  最低价: %.2f元\n", minOf(lows))
	fmt.Fprintf(&sb, "  平均价: %.2f元\n", closeSum/float64(len(recent)))

	if change, err := indicators.ChangePercent(recent, len(recent)); err == nil {
		fmt.Fprintf(&sb, "  区间涨跌: %+.2f%%\n", change)
	}

	return sb.String()
}

type compareEntry struct {
	name     string
	price    float64
	today    float64
	change5  float64
	change20 float64
}

func compareReport(ctx context.Context, prices store.PriceStore, stocks []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "【股票对比】共%d只\n\n", len(stocks))
	fmt.Fprintf(&sb, "%-10s %-10s %-10s %-10s %-10s\n", "股票", "最新价", "今日涨跌", "5日涨跌", "20日涨跌")
	sb.WriteString(strings.Repeat("-", 60) + "\n")

	var entries []compareEntry
	for _, stock := range stocks {
		series, err := prices.GetSeries(ctx, stock)
		if err != nil {
			fmt.Fprintf(&sb, "%-10s 数据缺失\n", stock)
			continue
		}

		latest := series.Latest()
		entry := compareEntry{name: series.Name, price: latest.Close}
		if latest.ChangePct != nil {
			entry.today = *latest.ChangePct
		}
		if change, err := indicators.ChangePercent(series.Bars, 5); err == nil {
			entry.change5 = change
		}
		if change, err := indicators.ChangePercent(series.Bars, 20); err == nil {
			entry.change20 = change
		}

		fmt.Fprintf(&sb, "%-10s %8.2f %8.2f%% %8.2f%% %8.2f%%\n",
			entry.name, entry.price, entry.today, entry.change5, entry.change20)
		entries = append(entries, entry)
	}

	if len(entries) >= 2 {
		sb.WriteString("\n【对比分析】\n")

		best := bestBy(entries, func(e compareEntry) float64 { return e.today })
		fmt.Fprintf(&sb, "  今日涨幅最大: %s (%+.2f%%)\n", best.name, best.today)

		best = bestBy(entries, func(e compareEntry) float64 { return e.change5 })
		fmt.Fprintf(&sb, "  5日涨幅最大: %s (%+.2f%%)\n", best.name, best.change5)

		best = bestBy(entries, func(e compareEntry) float64 { return e.change20 })
		fmt.Fprintf(&sb, "  20日涨幅最大: %s (%+.2f%%)\n", best.name, best.change20)
	}

	return sb.String()
}

func analyzeReport(series *models.Series) string {
	bars := series.Bars
	latest := series.Latest()

	var sb strings.Builder
	fmt.Fprintf(&sb, "【%s】综合分析报告\n", series.Name)
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	sb.WriteString("【基本行情】\n")
	fmt.Fprintf(&sb, "  日期: %s\n", latest.Date.Format("2006-01-02"))
	fmt.Fprintf(&sb, "  收盘价: %.2f元\n", latest.Close)
	if latest.ChangePct != nil {
		fmt.Fprintf(&sb, "  涨跌幅: %+.2f%%\n", *latest.ChangePct)
	}
	fmt.Fprintf(&sb, "  成交量: %s手\n", groupDigits(latest.Volume))
	fmt.Fprintf(&sb, "  数据记录: %d条\n\n", len(bars))

	sb.WriteString("【近期表现】\n")
	for _, days := range []int{5, 20, 60} {
		if change, err := indicators.ChangePercent(bars, days); err == nil {
			fmt.Fprintf(&sb, "  近%d日涨跌: %+.2f%%\n", days, change)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("【技术指标】\n")
	ma := indicators.MovingAverages(bars)
	for _, period := range indicators.DefaultMAPeriods {
		key := fmt.Sprintf("MA%d", period)
		if value, ok := ma[key]; ok {
			fmt.Fprintf(&sb, "  %s: %.2f元\n", key, value)
		}
	}
	fmt.Fprintf(&sb, "  趋势: %s\n\n", indicators.ClassifyTrend(bars))

	if macd, err := indicators.MACD(bars, 12, 26, 9); err == nil {
		sb.WriteString("【MACD】\n")
		fmt.Fprintf(&sb, "  信号: %s\n", macd.Signal)
		fmt.Fprintf(&sb, "  DIF: %.2f, DEA: %.2f\n\n", macd.DIF, macd.DEA)
	}

	if rsi, err := indicators.RSI(bars, 14); err == nil {
		fmt.Fprintf(&sb, "【RSI】%.2f\n", rsi)
		fmt.Fprintf(&sb, "  状态: %s\n\n", indicators.RSIZone(rsi))
	}

	if levels, err := indicators.SupportResistance(bars, 20); err == nil {
		sb.WriteString("【支撑/压力】\n")
		fmt.Fprintf(&sb, "  支撑位: %.2f元\n", levels.Support)
		fmt.Fprintf(&sb, "  压力位: %.2f元\n\n", levels.Resistance)
	}

	if ratio, err := indicators.VolumeRatio(bars); err == nil {
		fmt.Fprintf(&sb, "【量比】%.2f\n", ratio)
		if ratio > 2 {
			sb.WriteString("  成交量显著放大，市场关注度高\n")
		} else if ratio < 0.5 {
			sb.WriteString("  成交量萎缩，市场观望情绪浓厚\n")
		}
	}

	return sb.String()
}

func bestBy(entries []compareEntry, metric func(compareEntry) float64) compareEntry {
	best := entries[0]
	for _, e := range entries[1:] {
		if metric(e) > metric(best) {
			best = e
		}
	}
	return best
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// groupDigits formats an integer with thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
