package agent

import (
	"context"
	"strings"
)

// MockClient is a deterministic language-model stand-in for environments
// without model access. It honors the Client contract: same prompt, same
// answer, finite stream.
type MockClient struct{}

// NewMockClient creates the deterministic stand-in client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Name returns the provider name.
func (m *MockClient) Name() string {
	return "mock"
}

var mockStockTerms = []string{"股票", "股价", "行情", "分析", "投资", "指标"}

// Generate selects a canned response shape from the prompt.
func (m *MockClient) Generate(_ context.Context, prompt string) (string, error) {
	return m.respond(prompt), nil
}

// GenerateStream chunks the full response into small fragments.
func (m *MockClient) GenerateStream(ctx context.Context, prompt string) (<-chan string, error) {
	full := []rune(m.respond(prompt))
	out := make(chan string)

	go func() {
		defer close(out)
		const chunkSize = 5
		for i := 0; i < len(full); i += chunkSize {
			end := i + chunkSize
			if end > len(full) {
				end = len(full)
			}
			select {
			case out <- string(full[i:end]):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (m *MockClient) respond(prompt string) string {
	switch {
	case strings.Contains(prompt, "工具结果"):
		return m.summarizeToolResult(prompt)
	case strings.Contains(prompt, "相关知识"):
		return m.summarizeKnowledge(prompt)
	case containsAny(prompt, mockStockTerms):
		return "从目前的数据来看，该股票整体表现平稳，短期以震荡整理为主。" +
			"建议结合均线与成交量变化综合判断。投资有风险，仅供参考。"
	default:
		return "您好，我是股票咨询助手，可以查询行情、技术指标、历史走势，也可以解释投资概念。请告诉我您想了解什么。"
	}
}

// summarizeToolResult echoes the grounding section so the answer stays
// faithful to the tool report even without a real model.
func (m *MockClient) summarizeToolResult(prompt string) string {
	body := extractSection(prompt, "工具结果：")
	return "根据查询结果：\n\n" + body + "\n以上信息仅供参考，投资有风险，仅供参考。"
}

func (m *MockClient) summarizeKnowledge(prompt string) string {
	body := extractSection(prompt, "相关知识：")
	return "根据知识库的资料：\n\n" + body
}

// extractSection returns the prompt text between the marker line and the
// trailing instruction paragraph.
func extractSection(prompt, marker string) string {
	idx := strings.Index(prompt, marker)
	if idx < 0 {
		return prompt
	}
	body := prompt[idx+len(marker):]
	if end := strings.LastIndex(body, "\n\n请"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body) + "\n"
}
