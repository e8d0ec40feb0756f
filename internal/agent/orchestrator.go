package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"stock-advisor/internal/logging"
	"stock-advisor/internal/rag"
)

// Grounding prompt embedding a tool report. The trailing policy line makes
// the model add a risk disclaimer whenever the content implies advice.
const toolPrompt = `请基于工具的查询结果，回答用户的问题。

用户问题：%s

工具结果：
%s

请用自然、友好的语言总结这些信息，给用户一个清晰的回答。如果有投资建议的需求，请务必提醒"投资有风险，仅供参考"。`

// Grounding prompt embedding retrieved knowledge.
const knowledgePrompt = `请基于以下知识回答用户的问题。

用户问题：%s

相关知识：
%s

请用简洁明了的语言回答，如果知识库中的信息不足，可以适当补充你的理解。`

// Fixed replies that never reach the model.
const (
	noKnowledgeMessage  = "抱歉，我在知识库中没有找到相关信息。您可以换个方式提问。"
	modelFailureMessage = "抱歉，生成回答时出现问题，请稍后再试。"
)

// Answer is the final result of one query.
type Answer struct {
	Text  string `json:"answer"`
	Route Route  `json:"route"`
	Tool  string `json:"tool,omitempty"`
}

// Orchestrator glues router, tools, retriever and the language model into
// one synchronous answer per query. Stateless per call.
type Orchestrator struct {
	router    *Router
	registry  *Registry
	retriever *rag.Retriever
	llm       Client
	logger    zerolog.Logger
}

// NewOrchestrator creates the orchestrator. Construction order upstream is:
// load the knowledge index, build the registry, then construct this.
func NewOrchestrator(router *Router, registry *Registry, retriever *rag.Retriever, llm Client, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		router:    router,
		registry:  registry,
		retriever: retriever,
		llm:       llm,
		logger:    logger,
	}
}

// Query answers one query. Every failure path resolves to displayable text;
// only a nil orchestrator dependency could make this return an error text
// about the tool rather than an answer.
func (o *Orchestrator) Query(ctx context.Context, query string) *Answer {
	decision := o.router.Route(query)

	prompt, direct := o.groundingPrompt(ctx, query, decision)
	answer := &Answer{Route: decision.Route, Tool: decision.Tool}

	if direct != "" {
		answer.Text = direct
		return answer
	}

	start := time.Now()
	text, err := o.llm.Generate(ctx, prompt)
	logging.LogModelCall(o.logger, o.llm.Name(), len(prompt), time.Since(start), err)
	if err != nil {
		// No automatic retry; the host integration owns retry policy.
		answer.Text = modelFailureMessage
		return answer
	}

	answer.Text = text
	return answer
}

// QueryStream answers one query as a chunk stream. Short-circuit replies
// come back as a single-chunk stream so callers handle one shape.
func (o *Orchestrator) QueryStream(ctx context.Context, query string) (*Answer, <-chan string, error) {
	decision := o.router.Route(query)
	answer := &Answer{Route: decision.Route, Tool: decision.Tool}

	prompt, direct := o.groundingPrompt(ctx, query, decision)
	if direct != "" {
		answer.Text = direct
		out := make(chan string, 1)
		out <- direct
		close(out)
		return answer, out, nil
	}

	stream, err := o.llm.GenerateStream(ctx, prompt)
	if err != nil {
		o.logger.Error().Err(err).
			Str("provider", o.llm.Name()).
			Msg("model stream failed")
		out := make(chan string, 1)
		out <- modelFailureMessage
		close(out)
		answer.Text = modelFailureMessage
		return answer, out, nil
	}

	return answer, stream, nil
}

// groundingPrompt builds the model prompt for a decision. When the query
// resolves without the model (knowledge miss), the second return value is
// the final reply.
func (o *Orchestrator) groundingPrompt(ctx context.Context, query string, decision Decision) (prompt, direct string) {
	switch decision.Route {
	case RouteKnowledge:
		knowledge := o.retriever.RelevantKnowledge(query)
		if knowledge == "" {
			return "", noKnowledgeMessage
		}
		return fmt.Sprintf(knowledgePrompt, query, knowledge), ""

	case RouteTool:
		result := o.registry.Invoke(ctx, decision.Tool, decision.Args)
		return fmt.Sprintf(toolPrompt, query, result), ""

	default:
		// Unreached under the current routing policy, which defaults to a
		// tool route; kept as the fallback branch.
		return query, ""
	}
}
