// Package server provides the HTTP front end over the orchestrator.
package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stock-advisor/internal/agent"
	"stock-advisor/internal/rag"
	"stock-advisor/internal/store"
)

// Server exposes the advisor over HTTP: one-shot answers, streamed answers,
// the stock universe and a health probe.
type Server struct {
	orch      *agent.Orchestrator
	prices    store.PriceStore
	retriever *rag.Retriever
	llmName   string
	logger    zerolog.Logger
	engine    *gin.Engine
}

// New creates the HTTP server around an orchestrator.
func New(orch *agent.Orchestrator, prices store.PriceStore, retriever *rag.Retriever, llmName string, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		orch:      orch,
		prices:    prices,
		retriever: retriever,
		llmName:   llmName,
		logger:    logger,
		engine:    gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/chat/stream", s.handleChatStream)
	s.engine.GET("/stocks", s.handleStocks)
	s.engine.GET("/health", s.handleHealth)
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("http server listening")
	return s.engine.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

type chatRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	answer := s.orch.Query(c.Request.Context(), req.Query)
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleChatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	answer, chunks, err := s.orch.QueryStream(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "answer generation failed"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Route", string(answer.Route))

	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-chunks
		if !ok {
			c.SSEvent("done", "")
			return false
		}
		c.SSEvent("chunk", chunk)
		return true
	})
}

func (s *Server) handleStocks(c *gin.Context) {
	stocks, err := s.prices.ListStocks(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("listing stocks failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stocks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": stocks, "count": len(stocks)})
}

func (s *Server) handleHealth(c *gin.Context) {
	stocks, err := s.prices.ListStocks(c.Request.Context())
	status := "ok"
	if err != nil {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"stocks":    len(stocks),
		"knowledge": s.retriever.Size(),
		"llm":       s.llmName,
	})
}
