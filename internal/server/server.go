package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinvec/clinvec/internal/coding"
	"github.com/clinvec/clinvec/internal/config"
	"github.com/clinvec/clinvec/internal/index"
	"github.com/clinvec/clinvec/internal/llm"
)

type Server struct {
	Coding       *coding.Service
	DefaultLimit int
}

// NewServer wires the suggestion service from config. The embedder and
// index client are constructed lazily on the first suggest call, so the
// process starts cleanly even while Qdrant is still coming up; a missing
// LLM credential only disables decomposition, never startup.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using built-in defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	// Client construction is cheap; real work (and real failures) happen
	// per call. No API key means the decomposer stays on the identity path.
	var decomposer coding.Decomposer = coding.IdentityDecomposer{}
	if cfg.LLM.APIKey != "" || cfg.LLM.Provider == "ollama" {
		llmClient, _, err := llm.NewClient(context.Background(), cfg.LLM)
		if err != nil {
			log.Printf("LLM client unavailable, decomposition disabled: %v", err)
		} else {
			decomposer = coding.NewLLMDecomposer(llmClient, cfg.Coding.MaxSubQueries, logger)
		}
	}

	init := func(ctx context.Context) (llm.EmbedderClient, coding.Searcher, error) {
		_, embedder, err := llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			return nil, nil, err
		}
		searcher, err := index.New(index.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: cfg.Qdrant.Collection,
		})
		if err != nil {
			return nil, nil, err
		}
		return embedder, searcher, nil
	}

	svc := coding.NewService(init, decomposer, coding.Options{
		MaxLimit: cfg.Coding.MaxLimit,
		Timeout:  time.Duration(cfg.Coding.TimeoutSecs) * time.Second,
	}, logger)

	defaultLimit := cfg.Coding.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = coding.DefaultLimit
	}

	return &Server{Coding: svc, DefaultLimit: defaultLimit}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/suggest", s.Suggest)
	r.GET("/healthz", s.Health)

	return r
}

type SuggestRequest struct {
	Text string `json:"text"`
	// Limit is a pointer so "absent" and "zero" stay distinguishable:
	// absent means the default, zero means an intentionally empty result.
	Limit         *int `json:"limit"`
	UseRefinement bool `json:"use_refinement"`
}

// errorBody is the failure half of the response envelope. A response holds
// either suggestions or an error, never both.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Kind: "invalid_input", Message: "malformed request body"}})
		return
	}

	limit := s.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	results, err := s.Coding.Suggest(c.Request.Context(), req.Text, limit, req.UseRefinement)
	if err != nil {
		kind := coding.Kind(err)
		c.JSON(statusFor(kind), gin.H{"error": errorBody{Kind: kind, Message: err.Error()}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": results})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(kind string) int {
	switch kind {
	case "invalid_input":
		return http.StatusBadRequest
	case "index_unavailable":
		return http.StatusServiceUnavailable
	case "embedding_error", "suggestion_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
