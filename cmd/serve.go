package cmd

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/interview"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening assistant as an HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (overrides server.address)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

// sessionMap holds one engine per in-flight interview. Each engine serializes
// its own turns; the map lock only guards membership.
type sessionMap struct {
	mu      sync.Mutex
	engines map[string]*sessionEntry
}

// sessionEntry wraps an engine with a per-session lock so concurrent
// messages for the same session cannot interleave a turn.
type sessionEntry struct {
	mu     sync.Mutex
	engine *interview.Engine
}

func newSessionMap() *sessionMap {
	return &sessionMap{engines: make(map[string]*sessionEntry)}
}

func (m *sessionMap) add(e *interview.Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.engines[e.SessionID()] = &sessionEntry{engine: e}
}

func (m *sessionMap) get(id string) (*sessionEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.engines[id]
	return entry, ok
}

type server struct {
	sessions  *sessionMap
	store     store.Store
	completer ai.Completer
	config    *Config
	logger    *zap.Logger
}

func serve(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if err := config.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st, closeStore, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}
	defer closeStore()

	s := &server{
		sessions:  newSessionMap(),
		store:     st,
		completer: newCompleter(ctx, config, logger),
		config:    config,
		logger:    logger,
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: config.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	router.GET("/health", s.health)
	router.GET("/api/diagnostics", s.diagnostics)

	chat := router.Group("/api/chat")
	{
		chat.POST("/start", s.startChat)
		chat.POST("/message", s.postMessage)
		chat.GET("/:id/summary", s.chatSummary)
	}

	candidates := router.Group("/api/candidates")
	{
		candidates.GET("", s.listCandidates)
		candidates.GET("/stats", s.candidateStats)
	}

	logger.Info("starting the api server", zap.String("address", config.Server.Address))

	if err := router.Run(config.Server.Address); err != nil {
		logger.Fatal("running the api server", zap.Error(err))
	}
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
}

func (s *server) startChat(c *gin.Context) {
	engine := newEngine(s.completer, s.store, s.config, s.logger)
	s.sessions.add(engine)

	c.JSON(http.StatusOK, gin.H{
		"session_id": engine.SessionID(),
		"message":    engine.Greeting(c.Request.Context()),
	})
}

type messageRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

func (s *server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, ok := s.sessions.get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	entry.mu.Lock()
	response := entry.engine.ProcessMessage(c.Request.Context(), req.Message)
	stage := entry.engine.Stage()
	entry.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"session_id": req.SessionID,
		"message":    response,
		"stage":      stage,
	})
}

func (s *server) chatSummary(c *gin.Context) {
	entry, ok := s.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}

	entry.mu.Lock()
	summary := entry.engine.Summary()
	entry.mu.Unlock()

	c.JSON(http.StatusOK, summary)
}

func (s *server) diagnostics(c *gin.Context) {
	// A throwaway engine probes the completion service without touching any
	// live session.
	probe := newEngine(s.completer, s.store, s.config, s.logger)

	c.JSON(http.StatusOK, probe.RunDiagnostics(c.Request.Context()))
}

func (s *server) listCandidates(c *gin.Context) {
	records, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		s.logger.Error("loading candidates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading candidates"})
		return
	}

	if email := c.Query("email"); email != "" {
		c.JSON(http.StatusOK, store.FindByEmail(records, email))
		return
	}

	c.JSON(http.StatusOK, records)
}

func (s *server) candidateStats(c *gin.Context) {
	records, err := s.store.LoadAll(c.Request.Context())
	if err != nil {
		s.logger.Error("loading candidates", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading candidates"})
		return
	}

	c.JSON(http.StatusOK, store.Stats(records))
}
