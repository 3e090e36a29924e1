package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/mazo/internal/auth"
)

// NewRouter builds the gin engine with every configured route.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogging {
		router.Use(gin.Logger())
	}
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.EnableHSTS {
		router.Use(auth.StrictTransportSecurityMiddleware(0))
	}

	health := NewHealthController(cfg.Database, cfg.Store, cfg.Version)
	router.GET("/ping", health.Ping)
	router.GET("/health", health.Health)
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")

	if cfg.Content != nil {
		content := NewContentController(cfg.Content)
		api.POST("/cards", content.AddCard)
		api.DELETE("/cards", content.DeleteCard)
		api.POST("/exercises", content.AddExercise)
		api.DELETE("/exercises", content.DeleteExercise)
	}

	if cfg.Decks != nil {
		decks := NewDecksController(cfg.Decks)
		api.POST("/decks", decks.CreateDeck)
	}

	if cfg.Learner != nil {
		learner := NewLearnerController(cfg.Learner)
		api.GET("/learner", learner.GetView)
		api.POST("/users", learner.RegisterUser)
		api.POST("/progress/enroll", learner.Enroll)
		api.POST("/progress/review", learner.RecordReview)
		api.POST("/sessions", learner.StartSession)
	}

	if cfg.Workspace != nil {
		workspace := NewWorkspaceController(cfg.Workspace)
		api.POST("/workspace", workspace.Provision)
	}

	if cfg.Leads != nil {
		leads := NewLeadsController(cfg.Leads)
		api.POST("/leads", leads.Register)
		api.PATCH("/leads", leads.Complete)
		api.POST("/newsletter", leads.Subscribe)
	}

	if cfg.Speech != nil {
		speech := NewSpeechController(cfg.Speech)
		api.POST("/speech", speech.Synthesize)
	}

	if cfg.Admin != nil && cfg.Intents != nil && cfg.Reconciler != nil {
		admin := NewAdminController(cfg.Intents, cfg.Reconciler, cfg.TaskQueue)
		group := api.Group("/admin", cfg.Admin.Handler())
		group.GET("/intents", admin.ListIntents)
		group.GET("/intents/:id", admin.GetIntent)
		group.POST("/reconcile", admin.Reconcile)
	}

	return router
}
