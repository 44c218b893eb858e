package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/addisbingo/bingo-backend/config"
	"github.com/addisbingo/bingo-backend/controllers"
	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/ledger"
	"github.com/addisbingo/bingo-backend/routes"
	"github.com/addisbingo/bingo-backend/services"
	"github.com/addisbingo/bingo-backend/utils/logger"
)

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg *config.Config, registry *game.Registry, hub *services.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r)

	// Payment notification channel
	r.POST("/webhook/deposit", controllers.DepositWebhook)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket session stream
	r.GET("/ws/sessions/:id", hub.StreamHandler(registry))

	return r
}

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("loading config: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("setting up database: %v", err)
	}
	logger.Info("database connected and migrated")

	registry := game.NewRegistry(cfg.StakeTiers, cfg.MinPlayers)
	ledgerSvc := ledger.NewService(ledger.NewGormStore(db), logger.Log, ledger.Limits{
		MinDeposit:    cfg.MinDeposit,
		MaxDeposit:    cfg.MaxDeposit,
		MinWithdrawal: cfg.MinWithdrawal,
	})
	hub := services.NewHub()
	controllers.Init(registry, ledgerSvc, hub)

	janitor := services.NewJanitor(registry, ledgerSvc, cfg.PendingDepositTTL, cfg.FinishedSessionTTL)
	if err := janitor.Start(); err != nil {
		logger.Log.Fatalf("starting janitor: %v", err)
	}
	defer janitor.Stop()

	router := setupRouter(cfg, registry, hub)

	logger.Infof("bingo backend listening on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatalf("server stopped: %v", err)
	}
}
