package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/analysis"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/config"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/database"
	apperrors "github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/monitoring"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/ratelimit"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	configPath := getEnvOrDefault("CONFIG_PATH", "./config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize results store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	engine, err := analysis.NewEngine(cfg.Analysis, appLogger)
	if err != nil {
		slog.Error("Invalid analysis configuration", "error", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogging(appLogger))
	r.Use(apperrors.ErrorHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	limiter := ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	api := r.Group("/api/v1")
	{
		api.POST("/analyze", limiter.Middleware(), handleAnalyze(engine, repo))
		api.GET("/runs/latest", handleLatestRun(repo))
		api.GET("/runs/:id", handleGetRun(repo))
		api.GET("/runs/:id/top-risk", handleTopRisk(repo))
		api.GET("/runs/:id/drivers", handleDrivers(repo))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
}

// handleAnalyze runs the full analysis pipeline over a posted deal batch,
// persists the report, and returns it with its run ID.
func handleAnalyze(engine *analysis.Engine, repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperrors.NewValidationError("request body must be a JSON deal batch: " + err.Error()))
			return
		}
		for _, d := range req.Deals {
			if err := d.Validate(); err != nil {
				c.Error(apperrors.NewValidationError(err.Error()))
				return
			}
		}

		report, err := engine.Run(req.Deals)
		if err != nil {
			c.Error(err)
			return
		}

		runID, err := repo.SaveReport(report)
		if err != nil {
			c.Error(apperrors.NewStorageError("failed to persist analysis run", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"run_id": runID,
			"report": report,
		})
	}
}

func handleLatestRun(repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := repo.LatestRun()
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no analysis runs stored yet"})
				return
			}
			c.Error(apperrors.NewStorageError("failed to load latest run", err))
			return
		}
		respondWithRun(c, rec)
	}
}

func handleGetRun(repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := repo.GetRun(c.Param("id"))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
				return
			}
			c.Error(apperrors.NewStorageError("failed to load run", err))
			return
		}
		respondWithRun(c, rec)
	}
}

func handleTopRisk(repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := strconv.Atoi(c.DefaultQuery("n", "10"))
		if err != nil || n < 1 || n > 500 {
			c.Error(apperrors.NewValidationError("n must be an integer between 1 and 500"))
			return
		}
		deals, err := repo.TopRiskDeals(c.Param("id"), n)
		if err != nil {
			c.Error(apperrors.NewStorageError("failed to load top risk deals", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"run_id": c.Param("id"), "deals": deals})
	}
}

func handleDrivers(repo *database.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		drivers, err := repo.DriverResults(c.Param("id"))
		if err != nil {
			c.Error(apperrors.NewStorageError("failed to load driver results", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"run_id": c.Param("id"), "drivers": drivers})
	}
}

func respondWithRun(c *gin.Context, rec *database.RunRecord) {
	report, err := rec.Report()
	if err != nil {
		c.Error(apperrors.NewStorageError("stored report is unreadable", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id": rec.ID,
		"report": report,
	})
}

// requestLogging logs each request through the structured logger.
func requestLogging(logger *monitoring.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(),
			c.Writer.Status(), time.Since(start))
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
