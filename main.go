package main

import (
	"log"
	"net/http"
	"time"

	"github.com/Itish41/LexReview/client"
	"github.com/Itish41/LexReview/config"
	"github.com/Itish41/LexReview/controller"
	"github.com/Itish41/LexReview/initializers"
	"github.com/Itish41/LexReview/middleware"
	model "github.com/Itish41/LexReview/models"
	"github.com/Itish41/LexReview/repository"
	service "github.com/Itish41/LexReview/service"

	"github.com/gin-gonic/gin"
)

func init() {
	if err := initializers.LoadEnv(); err != nil {
		log.Fatalf("[CRITICAL] Failed to load env: %s", err)
	}
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("[CRITICAL] Failed to load config: %s", err)
	}

	prefs, err := repository.NewPreferenceStore(cfg.Storage.PreferencesPath)
	if err != nil {
		log.Fatalf("[CRITICAL] Failed to open preference store: %s", err)
	}
	defer prefs.Close()

	backend := client.NewBackendClient(cfg.Backend.BaseURL, cfg.BackendTimeout())

	progress := func(stage model.Stage, percent int, status string) {
		log.Printf("[%s] %d%% %s", stage, percent, status)
	}
	workflowService := service.NewWorkflowService(backend, progress)

	surface := controller.NewBrowserSurface()
	sink := controller.NewDownloadSink()
	editorService := service.NewEditorService(backend, controller.SurfaceFactoryFor(surface), sink, workflowService.SetEditedContent)

	console := controller.NewConsoleController(workflowService, editorService, prefs, surface, sink)

	globalLimiter := middleware.NewRateLimiter(cfg.RateLimit.GlobalPerMinute, 1*time.Minute)
	strictLimiter := middleware.NewRateLimiter(cfg.RateLimit.StrictPerMinute, 1*time.Minute)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(globalLimiter.Limit())

	// Workflow stages
	router.POST("/workflow/upload",
		strictLimiter.Limit(),
		console.UploadDocument)
	router.POST("/workflow/module", console.CreateModule)
	router.POST("/workflow/review",
		strictLimiter.Limit(),
		console.RunReview)
	router.POST("/workflow/cleanup/rerun",
		strictLimiter.Limit(),
		console.RerunCleanup)
	router.GET("/workflow/session", console.GetSession)
	router.POST("/workflow/navigate", console.Navigate)

	// Side entry from history and documents lists
	router.POST("/workflow/open/report/:id", console.OpenReport)
	router.POST("/workflow/open/module/:id", console.OpenModule)
	router.POST("/workflow/open/cleanup/:id", console.OpenCleanup)

	// Browse endpoints
	router.GET("/documents", console.ListDocuments)
	router.GET("/history", console.ReviewHistory)
	router.GET("/cleanup/history", console.CleanupHistory)
	router.GET("/laws/categories", console.LawCategories)

	// Editor
	router.POST("/editor/open", console.OpenEditor)
	router.POST("/editor/language", console.SwitchLanguage)
	router.PUT("/editor/save",
		strictLimiter.Limit(),
		console.SaveContent)
	router.POST("/editor/export",
		strictLimiter.Limit(),
		console.ExportContent)
	router.GET("/editor/annotated", console.AnnotatedContent)
	router.POST("/editor/close", console.CloseEditor)

	// Display theme preference
	router.GET("/theme", console.GetTheme)
	router.PUT("/theme", console.SetTheme)

	// Healthcheck endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	log.Printf("Review console listening on %s (backend: %s)", cfg.Address(), cfg.Backend.BaseURL)
	if err := router.Run(cfg.Address()); err != nil {
		log.Fatalf("[CRITICAL] Server stopped: %s", err)
	}
}
