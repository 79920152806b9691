package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListDocuments returns all previously uploaded documents.
func (c *ConsoleController) ListDocuments(ctx *gin.Context) {
	docs, err := c.workflow.ListDocuments(ctx.Request.Context())
	if err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

// ReviewHistory returns all past compliance reviews.
func (c *ConsoleController) ReviewHistory(ctx *gin.Context) {
	items, err := c.workflow.ReviewHistory(ctx.Request.Context())
	if err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"history": items,
		"total":   len(items),
	})
}

// CleanupHistory returns all past cleanup analyses.
func (c *ConsoleController) CleanupHistory(ctx *gin.Context) {
	items, err := c.workflow.CleanupHistory(ctx.Request.Context())
	if err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"history": items,
		"total":   len(items),
	})
}

// LawCategories returns the backend's law categories for the focus-area
// picker.
func (c *ConsoleController) LawCategories(ctx *gin.Context) {
	categories, err := c.workflow.LawCategories(ctx.Request.Context())
	if err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

// GetTheme returns the persisted display theme.
func (c *ConsoleController) GetTheme(ctx *gin.Context) {
	theme, err := c.prefs.GetTheme()
	if err != nil {
		log.Printf("Error reading theme preference: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read theme"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"theme": theme})
}

// SetTheme persists the display theme.
func (c *ConsoleController) SetTheme(ctx *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := c.prefs.SetTheme(req.Theme); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"theme": req.Theme})
}
