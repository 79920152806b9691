package controller

import (
	"errors"
	"log"
	"net/http"

	model "github.com/Itish41/LexReview/models"
	"github.com/Itish41/LexReview/repository"
	service "github.com/Itish41/LexReview/service"

	"github.com/gin-gonic/gin"
)

// ConsoleController manages HTTP requests from the browser UI and drives the
// review workflow.
type ConsoleController struct {
	workflow *service.WorkflowService
	editor   *service.EditorService
	prefs    *repository.PreferenceStore
	surface  *browserSurface
	sink     *downloadSink
}

// NewConsoleController initializes the controller with its services and the
// two editor-side bridges.
func NewConsoleController(
	workflow *service.WorkflowService,
	editor *service.EditorService,
	prefs *repository.PreferenceStore,
	surface *browserSurface,
	sink *downloadSink,
) *ConsoleController {
	return &ConsoleController{
		workflow: workflow,
		editor:   editor,
		prefs:    prefs,
		surface:  surface,
		sink:     sink,
	}
}

// surfaceError reports a failed operation with its single user-visible
// message; stage fallbacks already happened inside the workflow.
func surfaceError(ctx *gin.Context, err error) {
	var stageErr *service.StageError
	if errors.As(err, &stageErr) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": stageErr.Message()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// UploadDocument handles the file upload request and runs the upload ->
// cleanup (or module) pipeline.
func (c *ConsoleController) UploadDocument(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get file from request"})
		return
	}
	defer file.Close()

	if err := c.workflow.StartUpload(ctx.Request.Context(), header.Filename, file); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Document uploaded and processed successfully",
		"session": c.workflow.Session(),
	})
}

// CreateModule requests training module creation for the active document
// (the "skip cleanup" branch).
func (c *ConsoleController) CreateModule(ctx *gin.Context) {
	if err := c.workflow.CreateModule(ctx.Request.Context()); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": c.workflow.Session()})
}

// RunReview starts a compliance review with an optional focus-area filter.
func (c *ConsoleController) RunReview(ctx *gin.Context) {
	var req struct {
		FocusAreas []string `json:"focus_areas"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := c.workflow.RunReview(ctx.Request.Context(), req.FocusAreas); err != nil {
		surfaceError(ctx, err)
		return
	}

	sess := c.workflow.Session()
	ctx.JSON(http.StatusOK, gin.H{
		"session": sess,
		"report":  service.BuildReportView(sess.ActiveReport),
	})
}

// RerunCleanup re-requests the cleanup analysis for the active document.
func (c *ConsoleController) RerunCleanup(ctx *gin.Context) {
	if err := c.workflow.RerunCleanup(ctx.Request.Context()); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": c.workflow.Session()})
}

// GetSession returns the current session snapshot.
func (c *ConsoleController) GetSession(ctx *gin.Context) {
	sess := c.workflow.Session()
	ctx.JSON(http.StatusOK, gin.H{
		"session": sess,
		"report":  service.BuildReportView(sess.ActiveReport),
	})
}

// OpenReport jumps into an existing document's compliance report.
func (c *ConsoleController) OpenReport(ctx *gin.Context) {
	documentID := ctx.Param("id")
	if documentID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Document ID required"})
		return
	}
	if err := c.workflow.OpenReport(ctx.Request.Context(), documentID); err != nil {
		surfaceError(ctx, err)
		return
	}
	sess := c.workflow.Session()
	ctx.JSON(http.StatusOK, gin.H{
		"session": sess,
		"report":  service.BuildReportView(sess.ActiveReport),
	})
}

// OpenModule jumps into an existing document's training module.
func (c *ConsoleController) OpenModule(ctx *gin.Context) {
	documentID := ctx.Param("id")
	if documentID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Document ID required"})
		return
	}
	if err := c.workflow.OpenModule(ctx.Request.Context(), documentID); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": c.workflow.Session()})
}

// OpenCleanup jumps into an existing document's cleanup result.
func (c *ConsoleController) OpenCleanup(ctx *gin.Context) {
	documentID := ctx.Param("id")
	if documentID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Document ID required"})
		return
	}
	if err := c.workflow.OpenCleanup(ctx.Request.Context(), documentID); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": c.workflow.Session()})
}

// Navigate moves between the resting screens. Leaving the editor releases
// the editing surface on every exit path.
func (c *ConsoleController) Navigate(ctx *gin.Context) {
	var req struct {
		Stage string `json:"stage" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if c.workflow.Session().Stage == model.StageEditor {
		c.editor.Teardown()
	}
	if err := c.workflow.Navigate(model.Stage(req.Stage)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("Navigated to %s", req.Stage)
	ctx.JSON(http.StatusOK, gin.H{"session": c.workflow.Session()})
}
