package controller

import (
	"log"
	"net/http"
	"regexp"
	"sync"

	"github.com/Itish41/LexReview/annotate"
	model "github.com/Itish41/LexReview/models"
	service "github.com/Itish41/LexReview/service"

	"github.com/gin-gonic/gin"
)

// browserSurface bridges the rich-text widget running in the browser.
// Requests deliver the widget's current serialized content inbound; the
// synchronizer's SetContent becomes the outbound content the response tells
// the widget to display.
type browserSurface struct {
	mu       sync.Mutex
	content  string
	outbound string
	live     bool
}

// NewBrowserSurface creates the bridge shared between controller and editor
// service.
func NewBrowserSurface() *browserSurface {
	return &browserSurface{}
}

// deliver records the widget content carried by an incoming request. Empty
// content is a real value: the user may have cleared the document.
func (b *browserSurface) deliver(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = html
}

// takeOutbound returns the content the widget should display next.
func (b *browserSurface) takeOutbound() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outbound
}

func (b *browserSurface) SetContent(html string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = html
	b.outbound = html
	b.live = true
	return nil
}

func (b *browserSurface) Content() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content, nil
}

var markupTags = regexp.MustCompile(`<[^>]+>`)

func (b *browserSurface) PlainText() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return markupTags.ReplaceAllString(b.content, ""), nil
}

func (b *browserSurface) Destroy() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = ""
	b.outbound = ""
	b.live = false
	return nil
}

// bridgeFactory hands out the shared browser bridge. The widget lives in the
// browser, so acquiring a surface reuses the one bridge instead of creating
// anything.
type bridgeFactory struct {
	surface *browserSurface
}

func (f bridgeFactory) Acquire() (service.EditorSurface, error) {
	return f.surface, nil
}

// SurfaceFactoryFor wraps the browser bridge as the editor's surface factory.
func SurfaceFactoryFor(surface *browserSurface) service.SurfaceFactory {
	return bridgeFactory{surface: surface}
}

// downloadSink implements the file-download boundary for HTTP: the exported
// artifact is captured and then streamed back as an attachment.
type downloadSink struct {
	mu          sync.Mutex
	filename    string
	contentType string
	data        []byte
}

// NewDownloadSink creates the download boundary shared between controller
// and editor service.
func NewDownloadSink() *downloadSink {
	return &downloadSink{}
}

func (d *downloadSink) Save(filename, contentType string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filename = filename
	d.contentType = contentType
	d.data = data
	return nil
}

func (d *downloadSink) take() (string, string, []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	filename, contentType, data := d.filename, d.contentType, d.data
	d.filename, d.contentType, d.data = "", "", nil
	return filename, contentType, data
}

// editorRequest carries the widget's serialized content inbound. CurrentHTML
// is a pointer so an absent field (nothing to report) stays distinguishable
// from an empty string (the user cleared the document).
type editorRequest struct {
	Language    string  `json:"language"`
	CurrentHTML *string `json:"current_html"`
}

// deliverCurrent forwards the widget content to the surface when the request
// carried any.
func (c *ConsoleController) deliverCurrent(req editorRequest) {
	if req.CurrentHTML != nil {
		c.surface.deliver(*req.CurrentHTML)
	}
}

// OpenEditor moves the session into the editor and initializes the surface
// with the active cleanup's default language.
func (c *ConsoleController) OpenEditor(ctx *gin.Context) {
	res, err := c.workflow.OpenEditor()
	if err != nil {
		surfaceError(ctx, err)
		return
	}
	if err := c.editor.Load(res); err != nil {
		surfaceError(ctx, err)
		return
	}
	if err := c.editor.Activate(model.LanguageIndonesian); err != nil {
		surfaceError(ctx, err)
		return
	}
	c.workflow.SetActiveLanguage(model.LanguageIndonesian)

	ctx.JSON(http.StatusOK, gin.H{
		"language": model.LanguageIndonesian,
		"content":  c.surface.takeOutbound(),
	})
}

// SwitchLanguage captures the widget's current content into the outgoing
// buffer and activates the other language variant.
func (c *ConsoleController) SwitchLanguage(ctx *gin.Context) {
	var req editorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lang := model.Language(req.Language)
	if !lang.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown language"})
		return
	}

	c.deliverCurrent(req)
	if err := c.editor.Activate(lang); err != nil {
		surfaceError(ctx, err)
		return
	}
	c.workflow.SetActiveLanguage(lang)

	ctx.JSON(http.StatusOK, gin.H{
		"language": lang,
		"content":  c.surface.takeOutbound(),
	})
}

// SaveContent captures the widget's content and persists the active buffer
// to the backend. Local edits survive a failed save.
func (c *ConsoleController) SaveContent(ctx *gin.Context) {
	var req editorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.deliverCurrent(req)
	if err := c.editor.Save(ctx.Request.Context()); err != nil {
		surfaceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Content saved successfully",
		"status":  c.editor.Status(c.editor.ActiveLanguage()),
	})
}

// ExportContent captures the widget's content, wraps it in a standalone
// print-oriented document, and streams it back as a download.
func (c *ConsoleController) ExportContent(ctx *gin.Context) {
	var req editorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.deliverCurrent(req)
	if err := c.editor.Export(); err != nil {
		surfaceError(ctx, err)
		return
	}

	filename, contentType, data := c.sink.take()
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, contentType, data)
}

// AnnotatedContent renders the active cleanup's original text with issue
// highlights, plus the per-issue display metadata.
func (c *ConsoleController) AnnotatedContent(ctx *gin.Context) {
	sess := c.workflow.Session()
	if sess.ActiveCleanup == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "No cleanup result in session"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"annotated_html": annotate.AnnotateContent(sess.ActiveCleanup.OriginalContent, sess.ActiveCleanup.Issues),
		"issues":         annotate.IssueViews(sess.ActiveCleanup.Issues),
		"change_summary": sess.ActiveCleanup.ChangeSummary,
		"open_items":     sess.ActiveCleanup.OpenItems,
	})
}

// CloseEditor releases the editing surface. The surface is released on every
// exit path, even when the final capture fails.
func (c *ConsoleController) CloseEditor(ctx *gin.Context) {
	if err := c.editor.CaptureActive(); err != nil {
		log.Printf("Capture on editor close failed: %v", err)
	}
	c.editor.Teardown()
	ctx.JSON(http.StatusOK, gin.H{"message": "Editor closed"})
}
