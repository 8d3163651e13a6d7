package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seithar/autoprompt/app/report"
	"github.com/seithar/autoprompt/app/suggest"
	"github.com/seithar/autoprompt/app/task"
)

// RunProvider exposes the latest pipeline outputs.
type RunProvider interface {
	LastReport() *report.Report
	LastTasks() []task.Task
	LastSuggestions() []suggest.Suggestion
}

// RunTrigger requests an immediate pipeline run.
type RunTrigger interface {
	Trigger() error
}

type Handler struct {
	provider  RunProvider
	trigger   RunTrigger
	feedCount int
	version   string
}

func NewHandler(provider RunProvider, trigger RunTrigger, feedCount int, version string) *Handler {
	return &Handler{
		provider:  provider,
		trigger:   trigger,
		feedCount: feedCount,
		version:   version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"feeds":     h.feedCount,
	}

	if r := h.provider.LastReport(); r != nil {
		health["last_run"] = r.RunAt.Format(time.RFC3339)
		health["papers_found"] = r.PapersFound
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetReport(c *gin.Context) {
	r := h.provider.LastReport()
	if r == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report available yet"})
		return
	}

	c.JSON(http.StatusOK, r)
}

func (h *Handler) GetTasks(c *gin.Context) {
	tasks := h.provider.LastTasks()
	if tasks == nil {
		tasks = []task.Task{}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (h *Handler) GetSuggestions(c *gin.Context) {
	suggestions := h.provider.LastSuggestions()
	if suggestions == nil {
		suggestions = []suggest.Suggestion{}
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"total":       len(suggestions),
	})
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if err := h.trigger.Trigger(); err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Failed to trigger run",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Pipeline run triggered",
	})
}
