package scheduler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"newera.app/reentry/pkg/response"
)

// Handler exposes registered jobs to administrators.
type Handler struct {
	scheduler *Scheduler
}

func NewHandler(s *Scheduler) *Handler {
	return &Handler{scheduler: s}
}

func (h *Handler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.scheduler.Jobs()})
}

// RunJob runs the named job synchronously, e.g. to rebuild the search index
// right after a bulk import.
func (h *Handler) RunJob(c *gin.Context) {
	name := c.Param("name")
	if err := h.scheduler.RunByName(c.Request.Context(), name); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": name, "status": "completed"})
}
