package gin

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fwojciec/llmfetch"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerJobRoutes(r *gin.RouterGroup) {
	r.GET("", s.handleJobIndex)
	r.POST("", s.handleJobCreate)
	r.GET("/:id", s.handleJobRows)
	r.GET("/:id/meta", s.handleJobView)
	r.DELETE("/:id", s.handleJobDelete)
	r.POST("/:id/scrape", s.handleJobScrape)
	r.GET("/:id/rows/:rowId", s.handleRowView)
	r.DELETE("/:id/rows/:rowId", s.handleRowDelete)
}

// createJobRequest is the body of POST /jobs.
type createJobRequest struct {
	Fields []string `json:"fields"`
	URL    string   `json:"url"`
}

// handleJobIndex handles GET /jobs.
func (s *Server) handleJobIndex(c *gin.Context) {
	jobs, err := s.JobService.FindJobs(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if jobs == nil {
		jobs = []*llmfetch.Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

// handleJobCreate handles POST /jobs.
func (s *Server) handleJobCreate(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		renderError(c, llmfetch.Errorf(llmfetch.EINVALID, "invalid JSON body"))
		return
	}
	if len(req.Fields) == 0 {
		renderError(c, llmfetch.Errorf(llmfetch.EINVALID, "fields array required"))
		return
	}

	job := &llmfetch.Job{Fields: req.Fields, SourceURL: req.URL}
	if err := s.JobService.CreateJob(c.Request.Context(), job); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": job.ID})
}

// handleJobRows handles GET /jobs/:id and returns the job's rows.
func (s *Server) handleJobRows(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := s.JobService.FindJobByID(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}

	rows, err := s.JobService.FindRows(c.Request.Context(), id, llmfetch.RowFilter{})
	if err != nil {
		renderError(c, err)
		return
	}
	if rows == nil {
		rows = []*llmfetch.Row{}
	}
	c.JSON(http.StatusOK, rows)
}

// handleJobView handles GET /jobs/:id/meta.
func (s *Server) handleJobView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	job, err := s.JobService.FindJobByID(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// handleJobDelete handles DELETE /jobs/:id.
func (s *Server) handleJobDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := s.JobService.DeleteJob(c.Request.Context(), id)
	if err != nil {
		renderError(c, err)
		return
	}
	if !deleted {
		renderError(c, llmfetch.Errorf(llmfetch.ENOTFOUND, "not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleJobScrape handles POST /jobs/:id/scrape. An empty body scrapes
// the job's source URL for all of its fields.
func (s *Server) handleJobScrape(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req llmfetch.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		renderError(c, llmfetch.Errorf(llmfetch.EINVALID, "invalid JSON body"))
		return
	}
	req.JobID = id

	result, err := s.Scraper.Scrape(c.Request.Context(), req)
	if err != nil {
		renderErrorAs(c, err, "scraping failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleRowView handles GET /jobs/:id/rows/:rowId.
func (s *Server) handleRowView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rowID, ok := parseID(c, "rowId")
	if !ok {
		return
	}

	rows, err := s.JobService.FindRows(c.Request.Context(), id, llmfetch.RowFilter{ID: &rowID})
	if err != nil {
		renderError(c, err)
		return
	}
	if len(rows) == 0 {
		renderError(c, llmfetch.Errorf(llmfetch.ENOTFOUND, "not found"))
		return
	}
	c.JSON(http.StatusOK, rows[0])
}

// handleRowDelete handles DELETE /jobs/:id/rows/:rowId.
func (s *Server) handleRowDelete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rowID, ok := parseID(c, "rowId")
	if !ok {
		return
	}

	deleted, err := s.JobService.DeleteRow(c.Request.Context(), id, rowID)
	if err != nil {
		renderError(c, err)
		return
	}
	if !deleted {
		renderError(c, llmfetch.Errorf(llmfetch.ENOTFOUND, "not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseID reads a positive integer path parameter, rendering a 400 when it
// is malformed.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		renderError(c, llmfetch.Errorf(llmfetch.EINVALID, "invalid %s", name))
		return 0, false
	}
	return id, true
}
