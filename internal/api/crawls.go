package api

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/output"
	"github.com/persistorai/degrees/internal/service"
)

// FormatSummary selects the JSON crawl summary instead of a graph artifact.
const FormatSummary = "summary"

// WarningsHeader carries the number of crawl warnings on artifact responses.
const WarningsHeader = "X-Degrees-Warnings"

// CrawlHandler runs crawls on request.
type CrawlHandler struct {
	runner  CrawlRunner
	log     *logrus.Logger
	timeout time.Duration
}

// NewCrawlHandler creates a CrawlHandler. Each crawl is bounded by timeout.
func NewCrawlHandler(runner CrawlRunner, log *logrus.Logger, timeout time.Duration) *CrawlHandler {
	return &CrawlHandler{runner: runner, log: log, timeout: timeout}
}

// CreateCrawlRequest is the body of POST /api/v1/crawls.
type CreateCrawlRequest struct {
	Reference string `json:"reference"`
	Name      string `json:"name,omitempty"`
	Degree    int    `json:"degree"`
	Format    string `json:"format,omitempty"`
}

// Create handles POST /api/v1/crawls.
func (h *CrawlHandler) Create(c *gin.Context) {
	var body CreateCrawlRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}

	format := strings.ToLower(strings.TrimSpace(body.Format))
	if format == "" {
		format = string(output.FormatGraphML)
	}

	var artifact output.Format

	if format != FormatSummary {
		f, err := output.ParseFormat(format)
		if err != nil {
			respondServiceError(c, h.log, err)
			return
		}

		artifact = f
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	run, err := h.runner.Crawl(ctx, service.CrawlRequest{Reference: body.Reference, Name: body.Name, Degree: body.Degree})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	if format == FormatSummary {
		c.JSON(http.StatusOK, run.Summary)
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, run.Graph, artifact); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.Header(WarningsHeader, strconv.Itoa(len(run.Warnings)))
	c.Data(http.StatusOK, artifact.ContentType(), buf.Bytes())
}
