package server

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/spacesedan/commentscope/internal/processing"
	"github.com/spacesedan/commentscope/internal/report"
)

type pageData struct {
	Input       string
	Error       string
	Analysis    *models.Analysis
	Report      template.HTML
	MaxComments string
	NumTopics   string
}

func (s *Server) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{})
}

// AnalyzeForm handles the dashboard form and renders the result page.
func (s *Server) AnalyzeForm(c *gin.Context) {
	input := c.PostForm("video")
	data := pageData{
		Input:       input,
		MaxComments: c.PostForm("max_comments"),
		NumTopics:   c.PostForm("topics"),
	}

	analysis, err := s.run(c, input, data.MaxComments, data.NumTopics)
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(err), "index.html", data)
		return
	}

	data.Analysis = analysis
	c.HTML(http.StatusOK, "result.html", data)
}

// Report renders the Markdown report as a standalone HTML page.
func (s *Server) Report(c *gin.Context) {
	input := c.Query("video")
	analysis, err := s.run(c, input, c.Query("max_comments"), c.Query("topics"))
	if err != nil {
		c.HTML(statusFor(err), "index.html", pageData{Input: input, Error: err.Error()})
		return
	}

	c.HTML(http.StatusOK, "report.html", pageData{Input: input, Analysis: analysis, Report: report.HTML(analysis)})
}

// APIAnalysis returns the analysis as JSON, or as Markdown with format=markdown.
func (s *Server) APIAnalysis(c *gin.Context) {
	analysis, err := s.run(c, c.Query("video"), c.Query("max_comments"), c.Query("topics"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(analysis)))
	default:
		c.JSON(http.StatusOK, analysis)
	}
}

func (s *Server) Health(c *gin.Context) {
	classifierHealthy := true
	if s.health != nil {
		classifierHealthy = s.health.Healthy()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"service":            SERVICE_NAME,
		"classifier":         s.classifier,
		"classifier_healthy": classifierHealthy,
	})
}

func (s *Server) run(c *gin.Context, input, maxComments, numTopics string) (*models.Analysis, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errs.Invalid("enter a YouTube URL or video id")
	}

	req := processing.Request{Input: strings.TrimSpace(input)}
	var err error
	if req.MaxComments, err = parseLimit("max_comments", maxComments); err != nil {
		return nil, err
	}
	if req.NumTopics, err = parseLimit("topics", numTopics); err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	if s.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
		defer cancel()
	}

	analysis, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		slog.Warn("[Server] Analysis rejected",
			slog.String("input", req.Input),
			slog.String("error", err.Error()))
		return nil, err
	}
	return analysis, nil
}

// parseLimit reads an optional positive integer. Empty means default.
func parseLimit(name, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errs.Invalid("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

func statusFor(err error) int {
	if errors.Is(err, errs.ErrInputInvalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
