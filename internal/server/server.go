// Package server exposes the dashboard and its JSON API over gin.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spacesedan/commentscope/config"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/spacesedan/commentscope/internal/monitoring"
	"github.com/spacesedan/commentscope/internal/processing"
)

const SERVICE_NAME = "commentscope"

//go:embed templates/*.html
var templateFS embed.FS

type Analyzer interface {
	Analyze(ctx context.Context, req processing.Request) (*models.Analysis, error)
}

type Server struct {
	analyzer   Analyzer
	health     *monitoring.ClassifierHealth
	metrics    *monitoring.Metrics
	cfg        config.HTTPConfig
	classifier string
}

// New wires the handlers. health and metrics may be nil.
func New(cfg config.HTTPConfig, analyzer Analyzer, classifier string, health *monitoring.ClassifierHealth, metrics *monitoring.Metrics) *Server {
	return &Server{
		analyzer:   analyzer,
		health:     health,
		metrics:    metrics,
		cfg:        cfg,
		classifier: classifier,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), PrometheusMiddleware(s.metrics))
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.Index)
	r.POST("/analyze", s.AnalyzeForm)
	r.GET("/report", s.Report)
	r.GET("/health", s.Health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins:  s.allowOrigins(),
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	{
		api.GET("/analysis", s.APIAnalysis)
	}

	return r
}

func (s *Server) allowOrigins() []string {
	if len(s.cfg.AllowOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowOrigins
}
