// Package httpapi exposes the audit orchestrator over HTTP: POST
// /report and POST /analyze_summary, both gated by the X-API-Token
// header. Route handlers never touch the crawler, findings, or report
// packages directly; everything routes through audit.Orchestrator.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcosalmeida/siteauditor/internal/audit"
	"github.com/marcosalmeida/siteauditor/internal/narrator"
	"github.com/marcosalmeida/siteauditor/internal/translate"
	"github.com/marcosalmeida/siteauditor/pkg/urlutil"
)

// Server wires the gin router to one audit.Orchestrator.
type Server struct {
	router       *gin.Engine
	orchestrator *audit.Orchestrator
	apiToken     string
}

// NewServer builds a Server. apiToken must be non-empty; callers that
// fail config.LoadServerConfig should never reach this constructor.
func NewServer(orchestrator *audit.Orchestrator, apiToken string) *Server {
	s := &Server{
		router:       gin.Default(),
		orchestrator: orchestrator,
		apiToken:     apiToken,
	}
	s.router.Use(s.authMiddleware())
	s.router.POST("/report", s.reportHandler)
	s.router.POST("/analyze_summary", s.summaryHandler)
	return s
}

// Router exposes the underlying *gin.Engine, e.g. for http.ListenAndServe.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiToken == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured: API_TOKEN not set"})
			return
		}
		if c.GetHeader("X-API-Token") != s.apiToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing X-API-Token"})
			return
		}
		c.Next()
	}
}

type urlRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) reportHandler(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := s.orchestrator.RunFullReport(c.Request.Context(), req.URL)
	if err != nil {
		var invalidURL *urlutil.InvalidURLError
		if errors.As(err, &invalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidURL.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	origin := translate.OrigemProcessamentoNovo
	if outcome.FromCache {
		origin = translate.OrigemCache
	}
	c.JSON(http.StatusOK, translate.Report(outcome.Report, origin))
}

func (s *Server) summaryHandler(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	narration, err := s.orchestrator.RunSummary(c.Request.Context(), req.URL)
	if err != nil {
		var invalidURL *urlutil.InvalidURLError
		if errors.As(err, &invalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidURL.Error()})
			return
		}
		var unavailable *narrator.UnavailableError
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LLMUnavailable", "reason": unavailable.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, narration)
}
