// Package mockapi is an in-memory stand-in for the rfpdesk backend. It serves
// the same routes and payload shapes and is used by end-to-end tests and the
// rfpdesk-mock command.
package mockapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/rfp"
)

// RephraseFunc produces a rewrite for the rephrase route.
type RephraseFunc func(current, instruction string) (string, error)

// UploadRule decides whether an uploaded file is accepted.
type UploadRule func(filename string, size int64) error

// Server holds the in-memory records.
type Server struct {
	mu         sync.Mutex
	token      string
	projects   []rfp.Project
	documents  []rfp.Document
	attributes []rfp.Attribute
	usage      rfp.UsageStats
	rephrase   RephraseFunc
	uploadRule UploadRule
	now        func() time.Time
	logger     *slog.Logger
	calls      map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithToken requires "Authorization: Bearer token" on every request.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithRephrase replaces the default rephrase behaviour.
func WithRephrase(fn RephraseFunc) Option {
	return func(s *Server) { s.rephrase = fn }
}

// WithUploadRule replaces the default upload acceptance rule.
func WithUploadRule(fn UploadRule) Option {
	return func(s *Server) { s.uploadRule = fn }
}

// WithLogger logs each request.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New returns an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.New(slog.DiscardHandler),
		calls:  make(map[string]int),
		usage: rfp.UsageStats{
			RFPs: rfp.Quota{Limit: 50},
			Docs: rfp.Quota{Limit: 500},
			Plan: rfp.PlanInfo{Tier: "pro", Name: "Professional"},
		},
		rephrase: func(current, instruction string) (string, error) {
			return fmt.Sprintf("%s [%s]", strings.TrimSpace(current), strings.TrimSpace(instruction)), nil
		},
		uploadRule: func(filename string, size int64) error {
			if size == 0 {
				return errors.New("file is empty")
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.usage.Month = s.now().Format("2006-01")
	return s
}

// Handler returns the gin engine serving the backend routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.trace(), s.authenticate())

	api := r.Group("/api")
	api.GET("/rfps/", s.listProjects)
	api.POST("/rfps/", s.createProject)
	api.GET("/rfps/:id", s.getProject)
	api.DELETE("/rfps/:id", s.deleteProject)
	api.GET("/rfps/:id/export", s.exportProject)
	api.PATCH("/rfps/:id/questions/:qid", s.updateAnswer)
	api.POST("/rfps/:id/questions/:qid/rephrase", s.rephraseAnswer)

	api.GET("/documents/", s.listDocuments)
	api.POST("/documents/batch", s.uploadDocuments)
	api.DELETE("/documents/:id", s.deleteDocument)

	api.GET("/attributes/", s.listAttributes)
	api.DELETE("/attributes/:id", s.deleteAttribute)

	r.GET("/billing/usage", s.getUsage)
	return r
}

func (s *Server) trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.mu.Lock()
		s.calls[c.Request.Method+" "+c.FullPath()]++
		s.mu.Unlock()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token != "" {
			header := c.GetHeader("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || header[7:] != s.token {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
				return
			}
		}
		if c.GetHeader("X-Organization-ID") == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "X-Organization-ID header is required"})
			return
		}
		c.Next()
	}
}

// Calls returns how often a route pattern was hit, e.g.
// "PATCH /api/rfps/:id/questions/:qid".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func newID() string {
	return uuid.NewString()
}
