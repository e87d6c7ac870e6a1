// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the library over HTTP: the same article routes
// as the remote API, answered locally with offline fallback, plus status,
// sync and metrics endpoints for the serve daemon.
// Implements: prd007-local-server (R1-R4);
//
//	docs/ARCHITECTURE § Local Server.
package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/article-library/internal/library"
	"github.com/pdiddy/article-library/internal/remote"
	"github.com/pdiddy/article-library/pkg/types"
)

// Server serves the local article API.
type Server struct {
	lib     *library.Library
	log     *zap.Logger
	metrics *metrics
	http    *http.Server
	router  *gin.Engine
}

// New builds the server and its routes. Run starts listening.
func New(lib *library.Library, cfg types.ServeConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		lib:     lib,
		log:     log,
		metrics: newMetrics(lib),
		router:  router,
		http: &http.Server{
			Addr:              cfg.Listen,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Use(s.metrics.count)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.setupArticleRoutes(router)
	s.setupControlRoutes(router)
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens until Shutdown or a listener error.
func (s *Server) Run() error {
	s.log.Info("local article server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) setupArticleRoutes(router *gin.Engine) {
	router.GET("/all_articles", func(c *gin.Context) {
		list, err := s.lib.Articles(c.Request.Context())
		if err != nil {
			s.renderError(c, "listing articles", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	router.GET("/search", func(c *gin.Context) {
		list, err := s.lib.Search(c.Request.Context(), c.Query("query"))
		if err != nil {
			s.renderError(c, "searching articles", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	router.GET("/sorted_articles", func(c *gin.Context) {
		list, err := s.lib.SortedBy(c.Request.Context(), c.Query("sort_by"), c.Query("order"))
		if err != nil {
			s.renderError(c, "sorting articles", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	router.GET("/articles_by_year", func(c *gin.Context) {
		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
			return
		}
		list, err := s.lib.ByYear(c.Request.Context(), year)
		if err != nil {
			s.renderError(c, "filtering articles", err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	router.GET("/article/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
			return
		}
		article, err := s.lib.ByIndex(c.Request.Context(), index)
		if err != nil {
			s.renderError(c, "fetching article", err)
			return
		}
		c.JSON(http.StatusOK, article)
	})

	router.POST("/add_article", func(c *gin.Context) {
		var payload types.ArticlePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if payload.Title == "" || payload.Authors == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and authors are required"})
			return
		}
		created, err := s.lib.Add(c.Request.Context(), payload)
		if err != nil {
			s.renderError(c, "adding article", err)
			return
		}
		c.JSON(http.StatusCreated, created)
	})

	router.PUT("/articles/:id", func(c *gin.Context) {
		var payload types.ArticlePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		updated, err := s.lib.Update(c.Request.Context(), c.Param("id"), payload)
		if err != nil {
			s.renderError(c, "updating article", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	})

	router.DELETE("/articles/:id", func(c *gin.Context) {
		if err := s.lib.Delete(c.Request.Context(), c.Param("id")); err != nil {
			s.renderError(c, "deleting article", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
	})
}

func (s *Server) setupControlRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "offline": s.lib.Status().Offline})
	})

	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.lib.Status())
	})

	router.POST("/sync", func(c *gin.Context) {
		summary, err := s.lib.SyncPending(c.Request.Context())
		if err != nil {
			if errors.Is(err, library.ErrSyncInFlight) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			s.log.Warn("sync request failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "summary": summary})
			return
		}
		s.metrics.syncPasses.Inc()
		s.metrics.syncOps.WithLabelValues("replayed").Add(float64(summary.Replayed))
		s.metrics.syncOps.WithLabelValues("skipped").Add(float64(summary.Skipped))
		s.metrics.syncOps.WithLabelValues("failed").Add(float64(summary.Failed))
		c.JSON(http.StatusOK, summary)
	})

	router.GET("/export", func(c *gin.Context) {
		format := c.DefaultQuery("format", "yaml")
		contentType := "application/yaml"
		if format == "json" {
			contentType = "application/json"
		}
		// Encode to a buffer first so an encoder error cannot corrupt an
		// already-started 200 body.
		var buf bytes.Buffer
		if err := s.lib.Cache().Export(&buf, format); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	})
}

func (s *Server) renderError(c *gin.Context, action string, err error) {
	var apiErr *remote.APIError
	switch {
	case errors.Is(err, library.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
	case errors.As(err, &apiErr):
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
	default:
		s.log.Error(action+" failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream request failed"})
	}
}
