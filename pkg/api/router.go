// Package api exposes the numeral resolver, identifier normalizer, article
// extractor and content oracle over HTTP.
package api

import (
	"context"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/extract"
)

// DefaultMaxBodyBytes bounds uploaded pages.
const DefaultMaxBodyBytes = 32 << 20

// LawFetcher downloads a law page by BOE identifier. *boe.Client satisfies it.
type LawFetcher interface {
	FetchLaw(ctx context.Context, lawID string) (*boe.Document, error)
}

// ArticleSource loads the stored articles of a law. *store.Store satisfies it.
type ArticleSource interface {
	StoredArticles(ctx context.Context, boeID string) ([]extract.ArticleRecord, error)
}

// Options configures the router. Fetcher and Articles are optional; the
// endpoints that need them answer 503 when they are missing.
type Options struct {
	Fetcher  LawFetcher
	Articles ArticleSource
	Logger   *log.Logger

	// Mode is the gin mode; empty keeps the current one.
	Mode string

	MaxBodyBytes int64
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &handler{
		fetcher:      opts.Fetcher,
		articles:     opts.Articles,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(opts.Logger.Writer()), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/numerals/resolve", h.resolveNumeral)
		api.GET("/identifiers/normalize", h.normalizeIdentifier)
		api.POST("/articles/extract", h.extractArticles)
		api.POST("/content/compare", h.compareContent)

		api.GET("/laws/:lawId/articles", h.lawArticles)
		api.GET("/laws/:lawId/reconcile", h.reconcileLaw)
	}

	return r
}

// errorResponse writes the error envelope shared by every endpoint.
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func dataResponse(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
