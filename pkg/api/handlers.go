package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/extract"
	"github.com/coolbeans/boelex/pkg/identifier"
	"github.com/coolbeans/boelex/pkg/numeral"
	"github.com/coolbeans/boelex/pkg/reconcile"
	"github.com/coolbeans/boelex/pkg/similarity"
	"github.com/coolbeans/boelex/pkg/store"
)

type handler struct {
	fetcher      LawFetcher
	articles     ArticleSource
	logger       *log.Logger
	maxBodyBytes int64
}

// resolveNumeral handles GET /api/numerals/resolve?text=
func (h *handler) resolveNumeral(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_TEXT", "query parameter 'text' is required")
		return
	}

	value, ok := numeral.ResolveValue(text)
	if !ok {
		errorResponse(c, http.StatusUnprocessableEntity, "UNRESOLVABLE", "not a Spanish numeral phrase in range: "+text)
		return
	}

	dataResponse(c, gin.H{
		"text":   text,
		"value":  value.String(),
		"number": value.Number,
		"suffix": value.Suffix,
	})
}

// normalizeIdentifier handles GET /api/identifiers/normalize?text=
func (h *handler) normalizeIdentifier(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_TEXT", "query parameter 'text' is required")
		return
	}

	response := gin.H{
		"text":       text,
		"normalized": identifier.NormalizeText(text),
		"valid":      false,
	}
	if id, err := identifier.Parse(text); err == nil {
		response["valid"] = true
		response["canonical"] = id.String()
	}
	dataResponse(c, response)
}

// extractArticles handles POST /api/articles/extract with a raw HTML body.
func (h *handler) extractArticles(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error())
			return
		}
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	h.respondWithArticles(c, string(body))
}

// respondWithArticles answers with one article when ?article= is set, or all
// of them otherwise.
func (h *handler) respondWithArticles(c *gin.Context, document string) {
	if number := c.Query("article"); number != "" {
		record, ok := extract.FindArticle(document, number)
		if !ok {
			errorResponse(c, http.StatusNotFound, "ARTICLE_NOT_FOUND", "article not found: "+number)
			return
		}
		dataResponse(c, record)
		return
	}

	articles := extract.ExtractArticles(document)
	dataResponse(c, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// CompareRequest is the body of POST /api/content/compare. Both texts are
// required but may be empty.
type CompareRequest struct {
	A *string `json:"a"`
	B *string `json:"b"`
}

// compareContent handles POST /api/content/compare
func (h *handler) compareContent(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.A == nil || req.B == nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "fields 'a' and 'b' are required")
		return
	}

	dataResponse(c, similarity.CompareContent(*req.A, *req.B))
}

// lawArticles handles GET /api/laws/:lawId/articles
func (h *handler) lawArticles(c *gin.Context) {
	doc, ok := h.fetchLaw(c)
	if !ok {
		return
	}
	h.respondWithArticles(c, doc.HTML)
}

// reconcileLaw handles GET /api/laws/:lawId/reconcile
func (h *handler) reconcileLaw(c *gin.Context) {
	if h.articles == nil {
		errorResponse(c, http.StatusServiceUnavailable, "NOT_CONFIGURED", "no article store configured")
		return
	}

	doc, ok := h.fetchLaw(c)
	if !ok {
		return
	}

	stored, err := h.articles.StoredArticles(c.Request.Context(), doc.LawID)
	if err != nil && !errors.Is(err, store.ErrLawNotFound) {
		h.logger.Printf("api: loading stored articles for %s: %v", doc.LawID, err)
		errorResponse(c, http.StatusInternalServerError, "STORE_FAILED", err.Error())
		return
	}

	dataResponse(c, reconcile.Reconcile(doc.Articles(), stored))
}

// fetchLaw downloads the law named in the path, writing the error response
// itself when it fails.
func (h *handler) fetchLaw(c *gin.Context) (*boe.Document, bool) {
	if h.fetcher == nil {
		errorResponse(c, http.StatusServiceUnavailable, "NOT_CONFIGURED", "no gazette fetcher configured")
		return nil, false
	}

	lawID := c.Param("lawId")
	doc, err := h.fetcher.FetchLaw(c.Request.Context(), lawID)
	switch {
	case err == nil:
		return doc, true
	case errors.Is(err, boe.ErrInvalidLawID):
		errorResponse(c, http.StatusBadRequest, "INVALID_LAW_ID", err.Error())
	case errors.Is(err, boe.ErrNotFound):
		errorResponse(c, http.StatusNotFound, "LAW_NOT_FOUND", err.Error())
	default:
		h.logger.Printf("api: fetching %s: %v", lawID, err)
		errorResponse(c, http.StatusBadGateway, "FETCH_FAILED", err.Error())
	}
	return nil, false
}
