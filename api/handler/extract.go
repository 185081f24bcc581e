package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsift/finsift/cache"
	"github.com/finsift/finsift/config"
	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/extract"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

// Extract returns a handler for POST /api/v1/extract.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Fetch the page (or use caller-supplied HTML).   (records fetch_ms)
//  3. Optionally scope the document to a CSS selector.
//  4. Classify → extract → redact → record.           (records extract_ms)
//  5. Fill Timing, return 200.
//
// A classifier skip is a success with skipped=true and no record.
func Extract(eng engine.Engine, ex *extract.Extractor, cc *cache.Cache, fetchCfg config.FetchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		if req.URL == "" && req.HTML == "" {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "one of url or html is required",
				},
			})
			return
		}

		// Cache lookup only makes sense in fetch mode: supplied HTML is
		// already in the caller's hands.
		useCache := cc != nil && req.URL != "" && req.HTML == "" && req.MaxAge > 0
		cacheKey := ""
		if useCache {
			cacheKey = cache.Key(req.URL, req.CSSSelector, *req.RedactPII)
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				cached.Timing = models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
				}
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		html := req.HTML
		sourceURL := req.SourceURL
		finalURL := ""
		var fetchMs int64

		if html == "" {
			timeout := time.Duration(req.Timeout) * time.Second
			if timeout > fetchCfg.MaxTimeout {
				timeout = fetchCfg.MaxTimeout
			}

			fetchStart := time.Now()
			res, err := eng.Fetch(c.Request.Context(), &engine.FetchRequest{
				URL:     req.URL,
				Timeout: timeout,
			})
			fetchMs = time.Since(fetchStart).Milliseconds()
			if err != nil {
				respondError(c, models.NewExtractError(models.ErrCodeFetch, err.Error(), err), models.TimingInfo{
					TotalMs: time.Since(totalStart).Milliseconds(),
					FetchMs: fetchMs,
				})
				return
			}
			html = res.HTML
			finalURL = res.FinalURL
			if finalURL != "" {
				sourceURL = finalURL
			}
		}

		if req.CSSSelector != "" {
			scoped, err := page.ApplySelector(html, req.CSSSelector)
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ExtractResponse{
					Success: false,
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeInvalidInput,
						Message: "invalid css_selector: " + err.Error(),
					},
				})
				return
			}
			html = scoped
		}

		extractStart := time.Now()
		p, err := page.New(sourceURL, html)
		if err != nil {
			respondError(c, models.NewExtractError(models.ErrCodeParse, err.Error(), err), models.TimingInfo{
				TotalMs: time.Since(totalStart).Milliseconds(),
				FetchMs: fetchMs,
			})
			return
		}

		rec, err := ex.Extract(p, extract.Options{RedactPII: *req.RedactPII})
		extractMs := time.Since(extractStart).Milliseconds()
		if err != nil {
			respondError(c, err, models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				FetchMs:   fetchMs,
				ExtractMs: extractMs,
			})
			return
		}

		resp := &models.ExtractResponse{
			Success:  true,
			Skipped:  rec == nil,
			Record:   rec,
			FinalURL: finalURL,
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				FetchMs:   fetchMs,
				ExtractMs: extractMs,
			},
		}

		if useCache {
			cc.Set(cacheKey, resp)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// respondError maps an ExtractError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	extractErr, ok := err.(*models.ExtractError)
	if !ok {
		extractErr = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(extractErr), models.ExtractResponse{
		Success: false,
		Error:   extractErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ExtractError) int {
	switch e.Code {
	case models.ErrCodeFetch:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeParse, models.ErrCodeExtraction:
		return http.StatusUnprocessableEntity // 422
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
