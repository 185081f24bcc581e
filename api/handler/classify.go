package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsift/finsift/classify"
	"github.com/finsift/finsift/config"
	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/page"
)

// Classify returns a handler for POST /api/v1/classify.
//
// Runs only the accept/skip gate. With caller-supplied HTML no fetch
// happens; otherwise the page is fetched so the text markers can be
// checked too.
func Classify(eng engine.Engine, fetchCfg config.FetchConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ClassifyResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		html := req.HTML
		if html == "" {
			res, err := eng.Fetch(c.Request.Context(), &engine.FetchRequest{
				URL:     req.URL,
				Timeout: fetchCfg.DefaultTimeout,
			})
			if err != nil {
				c.JSON(http.StatusBadGateway, models.ClassifyResponse{
					Success: false,
					Error: &models.ErrorDetail{
						Code:    models.ErrCodeFetch,
						Message: err.Error(),
					},
				})
				return
			}
			html = res.HTML
		}

		p, err := page.New(req.URL, html)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.ClassifyResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeParse,
					Message: err.Error(),
				},
			})
			return
		}

		accept, reason := classify.Classify(req.URL, p.Text())
		c.JSON(http.StatusOK, models.ClassifyResponse{
			Success: true,
			Accept:  accept,
			Reason:  reason,
		})
	}
}
